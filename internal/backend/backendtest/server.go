// Package backendtest runs an in-memory POS backend for tests.
package backendtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Account is a login the fake accepts.
type Account struct {
	Username string
	Passcode string
	Role     string
}

// Server is a fake backend with the same routes and response shapes as the
// real one.
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	accounts  []Account
	users     []map[string]any
	managers  []map[string]any
	cashiers  []map[string]any
	nextID    int64
	hits      map[string]int
	requestID []string

	loginStatus int
}

// New starts a fake backend. Close it when done.
func New(accounts ...Account) *Server {
	s := &Server{
		accounts: accounts,
		nextID:   1,
		hits:     make(map[string]int),
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.count)

	r.Post("/login", s.login)
	r.Get("/get_users", s.listUsers)
	r.Get("/get_user/{id}", s.getUser)
	r.Post("/add_user", s.addUser)
	r.Post("/update_user/{id}", s.updateUser)
	r.Get("/get_managers", s.listStaff("managers"))
	r.Get("/get_cashiers", s.listStaff("cashiers"))
	r.Post("/create_manager", s.createStaff("manager"))
	r.Post("/create_cashier", s.createStaff("cashier"))

	s.Server = httptest.NewServer(r)
	return s
}

// Hits reports how many requests reached path.
func (s *Server) Hits(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

// RequestIDs returns the X-Request-ID headers seen so far.
func (s *Server) RequestIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requestID...)
}

// FailLogins forces every /login answer to status. Zero restores normal
// behaviour.
func (s *Server) FailLogins(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loginStatus = status
}

// SeedUser stores a user and returns its ID.
func (s *Server) SeedUser(fullName, email, username, title, level string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.users = append(s.users, map[string]any{
		"id":            id,
		"full_name":     fullName,
		"email_address": email,
		"username":      username,
		"user_title":    title,
		"user_level":    level,
	})
	return id
}

// SeedStaff stores a manager or cashier and returns its ID.
func (s *Server) SeedStaff(kind, name, lastName, username, passcode string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.storeStaffLocked(kind, name, lastName, username, passcode)
}

func (s *Server) storeStaffLocked(kind, name, lastName, username, passcode string) int64 {
	id := s.nextID
	s.nextID++
	row := map[string]any{
		"id":           id,
		"name":         name,
		"last_name":    lastName,
		"username":     username,
		"passcode":     passcode,
		"date_created": time.Date(2024, 11, 5, 9, 0, 0, 0, time.UTC).Format(time.RFC1123),
	}
	if kind == "manager" {
		s.managers = append(s.managers, row)
	} else {
		s.cashiers = append(s.cashiers, row)
	}
	return id
}

func (s *Server) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.hits[r.URL.Path]++
		if id := r.Header.Get("X-Request-ID"); id != "" {
			s.requestID = append(s.requestID, id)
		}
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Passcode string `json:"passcode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Invalid request"})
		return
	}

	s.mu.Lock()
	forced := s.loginStatus
	accounts := append([]Account(nil), s.accounts...)
	s.mu.Unlock()

	if forced != 0 {
		writeJSON(w, forced, map[string]any{"message": http.StatusText(forced)})
		return
	}
	if n := len(body.Passcode); n < 4 || n > 6 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Passcode must be between 4 and 6 digits"})
		return
	}

	for _, acct := range accounts {
		if acct.Passcode == body.Passcode && (body.Username == "" || acct.Username == body.Username) {
			writeJSON(w, http.StatusOK, map[string]any{
				"user":  map[string]any{"username": acct.Username},
				"role":  acct.Role,
				"token": "token-" + acct.Username,
			})
			return
		}
	}
	writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Invalid Credentials"})
}

func (s *Server) listUsers(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	users := append([]map[string]any{}, s.users...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, users)
}

func (s *Server) findUserLocked(r *http.Request) int {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return -1
	}
	for i, u := range s.users {
		if u["id"] == id {
			return i
		}
	}
	return -1
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.findUserLocked(r)
	if idx < 0 {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "User not found"})
		return
	}
	writeJSON(w, http.StatusOK, s.users[idx])
}

func (s *Server) addUser(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Invalid request"})
		return
	}

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	user := map[string]any{
		"id":            id,
		"full_name":     body["full_name"],
		"email_address": body["email_address"],
		"username":      body["username"],
		"user_title":    body["user_title"],
		"user_level":    body["user_level"],
	}
	s.users = append(s.users, user)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"message": "User added successfully!", "user": user})
}

func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Invalid form"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.findUserLocked(r)
	if idx < 0 {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "User not found"})
		return
	}
	for _, field := range []string{"full_name", "email_address", "username", "user_title", "user_level"} {
		s.users[idx][field] = r.PostForm.Get(field)
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) listStaff(key string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		s.mu.Lock()
		rows := s.cashiers
		if key == "managers" {
			rows = s.managers
		}
		rows = append([]map[string]any{}, rows...)
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{key: rows})
	}
}

func (s *Server) createStaff(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Name     string `json:"name"`
			LastName string `json:"last_name"`
			Username string `json:"username"`
			Passcode string `json:"passcode"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Invalid request", "success": false})
			return
		}
		if body.Name == "" || body.LastName == "" || body.Username == "" || body.Passcode == "" {
			writeJSON(w, http.StatusBadRequest, map[string]any{"message": "All fields are required", "success": false})
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		for _, rows := range [][]map[string]any{s.managers, s.cashiers} {
			for _, row := range rows {
				if row["username"] == body.Username {
					writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Username already exists", "success": false})
					return
				}
			}
		}

		id := s.storeStaffLocked(kind, body.Name, body.LastName, body.Username, body.Passcode)
		writeJSON(w, http.StatusCreated, map[string]any{
			"message": kind + " created successfully",
			"success": true,
			kind: map[string]any{
				"id":        id,
				"name":      body.Name,
				"last_name": body.LastName,
				"username":  body.Username,
			},
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
