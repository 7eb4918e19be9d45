package output

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tillpoint/posadmin/internal/backend"
)

// PageSizes are the page lengths a listing can be cut into.
var PageSizes = []int{10, 25, 50, 100}

// DefaultPageSize is the page length used when none is requested.
const DefaultPageSize = 10

// Grid is a table of records. Rows[i] is the display form of Records[i].
type Grid struct {
	Title   string
	Header  []string
	Rows    [][]string
	Records []any
}

// Query selects the slice of a grid that gets rendered.
type Query struct {
	Filter   string
	PageSize int
	Page     int
}

// Page is the result of applying a Query to a Grid.
type Page struct {
	Grid

	Number   int
	Pages    int
	PageSize int
	Start    int // 1-based index of the first row shown, 0 when empty
	End      int
	Total    int // rows after filtering
	Overall  int // rows before filtering
	Filtered bool
}

// ValidatePageSize rejects sizes outside PageSizes.
func ValidatePageSize(size int) error {
	for _, allowed := range PageSizes {
		if size == allowed {
			return nil
		}
	}
	return fmt.Errorf("page size %d not supported (use 10, 25, 50 or 100)", size)
}

// Apply filters and paginates the grid. The filter is a case-insensitive
// substring match against every cell. Page numbers are 1-based and clamped to
// the available range.
func (g Grid) Apply(q Query) (*Page, error) {
	size := q.PageSize
	if size == 0 {
		size = DefaultPageSize
	}
	if err := ValidatePageSize(size); err != nil {
		return nil, err
	}

	needle := strings.ToLower(strings.TrimSpace(q.Filter))
	rows := make([][]string, 0, len(g.Rows))
	records := make([]any, 0, len(g.Rows))
	for i, row := range g.Rows {
		if needle != "" && !rowMatches(row, needle) {
			continue
		}
		rows = append(rows, row)
		if i < len(g.Records) {
			records = append(records, g.Records[i])
		}
	}

	total := len(rows)
	pages := (total + size - 1) / size
	if pages == 0 {
		pages = 1
	}

	number := q.Page
	if number < 1 {
		number = 1
	}
	if number > pages {
		number = pages
	}

	from := (number - 1) * size
	to := from + size
	if to > total {
		to = total
	}

	page := &Page{
		Grid: Grid{
			Title:  g.Title,
			Header: g.Header,
			Rows:   rows[from:to],
		},
		Number:   number,
		Pages:    pages,
		PageSize: size,
		End:      to,
		Total:    total,
		Overall:  len(g.Rows),
		Filtered: needle != "",
	}
	if len(records) == total {
		page.Records = records[from:to]
	}
	if to > from {
		page.Start = from + 1
	}
	return page, nil
}

// Summary is the footer line shown under paged listings.
func (p *Page) Summary() string {
	summary := fmt.Sprintf("Showing %d to %d of %d entries", p.Start, p.End, p.Total)
	if p.Filtered {
		summary += fmt.Sprintf(" (filtered from %d total entries)", p.Overall)
	}
	return summary
}

func rowMatches(row []string, needle string) bool {
	for _, cell := range row {
		if strings.Contains(strings.ToLower(cell), needle) {
			return true
		}
	}
	return false
}

// UsersGrid lays out admin users.
func UsersGrid(users []backend.User) Grid {
	grid := Grid{
		Title:  "Users",
		Header: []string{"ID", "Full Name", "Email Address", "Username", "User Title", "User Level"},
	}
	for _, u := range users {
		grid.Rows = append(grid.Rows, []string{
			strconv.FormatInt(u.ID, 10),
			u.FullName,
			u.EmailAddress,
			u.Username,
			u.UserTitle,
			u.UserLevel,
		})
		grid.Records = append(grid.Records, u)
	}
	return grid
}

// StaffGrid lays out managers or cashiers.
func StaffGrid(kind backend.StaffKind, members []backend.StaffMember) Grid {
	title := "Cashiers"
	if kind == backend.StaffManager {
		title = "Managers"
	}

	grid := Grid{
		Title:  title,
		Header: []string{"ID", "Name", "Last Name", "Username", "Date Created"},
	}
	for _, m := range members {
		grid.Rows = append(grid.Rows, []string{
			strconv.FormatInt(m.ID, 10),
			m.Name,
			m.LastName,
			m.Username,
			m.DateCreated,
		})
		grid.Records = append(grid.Records, m)
	}
	return grid
}
