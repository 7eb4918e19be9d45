package cmd

import (
	"bufio"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/tillpoint/posadmin/internal/config"
	"github.com/tillpoint/posadmin/internal/metrics"
	"github.com/tillpoint/posadmin/internal/observability"
	"github.com/tillpoint/posadmin/internal/presenter"
	"github.com/tillpoint/posadmin/internal/requestid"
	"github.com/tillpoint/posadmin/internal/throttle"
	"github.com/tillpoint/posadmin/internal/tui"
)

var errLoginCancelled = stderrors.New("login cancelled")

// unlockPoll is how often the console loop checks whether a lockout has
// been lifted.
const unlockPoll = 100 * time.Millisecond

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the POS backend",
	Long: `Log in to the POS backend with a numeric passcode.

After three rejected passcodes the session is locked for five minutes; the
remaining time is shown as a live countdown. A successful login prints the
view the role lands on (managers or sales order).`,
	RunE: runLogin,
}

func init() {
	rootCmd.AddCommand(loginCmd)
	loginCmd.Flags().String("username", "", "username to log in as (prompted when empty)")
	loginCmd.Flags().Bool("tui", false, "use the full-screen login form")
}

func runLogin(cmd *cobra.Command, args []string) error {
	username, err := cmd.Flags().GetString("username")
	if err != nil {
		return err
	}
	useTUI, err := cmd.Flags().GetBool("tui")
	if err != nil {
		return err
	}

	cfg := currentConfig()
	client, err := newBackendClient(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	out := cmd.OutOrStdout()

	if useTUI {
		p := tui.NewPresenter()
		lock := throttle.New(client, p, throttleConfig(cfg))
		defer lock.Close()

		model, err := tui.Run(ctx, meteredSubmitter{lock: lock}, p, strings.TrimSpace(username),
			tea.WithContext(ctx), tea.WithInput(cmd.InOrStdin()), tea.WithOutput(out))
		if err != nil {
			return err
		}
		target, ok := model.Target()
		if !ok {
			return errLoginCancelled
		}
		_, _ = fmt.Fprintf(out, "Login successful. Continue at %s%s\n", cfg.Backend.URL, target)
		return nil
	}

	console := presenter.NewConsole(out)
	console.BaseURL = cfg.Backend.URL
	lock := throttle.New(client, console, throttleConfig(cfg))
	defer lock.Close()

	result, err := runConsoleLogin(ctx, meteredSubmitter{lock: lock}, console, newLoginIO(cmd.InOrStdin(), out), strings.TrimSpace(username))
	if err != nil {
		return err
	}
	if result.Target == "" {
		_, _ = fmt.Fprintf(out, "Logged in as %s. No landing view is configured for this role.\n", result.Role)
	}
	return nil
}

func throttleConfig(cfg *config.Config) throttle.Config {
	return throttle.Config{
		MaxAttempts:     cfg.Throttle.MaxAttempts,
		LockoutDuration: cfg.Throttle.LockoutDuration,
		TickInterval:    cfg.Throttle.TickInterval,
	}
}

// meteredSubmitter records metrics and a log line for every submission.
type meteredSubmitter struct {
	lock *throttle.Throttle
}

func (m meteredSubmitter) Submit(ctx context.Context, attempt throttle.Attempt) (throttle.Result, error) {
	ctx, id := requestid.Ensure(ctx)

	result, err := m.lock.Submit(ctx, attempt)

	metrics.RecordLoginOutcome(result.Outcome.String())
	if result.Outcome == throttle.OutcomeLockedOut {
		metrics.RecordLockout()
	}

	if logger := observability.CLILogger; logger != nil {
		fields := []zap.Field{
			zap.String("outcome", result.Outcome.String()),
			zap.String("request_id", id),
			zap.Int("failures", result.Failures),
		}
		if attempt.Username != "" {
			fields = append(fields, zap.String("username", attempt.Username))
		}
		switch result.Outcome {
		case throttle.OutcomeLockedOut:
			logger.Warn("Login locked out", append(fields, zap.Duration("lockout", result.Remaining))...)
		case throttle.OutcomeTransportError:
			logger.Warn("Login failed to reach backend", append(fields, zap.Error(err))...)
		case throttle.OutcomeAuthenticated:
			fields = append(fields, zap.String("role", string(result.Role)))
			if result.Target == "" {
				logger.Warn("Login succeeded with a role that has no landing page", fields...)
			} else {
				logger.Info("Login succeeded", fields...)
			}
		default:
			logger.Debug("Login attempt", fields...)
		}
	}

	return result, err
}

// loginIO reads credentials. secret is used for the passcode when set.
type loginIO struct {
	in     *bufio.Reader
	out    io.Writer
	secret func() (string, error)
}

func newLoginIO(in io.Reader, out io.Writer) loginIO {
	lio := loginIO{in: bufio.NewReader(in), out: out}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd := int(f.Fd())
		lio.secret = func() (string, error) {
			data, err := term.ReadPassword(fd)
			_, _ = fmt.Fprintln(out)
			return string(data), err
		}
	}
	return lio
}

func (l loginIO) prompt(label string) (string, error) {
	_, _ = fmt.Fprint(l.out, label)
	return l.readLine()
}

func (l loginIO) promptSecret(label string) (string, error) {
	if l.secret == nil {
		return l.prompt(label)
	}
	_, _ = fmt.Fprint(l.out, label)
	return l.secret()
}

func (l loginIO) readLine() (string, error) {
	line, err := l.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// runConsoleLogin prompts until a login succeeds, input ends or ctx is
// cancelled. While locked it waits for the countdown to finish instead of
// prompting.
func runConsoleLogin(ctx context.Context, sub tui.Submitter, console *presenter.Console, lio loginIO, username string) (throttle.Result, error) {
	for {
		if err := ctx.Err(); err != nil {
			return throttle.Result{}, err
		}

		user := username
		if user == "" {
			line, err := lio.prompt("Username: ")
			if err != nil {
				return throttle.Result{}, errLoginCancelled
			}
			user = strings.TrimSpace(line)
		}

		passcode, err := lio.promptSecret("Passcode: ")
		if err != nil {
			return throttle.Result{}, errLoginCancelled
		}

		result, err := sub.Submit(ctx, throttle.Attempt{Username: user, Passcode: passcode})
		if err == nil {
			return result, nil
		}

		if stderrors.Is(err, throttle.ErrLocked) {
			if err := waitForUnlock(ctx, console); err != nil {
				return throttle.Result{}, err
			}
		}
	}
}

func waitForUnlock(ctx context.Context, console *presenter.Console) error {
	ticker := time.NewTicker(unlockPoll)
	defer ticker.Stop()

	for console.Locked() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}
