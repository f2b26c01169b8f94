// Package cli implements the interactive command surface. Each verb is a
// google/subcommands command; a fresh Commander is built per input line so
// flag state never leaks between commands.
package cli

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/shlex"
	"github.com/google/subcommands"

	"valutatrade/internal/auth"
	"valutatrade/internal/domain"
	"valutatrade/internal/infra"
	"valutatrade/internal/infra/storage"
	"valutatrade/internal/ledger"
	"valutatrade/internal/service"
)

// Session holds the authenticated user for the lifetime of the process.
// A nil User means nobody is logged in.
type Session struct {
	User *domain.User
}

// Deps are the services the command surface drives.
type Deps struct {
	Auth         *auth.Service
	Ledger       *ledger.Engine
	Rates        *service.RatesService
	Updater      *infra.RatesUpdater
	History      *storage.HistoryDB
	Catalog      *domain.Catalog
	BaseCurrency string
}

// App owns the session and dispatches command lines.
type App struct {
	deps    Deps
	session *Session
	out     io.Writer
}

// NewApp builds the command surface writing user-facing output to out.
func NewApp(deps Deps, out io.Writer) *App {
	return &App{deps: deps, session: &Session{}, out: out}
}

// CurrentUser returns the logged-in user, or nil.
func (a *App) CurrentUser() *domain.User {
	return a.session.User
}

// Run reads command lines until EOF or an exit command.
func (a *App) Run(ctx context.Context, in io.Reader) error {
	fmt.Fprintln(a.out, "ValutaTrade Hub — type 'help' for commands, 'exit' to quit.")

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(a.out, a.prompt())
		if !scanner.Scan() {
			fmt.Fprintln(a.out)
			return scanner.Err()
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		args, err := shlex.Split(line)
		if err != nil {
			fmt.Fprintf(a.out, "Cannot parse input: %v\n", err)
			continue
		}
		if len(args) == 0 {
			continue
		}
		if args[0] == "exit" || args[0] == "quit" {
			fmt.Fprintln(a.out, "Goodbye.")
			return nil
		}

		a.Dispatch(ctx, args)
	}
}

func (a *App) prompt() string {
	if u := a.session.User; u != nil {
		return u.Username + "> "
	}
	return "> "
}

// Dispatch runs one tokenized command line through a fresh Commander.
func (a *App) Dispatch(ctx context.Context, args []string) subcommands.ExitStatus {
	fs := flag.NewFlagSet("valutatrade", flag.ContinueOnError)
	fs.SetOutput(a.out)

	cdr := subcommands.NewCommander(fs, "valutatrade")
	cdr.Output = a.out
	cdr.Error = a.out

	cdr.Register(cdr.HelpCommand(), "")
	cdr.Register(&registerCmd{app: a}, "account")
	cdr.Register(&loginCmd{app: a}, "account")
	cdr.Register(&logoutCmd{app: a}, "account")
	cdr.Register(&changePasswordCmd{app: a}, "account")
	cdr.Register(&portfolioCmd{app: a}, "portfolio")
	cdr.Register(&historyCmd{app: a}, "portfolio")
	cdr.Register(&buyCmd{app: a}, "trading")
	cdr.Register(&sellCmd{app: a}, "trading")
	cdr.Register(&updateRatesCmd{app: a}, "rates")
	cdr.Register(&getRateCmd{app: a}, "rates")
	cdr.Register(&showRatesCmd{app: a}, "rates")
	cdr.Register(&currenciesCmd{app: a}, "rates")

	if err := fs.Parse(args); err != nil {
		return subcommands.ExitUsageError
	}
	return cdr.Execute(ctx)
}

// run is the middleware every verb goes through: count the command, execute,
// translate errors into user-facing messages, and log the outcome.
func (a *App) run(action string, fn func() error) subcommands.ExitStatus {
	infra.GlobalMetrics.RecordCommand()

	attrs := []any{slog.String("action", action)}
	if u := a.session.User; u != nil {
		attrs = append(attrs, slog.String("username", u.Username))
	}

	if err := fn(); err != nil {
		infra.GlobalMetrics.RecordError()
		fmt.Fprintln(a.out, userMessage(err))
		slog.Error("command failed", append(attrs, slog.Any("error", err))...)
		return exitStatusFor(err)
	}

	slog.Info("command completed", attrs...)
	return subcommands.ExitSuccess
}

// requireLogin is the auth step of the middleware for verbs that need a session.
func (a *App) requireLogin() (*domain.User, error) {
	if a.session.User == nil {
		return nil, domain.ErrNotAuthorized
	}
	return a.session.User, nil
}

func formatAge(t time.Time, now time.Time) string {
	if t.IsZero() {
		return "never"
	}
	age := now.Sub(t).Round(time.Second)
	if age < 0 {
		age = 0
	}
	return age.String() + " ago"
}
