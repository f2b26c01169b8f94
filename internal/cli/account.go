package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
)

type registerCmd struct {
	app      *App
	username string
	password string
}

func (*registerCmd) Name() string     { return "register" }
func (*registerCmd) Synopsis() string { return "create a new account" }
func (*registerCmd) Usage() string {
	return `register --username <name> --password <password>

  Creates a new account with a portfolio holding an empty base-currency wallet.
`
}

func (c *registerCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.username, "username", "", "Unique account name.")
	f.StringVar(&c.password, "password", "", "Password, at least 4 characters.")
}

func (c *registerCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.app.run("register", func() error {
		user, err := c.app.deps.Auth.Register(c.username, c.password)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.app.out, "User %q registered (id %d). Log in to start trading.\n", user.Username, user.ID)
		return nil
	})
}

type loginCmd struct {
	app      *App
	username string
	password string
}

func (*loginCmd) Name() string     { return "login" }
func (*loginCmd) Synopsis() string { return "log in to an existing account" }
func (*loginCmd) Usage() string {
	return `login --username <name> --password <password>

  Starts a session. All trading commands require one.
`
}

func (c *loginCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.username, "username", "", "Account name.")
	f.StringVar(&c.password, "password", "", "Account password.")
}

func (c *loginCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.app.run("login", func() error {
		user, err := c.app.deps.Auth.Login(c.username, c.password)
		if err != nil {
			return err
		}
		c.app.session.User = user
		fmt.Fprintf(c.app.out, "Welcome, %s!\n", user.Username)
		return nil
	})
}

type logoutCmd struct {
	app *App
}

func (*logoutCmd) Name() string           { return "logout" }
func (*logoutCmd) Synopsis() string       { return "end the current session" }
func (*logoutCmd) Usage() string          { return "logout\n" }
func (*logoutCmd) SetFlags(*flag.FlagSet) {}

func (c *logoutCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.app.run("logout", func() error {
		if _, err := c.app.requireLogin(); err != nil {
			return err
		}
		fmt.Fprintf(c.app.out, "Logged out %s.\n", c.app.session.User.Username)
		c.app.session.User = nil
		return nil
	})
}

type changePasswordCmd struct {
	app      *App
	password string
}

func (*changePasswordCmd) Name() string     { return "change-password" }
func (*changePasswordCmd) Synopsis() string { return "set a new password for the logged-in account" }
func (*changePasswordCmd) Usage() string {
	return `change-password --new <password>

  Re-hashes the password with a fresh salt and persists it.
`
}

func (c *changePasswordCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.password, "new", "", "New password, at least 4 characters.")
}

func (c *changePasswordCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.app.run("change-password", func() error {
		user, err := c.app.requireLogin()
		if err != nil {
			return err
		}
		if err := c.app.deps.Auth.ChangePassword(user, c.password); err != nil {
			return err
		}
		fmt.Fprintln(c.app.out, "Password changed.")
		return nil
	})
}
