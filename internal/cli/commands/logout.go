package commands

import (
	"context"
	"errors"
	"fmt"

	fsrepo "Elegora/internal/cli/repo/fs"
	"Elegora/internal/config"
)

type logoutCmd struct{}

func (logoutCmd) Name() string        { return "logout" }
func (logoutCmd) Description() string { return "Forget the stored dev ledger session" }
func (logoutCmd) Usage() string       { return "logout" }

func (logoutCmd) Run(_ context.Context, _ *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	st := fsrepo.AuthFSStore{}
	login, err := st.LoadLogin()
	if err != nil {
		login = ""
	}
	if err := st.Clear(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	if login == "" {
		fmt.Fprintln(Out, "No active session")
		return nil
	}
	fmt.Fprintf(Out, "Logged out %s\n", login)
	return nil
}

// whoamiCmd печатает логин сохранённой сессии без обращения к леджеру.
type whoamiCmd struct{}

func (whoamiCmd) Name() string        { return "whoami" }
func (whoamiCmd) Description() string { return "Show the login of the stored session" }
func (whoamiCmd) Usage() string       { return "whoami" }

func (whoamiCmd) Run(_ context.Context, _ *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	login, err := fsrepo.AuthFSStore{}.LoadLogin()
	if err != nil {
		return errors.New("not logged in: run login or register")
	}
	fmt.Fprintln(Out, login)
	return nil
}

func init() {
	RegisterCmd(logoutCmd{})
	RegisterCmd(whoamiCmd{})
}
