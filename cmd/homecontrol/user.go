package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/nerrad567/homecontrol-core/internal/auth"
	"github.com/nerrad567/homecontrol-core/internal/infrastructure/database"
	"github.com/nerrad567/homecontrol-core/migrations"
)

func newUserCmd(configPath *string) *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Manage API accounts",
	}

	var group string
	addCmd := &cobra.Command{
		Use:   "add <username>",
		Short: "Create an API account",
		Long: `Create an active API account. The password is prompted for on a terminal,
otherwise the first line of standard input is used.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readPassword(cmd.InOrStdin(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return withDatabase(cmd.Context(), *configPath, func(ctx context.Context, db *database.DB) error {
				user, err := addUser(ctx, db, args[0], password, auth.Group(group))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created user %s (%s) in group %s\n",
					user.Username, user.ID, user.Group)
				return nil
			})
		},
	}
	addCmd.Flags().StringVarP(&group, "group", "g", string(auth.GroupDefault),
		"permission group (default or admin)")

	userCmd.AddCommand(addCmd)
	return userCmd
}

// addUser makes sure the schema is current, then stores the account.
func addUser(ctx context.Context, db *database.DB, username, password string, group auth.Group) (*auth.User, error) {
	if _, err := db.Migrate(ctx, migrations.FS); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	// The token settings are irrelevant for account creation.
	svc := auth.NewService(auth.NewUserRepository(db.DB), "", 0)
	user, err := svc.AddUser(ctx, username, password, group)
	if err != nil {
		return nil, fmt.Errorf("adding user %q: %w", username, err)
	}
	return user, nil
}

// readPassword prompts twice without echo when in is a terminal. Otherwise
// it reads a single line.
func readPassword(in io.Reader, prompt io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(prompt, "Password: ")
		first, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		fmt.Fprint(prompt, "Repeat password: ")
		second, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		if string(first) != string(second) {
			return "", errors.New("passwords do not match")
		}
		return string(first), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", errors.New("password is required")
	}
	return password, nil
}
