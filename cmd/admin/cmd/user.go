package cmd

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/stockkeeper/internal/server"
	"github.com/dmitrijs2005/stockkeeper/internal/server/config"
	"github.com/dmitrijs2005/stockkeeper/internal/server/models"
	"github.com/dmitrijs2005/stockkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/stockkeeper/internal/server/services"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

type userCreator interface {
	CreateUser(ctx context.Context, name, email, password string) (*models.User, error)
}

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

var newUserCreator = func(c *config.Config, db *sql.DB) (userCreator, error) {
	a, _, err := server.NewSessionAuth(c)
	if err != nil {
		return nil, err
	}
	return services.NewUserService(db, repomanager.NewPostgresRepositoryManager(), a, c.BcryptCost), nil
}

var errPasswordMismatch = errors.New("passwords do not match")

// promptPassword asks twice without echo and returns the password once both
// entries agree.
func promptPassword(w io.Writer) (string, error) {
	fd := int(os.Stdin.Fd())

	fmt.Fprint(w, "Password: ")
	pw, err := readPassword(fd)
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}

	fmt.Fprint(w, "Confirm password: ")
	confirm, err := readPassword(fd)
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}

	if !bytes.Equal(pw, confirm) {
		return "", errPasswordMismatch
	}
	return string(pw), nil
}

func newUserCmd(opts *rootOptions) *cobra.Command {
	user := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}

	var name, email string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a user, prompting for the password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, err := promptPassword(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			return opts.withDB(cmd.Context(), func(c *config.Config, db *sql.DB) error {
				us, err := newUserCreator(c, db)
				if err != nil {
					return err
				}
				u, err := us.CreateUser(cmd.Context(), name, email, password)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created user %s (%s)\n", u.ID, u.Email)
				return nil
			})
		},
	}
	create.Flags().StringVar(&name, "name", "", "display name")
	create.Flags().StringVar(&email, "email", "", "login email")
	_ = create.MarkFlagRequired("name")
	_ = create.MarkFlagRequired("email")

	user.AddCommand(create)
	return user
}
