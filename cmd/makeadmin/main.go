// Command makeadmin promotes an existing user to the ADMIN role. Promotion
// happens out-of-band only; the web surface never changes roles.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("makeadmin", flag.ContinueOnError)
	email := fs.String("email", "", "email of the user to promote")
	dbPath := fs.String("db", "./data/fintrack.db", "path to the SQLite database")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *email == "" {
		return errors.New("-email is required")
	}

	repo, err := storage.NewRepository(*dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer repo.Close()

	user, err := repo.SetUserRole(context.Background(), *email, core.RoleAdmin)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return fmt.Errorf("no user with email %q", *email)
		}
		return fmt.Errorf("set role: %w", err)
	}

	fmt.Fprintf(stdout, "user %s (id %d) is now %s\n", user.Email, user.ID, user.Role)
	return nil
}
