package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"perfumery/internal/accounts"
	applog "perfumery/internal/log"
)

// usersFile is the provisioning document read by `users assign`.
//
//	users:
//	  - email: rd@example.com
//	    name: Research Lead
//	    password: change-me
//	    role: rd
type usersFile struct {
	Users []accounts.Spec `yaml:"users"`
}

func readUsersFile(path string) ([]accounts.Spec, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var doc usersFile
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(doc.Users) == 0 {
		return nil, fmt.Errorf("%s lists no users", path)
	}
	return doc.Users, nil
}

func newUsersCommand() *cobra.Command {
	users := &cobra.Command{
		Use:   "users",
		Short: "Provision and check user accounts",
	}

	var file string
	assign := &cobra.Command{
		Use:   "assign",
		Short: "Create or update accounts and their roles from a YAML file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			specs, err := readUsersFile(file)
			if err != nil {
				return err
			}
			db, err := openDatabase(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, spec := range specs {
				user, outcome, err := accounts.Assign(cmd.Context(), db, spec)
				if err != nil {
					return fmt.Errorf("assign %s: %w", spec.Email, err)
				}
				fmt.Fprintf(out, "%-9s %s (%s)\n", outcome, user.Email, user.Role.Label())
			}
			applog.Info(cmd.Context(), "accounts assigned", "count", len(specs), "file", file)
			return nil
		},
	}
	assign.Flags().StringVarP(&file, "file", "f", "users.yaml", "YAML file listing users")

	verify := &cobra.Command{
		Use:   "verify",
		Short: "Report accounts that cannot sign in or have no role",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDatabase(cmd.Context())
			if err != nil {
				return err
			}
			problems, err := accounts.Verify(cmd.Context(), db)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(problems) == 0 {
				fmt.Fprintln(out, "All accounts have a role and a bcrypt password.")
				return nil
			}
			for _, p := range problems {
				fmt.Fprintf(out, "%s: %s\n", p.Email, p.Reason)
			}
			return fmt.Errorf("%d account(s) need attention", len(problems))
		},
	}

	users.AddCommand(assign, verify)
	return users
}
