package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/cmlabs-hris/workforce-sync-go/internal/domain/auth"
	"github.com/cmlabs-hris/workforce-sync-go/internal/pkg/jwt"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

type tokenOptions struct {
	userID     string
	employeeID string
	role       string
	admin      bool
	ttl        time.Duration
}

func newTokenCmd() *cobra.Command {
	var opts tokenOptions

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an access token signed with JWT_SECRET_KEY",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()
			secret := os.Getenv("JWT_SECRET_KEY")
			if secret == "" {
				return errors.New("JWT_SECRET_KEY is required")
			}

			principal, err := opts.principal()
			if err != nil {
				return err
			}

			token, expiresAt, err := jwt.NewJWTService(secret).GenerateAccessToken(principal, opts.ttl)
			if err != nil {
				return fmt.Errorf("failed to sign token: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires at %s\n", time.Unix(expiresAt, 0).Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.userID, "user", "syncctl", "user_id claim")
	cmd.Flags().StringVar(&opts.employeeID, "employee", "", "employee_id claim (required for managers)")
	cmd.Flags().StringVar(&opts.role, "role", string(auth.RoleOwner), "Role: owner, manager or employee")
	cmd.Flags().BoolVar(&opts.admin, "admin", true, "Grant admin privilege")
	cmd.Flags().DurationVar(&opts.ttl, "ttl", time.Hour, "Token lifetime")

	return cmd
}

func (o tokenOptions) principal() (auth.Principal, error) {
	role := auth.Role(o.role)
	switch role {
	case auth.RoleOwner, auth.RoleManager, auth.RoleEmployee:
	default:
		return auth.Principal{}, fmt.Errorf("invalid --role %q", o.role)
	}
	if o.ttl <= 0 {
		return auth.Principal{}, errors.New("--ttl must be positive")
	}

	p := auth.Principal{UserID: o.userID, Role: role, IsAdmin: o.admin}
	if o.employeeID != "" {
		id := o.employeeID
		p.EmployeeID = &id
	}
	if role == auth.RoleManager && p.EmployeeID == nil {
		return auth.Principal{}, errors.New("--employee is required for the manager role")
	}
	return p, nil
}
