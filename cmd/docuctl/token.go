package main

import (
	"fmt"
	"os"
	"time"

	jwt "github.com/dgrijalva/jwt-go"
	"github.com/spf13/cobra"
)

// NewTokenCmd creates the token subcommand. It signs bearer tokens
// accepted by the api-server for build imports.
func NewTokenCmd() *cobra.Command {
	var secret, subject string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:          "token",
		Short:        "Sign a bearer token for build imports",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if secret == "" {
				secret = os.Getenv("DOCU_JWT_SECRET")
			}
			if secret == "" {
				return fmt.Errorf("--secret or DOCU_JWT_SECRET is required")
			}

			if subject == "" {
				return fmt.Errorf("--subject is required")
			}

			if ttl <= 0 {
				return fmt.Errorf("--ttl must be positive")
			}

			now := time.Now()
			token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.StandardClaims{
				Subject:   subject,
				IssuedAt:  now.Unix(),
				ExpiresAt: now.Add(ttl).Unix(),
			})

			signed, err := token.SignedString([]byte(secret))
			if err != nil {
				return fmt.Errorf("signing token: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), signed)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&secret, "secret", "", "HMAC secret shared with the api-server (default $DOCU_JWT_SECRET)")
	flags.StringVar(&subject, "subject", "", "who imports builds with the token")
	flags.DurationVar(&ttl, "ttl", 24*time.Hour, "how long the token is valid")

	return cmd
}
