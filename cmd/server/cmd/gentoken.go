package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/campusconnect/server/internal/auth"
	"github.com/campusconnect/server/internal/config"
	"github.com/campusconnect/server/internal/domain/users"
	"github.com/campusconnect/server/internal/storage/postgres"
)

var (
	tokenUserID   int64
	tokenRole     string
	tokenEmail    string
	tokenPassword string
)

var gentokenCmd = &cobra.Command{
	Use:   "gentoken",
	Short: "Generate a JWT for local testing",
	Long: `Generate a signed JWT using the configured JWT_SECRET.

With --email and --password the command verifies the credentials
against the database and mints a token for that account. Without them
it mints a token for the given --user-id and --role without any lookup.

Intended for local development and curl-based testing; the identity
provider issues real tokens in production.

Examples:
  # Token for a regular user (no database access)
  server gentoken --user-id 42

  # Token for an admin
  server gentoken --user-id 1 --role ADMIN

  # Token for a real account, checked against the database
  server gentoken --email admin@campus.edu --password secret`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("config error: %w", err)
		}

		subjectID := tokenUserID
		subjectRole := auth.NormalizeRole(tokenRole)

		if tokenEmail != "" {
			user, err := verifyTokenSubject(cfg, tokenEmail, tokenPassword)
			if err != nil {
				return err
			}
			subjectID = user.ID
			subjectRole = user.Role
		}

		manager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry, cfg.Auth.Issuer)
		token, err := manager.Generate(subjectID, subjectRole)
		if err != nil {
			return fmt.Errorf("generate token: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, token)
		fmt.Fprintln(cmd.ErrOrStderr(), "\nTest with:")
		fmt.Fprintf(cmd.ErrOrStderr(), "curl -H 'Authorization: Bearer %s' http://localhost:%d/events/me\n", token, cfg.Server.Port)
		return nil
	},
}

func verifyTokenSubject(cfg config.Config, email, password string) (*users.User, error) {
	if password == "" {
		return nil, errors.New("--password is required with --email")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	defer pool.Close()

	repo, err := postgres.NewRepository(pool)
	if err != nil {
		return nil, err
	}

	svc := users.NewService(repo.Users(), config.NewLogger(cfg.Logging))
	user, err := svc.VerifyCredentials(ctx, email, password)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, errors.New("invalid email or password")
		}
		return nil, fmt.Errorf("verify credentials: %w", err)
	}
	return user, nil
}

func init() {
	gentokenCmd.Flags().Int64Var(&tokenUserID, "user-id", 1, "user id to embed as the token subject")
	gentokenCmd.Flags().StringVar(&tokenRole, "role", "USER", "role claim (USER or ADMIN)")
	gentokenCmd.Flags().StringVar(&tokenEmail, "email", "", "verify this account's credentials and mint its token")
	gentokenCmd.Flags().StringVar(&tokenPassword, "password", "", "password for --email")
}
