package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/promanage/taskboard/internal/config"
	"github.com/promanage/taskboard/internal/database"
	"github.com/spf13/cobra"
)

// NewListCmd creates the list command, which prints a summary of all
// runtime configuration stored in the database.
func NewListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all runtime configuration",
		Long:  "List CORS and rate limit configuration stored in the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			db, err := database.New(cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer func() {
				if err := db.Close(); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
				}
			}()

			ctx := context.Background()

			corsRepo := database.NewCorsConfigRepository(db)
			corsCfg, err := corsRepo.Get(ctx)
			if err != nil {
				return fmt.Errorf("failed to get cors config: %w", err)
			}
			if corsCfg == nil {
				fmt.Println("CORS: not configured (falls back to FRONTEND_URL)")
			} else {
				fmt.Printf("CORS: origins=%s allow-credentials=%v max-age=%d\n",
					corsCfg.AllowedOrigins, corsCfg.AllowCredentials, corsCfg.MaxAge)
			}

			ratelimitRepo := database.NewRatelimitConfigRepository(db)
			rlCfg, err := ratelimitRepo.Get(ctx)
			if err != nil {
				return fmt.Errorf("failed to get ratelimit config: %w", err)
			}
			if rlCfg == nil {
				fmt.Println("Rate limit: not configured (falls back to default)")
			} else {
				fmt.Printf("Rate limit: %s\n", rlCfg.Rate)
			}

			return nil
		},
	}

	return cmd
}
