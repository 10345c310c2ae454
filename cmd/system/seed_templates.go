package system

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/caretrack/caretrack_backend/config"
	"github.com/caretrack/caretrack_backend/internal/service/notification"
	"github.com/caretrack/caretrack_backend/internal/store/postgres"
	"github.com/caretrack/caretrack_backend/pkg/database"
)

func NewSeedTemplatesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed-templates",
		Short: "Insert the built-in notification templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, err := cmd.Root().PersistentFlags().GetString("config")
			if err != nil {
				return fmt.Errorf("failed to get config flag: %w", err)
			}
			cfg, err := config.ReadConfig(filepath.Dir(cfgPath))
			if err != nil {
				return fmt.Errorf("failed to read config: %w", err)
			}

			db, err := database.New(database.FromCentralConfig(cfg.Database))
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			conn := db.GetConnection()
			defer conn.Close()

			timeout := time.Duration(cfg.Server.TimeoutSeconds) * time.Second
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			st := postgres.New(conn)
			created, err := notification.SeedTemplates(ctx, st.Templates)
			if err != nil {
				return fmt.Errorf("failed to seed templates: %w", err)
			}

			fmt.Printf("Templates seeded (%d created).\n", created)
			return nil
		},
	}

	return cmd
}
