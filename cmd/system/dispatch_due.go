package system

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/caretrack/caretrack_backend/config"
	"github.com/caretrack/caretrack_backend/internal/service/dispatch"
	"github.com/caretrack/caretrack_backend/internal/store/postgres"
	"github.com/caretrack/caretrack_backend/pkg/database"
	"github.com/caretrack/caretrack_backend/pkg/email"
	"github.com/caretrack/caretrack_backend/pkg/logs"
	"github.com/caretrack/caretrack_backend/pkg/push"
	"github.com/caretrack/caretrack_backend/pkg/sms"
)

// NewDispatchDueCommand drains pending notifications whose schedule has
// passed. Intended to run from cron alongside the server.
func NewDispatchDueCommand() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "dispatch-due",
		Short: "Dispatch pending notifications that are due",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, err := cmd.Root().PersistentFlags().GetString("config")
			if err != nil {
				return fmt.Errorf("failed to get config flag: %w", err)
			}
			cfg, err := config.ReadConfig(filepath.Dir(cfgPath))
			if err != nil {
				return fmt.Errorf("failed to read config: %w", err)
			}

			slog.SetDefault(logs.New(cfg))

			db, err := database.New(database.FromCentralConfig(cfg.Database))
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			conn := db.GetConnection()
			defer conn.Close()

			emailCli, err := email.NewFromCentral(cfg.Email)
			if err != nil {
				return fmt.Errorf("failed to build email client: %w", err)
			}
			smsCli, err := sms.NewFromConfig(cfg.SMS)
			if err != nil {
				return fmt.Errorf("failed to build sms client: %w", err)
			}
			pushCli := push.New(cfg.Push)

			st := postgres.New(conn)
			logger := slog.Default()
			dispatchers := []dispatch.Dispatcher{
				dispatch.NewPushDispatcher(st.Devices, st.Logs, pushCli, logger),
				dispatch.NewEmailDispatcher(emailCli, st.Logs, logger),
				dispatch.NewSMSDispatcher(smsCli, st.Logs, logger),
			}
			svc := dispatch.New(st.Notifications, st.Preferences, st.Users, dispatchers, cfg.Dispatch, logger)

			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			n, err := svc.DispatchDue(ctx, time.Now())
			if err != nil {
				return fmt.Errorf("dispatch due: %w", err)
			}

			fmt.Printf("Dispatched %d notifications.\n", n)
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "Maximum time to spend draining the queue")

	return cmd
}
