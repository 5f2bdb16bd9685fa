package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Badsnus/cu-clubs-bot/server/cmd/server"
	"github.com/Badsnus/cu-clubs-bot/server/internal/adapters/config"
	"github.com/Badsnus/cu-clubs-bot/server/internal/adapters/controller/http/setup"
	"github.com/Badsnus/cu-clubs-bot/server/pkg/logger"
	"github.com/spf13/cobra"
)

var (
	configDir string

	adminName     string
	adminEmail    string
	adminPassword string

	rootCmd = &cobra.Command{
		Use:   "server",
		Short: "Clubs platform server",
		Long: `Serves the university clubs platform: accounts, clubs and club requests,
memberships, announcements, events with limited seating and their tickets.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serveCmd.RunE(cmd, args)
		},
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server and the reminder scheduler",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, err := config.Get(ctx, configDir)
			if err != nil {
				return err
			}
			defer cfg.Close()

			s, err := server.New(cfg)
			if err != nil {
				return err
			}
			return s.Start(ctx, setup.Setup(s))
		},
	}

	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(_ *cobra.Command, _ []string) error {
			settings, err := config.Load(configDir)
			if err != nil {
				return err
			}
			db, err := config.OpenDatabase(settings)
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
			fmt.Println("Database schema is up to date")
			return nil
		},
	}

	createSuperAdminCmd = &cobra.Command{
		Use:   "create-superadmin",
		Short: "Grant SUPER_ADMIN to an account, creating it when missing",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			cfg, err := config.Get(ctx, configDir)
			if err != nil {
				return err
			}
			defer cfg.Close()

			s, err := server.New(cfg)
			if err != nil {
				return err
			}
			user, err := s.Users.CreateSuperAdmin(ctx, adminName, adminEmail, adminPassword)
			if err != nil {
				return err
			}
			logger.Log.Infof("Super admin ready (user_id=%s, email=%s)", user.ID, user.Email)
			return nil
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", ".", "directory containing config.yaml")

	createSuperAdminCmd.Flags().StringVar(&adminName, "name", "Administrator", "display name of a new account")
	createSuperAdminCmd.Flags().StringVar(&adminEmail, "email", "", "account email")
	createSuperAdminCmd.Flags().StringVar(&adminPassword, "password", "", "password of a new account")
	_ = createSuperAdminCmd.MarkFlagRequired("email")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(createSuperAdminCmd)
}
