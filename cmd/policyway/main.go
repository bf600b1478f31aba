package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/policywaylabs/policyway/internal/apikey"
	"github.com/policywaylabs/policyway/internal/audit"
	"github.com/policywaylabs/policyway/internal/bootstrap"
	"github.com/policywaylabs/policyway/internal/clock"
	"github.com/policywaylabs/policyway/internal/config"
	"github.com/policywaylabs/policyway/internal/customer"
	"github.com/policywaylabs/policyway/internal/distribution"
	"github.com/policywaylabs/policyway/internal/invoice"
	"github.com/policywaylabs/policyway/internal/migration"
	"github.com/policywaylabs/policyway/internal/observability"
	"github.com/policywaylabs/policyway/internal/policy"
	"github.com/policywaylabs/policyway/internal/ratelimit"
	"github.com/policywaylabs/policyway/internal/receipt"
	"github.com/policywaylabs/policyway/internal/redis"
	"github.com/policywaylabs/policyway/internal/scheduler"
	"github.com/policywaylabs/policyway/internal/seed"
	"github.com/policywaylabs/policyway/internal/server"
	"github.com/policywaylabs/policyway/pkg/db"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "policyway",
		Short:   "PolicyWay commission payout CLI",
		Version: readVersionFromEnv(),
	}
	root.AddCommand(newMigrateCmd(), newServeCmd(), newSeedCmd(), newAllCmd())
	return root
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations and activate schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate()
		},
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the API server and background scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			runServe()
			return nil
		},
	}
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the demo dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed()
		},
	}
}

func newAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "Run migrations, then start the API server and scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := runMigrate(); err != nil {
				return err
			}
			runServe()
			return nil
		},
	}
}

func runMigrate() error {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(registerSnowflake),
		db.Module,
		migration.Module,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("migrate failed: %w", err)
	}
	_ = app.Stop(context.Background())
	return nil
}

func runServe() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(registerSnowflake),
		db.Module,
		clock.Module,
		redis.Module,
		ratelimit.Module,
		audit.Module,
		apikey.Module,
		customer.Module,
		policy.Module,
		receipt.Module,
		distribution.Module,
		invoice.Module,
		bootstrap.Module,
		scheduler.Module,
		server.Module,
	)
	app.Run()
}

func runSeed() error {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(registerSnowflake),
		db.Module,
		fx.Invoke(func(conn *gorm.DB) error {
			return seed.EnsureDemoData(conn)
		}),
	)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("seed failed: %w", err)
	}
	_ = app.Stop(context.Background())
	return nil
}

func registerSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}

func readVersionFromEnv() string {
	if v := strings.TrimSpace(os.Getenv("APP_VERSION")); v != "" {
		return v
	}
	return "dev"
}
