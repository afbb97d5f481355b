package cmd

import (
	"context"
	"io/fs"
	"log"
	"os"

	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"github.com/frahmantamala/employee-management/db"
)

var (
	migrateCmd = &cobra.Command{
		RunE:  runMigration,
		Use:   "migrate",
		Short: "to run db migration files under db/migrations directory",
	}
	migrateRollback bool
	migrateStatus   bool
	migrateDir      string
)

func init() {
	migrateCmd.Flags().BoolVarP(&migrateRollback, "rollback", "r", false, "to rollback the latest version of sql migration")
	migrateCmd.Flags().BoolVar(&migrateStatus, "status", false, "print applied and pending migrations")
	migrateCmd.PersistentFlags().StringVarP(&migrateDir, "dir", "d", "", "sql migrations directory (defaults to the embedded set)")
}

func runMigration(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	cfg, lg := mustLoad()

	conn, err := goose.OpenDBWithDriver(sqlDriver, cfg.Database.GetDSN())
	if err != nil {
		log.Fatalf("goose: failed to open DB: %v\n", err)
	}
	defer conn.Close()

	goose.SetTableName("schema_migrations")
	goose.SetBaseFS(migrationsFS())

	command := "up"
	switch {
	case migrateStatus:
		command = "status"
	case migrateRollback:
		command = "down"
	}

	lg.Info("running migrations", "command", command, "dir", migrateDir)
	if err := goose.RunContext(ctx, command, conn, migrationsPath()); err != nil {
		log.Fatalf("goose %s: %v", command, err)
	}

	return nil
}

func migrationsFS() fs.FS {
	if migrateDir != "" {
		return os.DirFS(migrateDir)
	}
	return db.Migrations
}

func migrationsPath() string {
	if migrateDir != "" {
		return "."
	}
	return db.MigrationsDir
}
