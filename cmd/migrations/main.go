package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/robinjoseph08/golib/logger"
	"github.com/sagabooks/saga/pkg/config"
	"github.com/sagabooks/saga/pkg/database"
	"github.com/sagabooks/saga/pkg/migrations"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
	"github.com/urfave/cli/v2"
)

func main() {
	log := logger.New()

	cfg, err := config.New()
	if err != nil {
		log.Err(err).Fatal("config error")
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Err(err).Fatal("database error")
	}

	app := &cli.App{
		Name:     "migrations",
		Usage:    "manage the saga catalog schema",
		Commands: commands(db),
	}
	if err := app.Run(os.Args); err != nil {
		log.Err(err).Fatal("app run error")
	}
}

func commands(db *bun.DB) []*cli.Command {
	migrator := migrate.NewMigrator(db, migrations.Migrations)

	return []*cli.Command{
		{
			Name:  "init",
			Usage: "create the migration bookkeeping tables",
			Action: func(c *cli.Context) error {
				return migrator.Init(c.Context)
			},
		},
		{
			Name:  "migrate",
			Usage: "apply unapplied migrations",
			Action: func(c *cli.Context) error {
				group, err := migrator.Migrate(c.Context)
				if err != nil {
					return err
				}
				if group.ID == 0 {
					fmt.Println("There are no new migrations to run")
					return nil
				}
				fmt.Printf("Migrated to %s\n", group)
				return nil
			},
		},
		{
			Name:  "rollback",
			Usage: "roll back the last migration group",
			Action: func(c *cli.Context) error {
				group, err := migrator.Rollback(c.Context)
				if err != nil {
					return err
				}
				if group.ID == 0 {
					fmt.Println("There are no groups to roll back")
					return nil
				}
				fmt.Printf("Rolled back %s\n", group)
				return nil
			},
		},
		{
			Name:  "create",
			Usage: "scaffold a new Go migration file",
			Action: func(c *cli.Context) error {
				name := strings.Join(c.Args().Slice(), "_")
				mf, err := migrator.CreateGoMigration(
					c.Context,
					name,
					migrate.WithGoTemplate(migrationTemplate),
				)
				if err != nil {
					return err
				}
				fmt.Printf("Created migration %s (%s)\n", mf.Name, mf.Path)
				return nil
			},
		},
		{
			Name:  "status",
			Usage: "print migration status",
			Action: func(c *cli.Context) error {
				ms, err := migrator.MigrationsWithStatus(c.Context)
				if err != nil {
					return err
				}
				fmt.Printf("Migrations: %s\n", ms)
				fmt.Printf("Unapplied migrations: %s\n", ms.Unapplied())
				fmt.Printf("Last migration group: %s\n", ms.LastGroup())
				return nil
			},
		},
	}
}

const migrationTemplate = `package %s

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

func init() {
	up := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec("")
		return errors.WithStack(err)
	}

	down := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec("")
		return errors.WithStack(err)
	}

	Migrations.MustRegister(up, down)
}
`
