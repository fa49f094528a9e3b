package main

import (
	"math/rand"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/sagabooks/saga/pkg/catalog"
	"github.com/sagabooks/saga/pkg/config"
	"github.com/sagabooks/saga/pkg/database"
	"github.com/sagabooks/saga/pkg/goodreads"
	"github.com/sagabooks/saga/pkg/googlebooks"
	"github.com/sagabooks/saga/pkg/keygen"
	"github.com/sagabooks/saga/pkg/lookup"
	"github.com/sagabooks/saga/pkg/migrations"
	"github.com/sagabooks/saga/pkg/version"
	"github.com/urfave/cli/v2"
)

func main() {
	log := logger.New()

	app := &cli.App{
		Name:        "importer",
		Usage:       "resolve imported books against a bibliographic source",
		Description: "Runs the lookup workflows against the catalog database.",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "books", Usage: "resolve books that haven't been tried yet"},
			&cli.BoolFlag{Name: "retry", Usage: "with --books, re-process books whose last lookup failed"},
			&cli.StringFlag{Name: "hint", Usage: "with --books, CSV `FILE` of (book_id, title, link) overrides"},
			&cli.BoolFlag{Name: "series", Usage: "fetch series pages and link member books"},
			&cli.BoolFlag{Name: "authors", Usage: "fetch author bio pages"},
			&cli.BoolFlag{Name: "images", Usage: "mirror cover and author images"},
			&cli.BoolFlag{Name: "purge", Usage: "purge the author/series/genre graph and rebuild it from stored links"},
			&cli.StringFlag{Name: "source", Value: "goodreads", Usage: "bibliographic source (goodreads or googlebooks)"},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Err(err).Fatal("app run error")
	}
}

func run(c *cli.Context) error {
	id, err := uuid.NewRandom()
	if err != nil {
		return errors.WithStack(err)
	}
	log := logger.New().ID(id.String())
	ctx := log.WithContext(c.Context)

	log.Info("starting saga importer", logger.Data{"version": version.Version})

	cfg, err := config.New()
	if err != nil {
		return err
	}

	db, err := database.New(cfg)
	if err != nil {
		return err
	}

	group, err := migrations.BringUpToDate(ctx, db)
	if err != nil {
		return err
	}
	if group.ID != 0 {
		log.Info("migrated to new group", logger.Data{"group_id": group.ID, "migration_names": group.Migrations.String()})
	}

	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))

	var source lookup.Source
	switch c.String("source") {
	case "goodreads":
		source = goodreads.New(cfg, rnd)
	case "googlebooks":
		source = googlebooks.New(cfg, rnd)
	default:
		return errors.Errorf("unknown source: %s", c.String("source"))
	}

	processor := lookup.NewProcessor(cfg, catalog.NewService(db), keygen.New(), source)

	if c.Bool("purge") {
		if err := processor.PurgeAndRebuild(ctx); err != nil {
			return err
		}
	}

	if c.Bool("books") {
		if hint := c.String("hint"); hint != "" {
			if err := processor.ProcessHintFile(ctx, hint); err != nil {
				return err
			}
		} else {
			err := processor.ProcessBooks(ctx, lookup.ProcessBooksOptions{Retry: c.Bool("retry")})
			if err != nil {
				return err
			}
		}
	}

	if c.Bool("series") {
		if err := processor.CompleteSeries(ctx); err != nil {
			return err
		}
	}

	if c.Bool("authors") {
		if err := processor.EnrichAuthors(ctx); err != nil {
			return err
		}
	}

	if c.Bool("images") {
		if err := processor.MirrorImages(ctx); err != nil {
			return err
		}
	}

	return nil
}
