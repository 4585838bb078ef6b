// Command loaddata bulk-loads categories, companies and stories from a YAML
// fixture. Stories are saved raw: no email is sent and no cache is purged.
package main

import (
	"context"
	"flag"
	"fmt"
	"go-success-stories/internal/config"
	"go-success-stories/internal/data"
	"go-success-stories/internal/fixture"
	"go-success-stories/internal/logger"
	"go-success-stories/internal/markup"
	"go-success-stories/internal/notify"
	"go-success-stories/internal/service"
	"os"
)

// rawOnly satisfies the notifier dependencies for a process that only ever
// saves raw stories. Any non-raw save through it is a bug.
type rawOnly struct{}

func (rawOnly) StorySaved(ctx context.Context, story *data.Story, opts notify.Options) (*notify.Result, error) {
	if !opts.Raw {
		return nil, fmt.Errorf("loaddata: unexpected non-raw save of %q", story.Slug)
	}
	return &notify.Result{}, nil
}

func main() {
	file := flag.String("file", "", "path to the YAML fixture to load")
	migrate := flag.Bool("migrate", true, "apply database migrations before loading")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log, os.Stderr)

	if *file == "" {
		flag.Usage()
		os.Exit(2)
	}

	f, err := os.Open(*file)
	if err != nil {
		log.Fatal(err, "Failed to open fixture")
	}
	defer f.Close()
	set, err := fixture.Decode(f)
	if err != nil {
		log.Fatal(err, "Failed to decode fixture")
	}

	if *migrate {
		if err := data.ApplyMigrations(cfg.DB.DSN, "migrations"); err != nil {
			log.Fatal(err, "Failed to apply migrations")
		}
	}
	db, err := data.NewDB(cfg.DB)
	if err != nil {
		log.Fatal(err, "Failed to connect to database")
	}
	defer db.Close()

	categoryRepository := data.NewCategoryRepository(db)
	companyRepository := data.NewCompanyRepository(db)
	storyRepository := data.NewSQLStoryRepository(db)
	storyService := service.NewStoryService(storyRepository, categoryRepository, companyRepository,
		markup.New(cfg.Markup.DefaultType), rawOnly{}, log)

	loader := fixture.NewLoader(service.NewCategoryService(categoryRepository), companyRepository, storyRepository, storyService, log)
	sum, err := loader.Load(context.Background(), set)
	if err != nil {
		log.Fatal(err, "Failed to load fixture")
	}
	log.Info(fmt.Sprintf("Loaded %s: %d categories and %d companies created, %d stories created, %d updated",
		*file, sum.CategoriesCreated, sum.CompaniesCreated, sum.StoriesCreated, sum.StoriesUpdated))
}
