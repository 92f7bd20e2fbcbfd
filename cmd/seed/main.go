// Command seed loads development fixtures into the database and prints
// an access token for the seeded user.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/dmitrymomot/inkwell/internal/config"
	"github.com/dmitrymomot/inkwell/internal/seed"
	"github.com/dmitrymomot/inkwell/internal/store/postgres"
	"github.com/dmitrymomot/inkwell/pkg/db"
	"github.com/dmitrymomot/inkwell/pkg/jwt"
	"github.com/dmitrymomot/inkwell/pkg/logger"
)

func main() {
	file := flag.String("file", "", "YAML fixtures file (defaults to the bundled fixtures)")
	flag.Parse()

	if err := run(*file); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(file string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, flush := logger.New(cfg.Log)
	defer flush()

	data, err := loadData(file)
	if err != nil {
		return err
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool, cfg.DB.MigrationsTable, log); err != nil {
		return err
	}

	store := postgres.New(pool)
	res, err := seed.Run(ctx, seed.Repositories{
		Users:      store.Users(),
		Categories: store.Categories(),
		Articles:   store.Articles(),
	}, data)
	if err != nil {
		return err
	}
	log.Info("fixtures seeded",
		slog.String("user_id", res.User.ID.String()),
		slog.Int("categories", len(res.Categories)),
		slog.Int("articles", len(res.Articles)),
	)

	tokens, err := jwt.New(cfg.JWT.Secret, jwt.WithIssuer(cfg.JWT.Issuer), jwt.WithTTL(cfg.JWT.TTL))
	if err != nil {
		return err
	}
	token, err := tokens.Issue(res.User.ID.String(), res.User.Name, res.User.Email)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}

func loadData(file string) (seed.Data, error) {
	if file == "" {
		return seed.Default()
	}
	f, err := os.Open(file)
	if err != nil {
		return seed.Data{}, err
	}
	defer f.Close()
	return seed.Decode(f)
}
