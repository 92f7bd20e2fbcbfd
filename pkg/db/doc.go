// Package db wraps pgx pool setup, goose migrations and a few helpers
// the PostgreSQL repositories share.
//
//	var cfg db.Config
//	if err := env.Parse(&cfg); err != nil { ... }
//	pool, err := db.Connect(ctx, cfg)
//	err = db.Migrate(ctx, pool, migrations.FS, cfg.MigrationsTable, log)
package db
