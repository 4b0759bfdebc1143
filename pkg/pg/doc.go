// Package pg connects idvault to PostgreSQL through pgx/v5 and applies the
// schema with goose.
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil { ... }
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg, identity.Migrations, log); err != nil { ... }
//
// Connect retries with a linear back-off until the database answers a ping or
// the attempts run out. Migrate reads goose SQL files from any fs.FS, so
// packages embed their own migrations. The Is* helpers classify driver errors
// so repositories can map them to domain errors.
package pg
