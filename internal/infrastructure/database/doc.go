// Package database provides the SQLite connection behind the audit trail.
//
// This package manages:
//   - Database connection with WAL mode for concurrent access
//   - Schema migrations applied from an fs.FS (see package migrations)
//   - Connection lifecycle and health checks
//
// The tracker never reads its own state back from here: the database only
// keeps an append-only history of what happened during a session.
//
// Usage:
//
//	db, err := database.Open(ctx, database.Config{Path: cfg.Database.Path, WALMode: true})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx, migrations.FS); err != nil {
//	    log.Fatal(err)
//	}
package database
