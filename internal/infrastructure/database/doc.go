// Package database provides SQLite connectivity for the elgato-light
// command history.
//
// This package manages:
//   - Database connection with WAL mode so a second invocation can read
//     while another one writes
//   - Schema migrations from an fs.FS (normally the embedded migrations package)
//   - Lifecycle management
//
// Security Considerations:
//   - All queries use parameterised statements
//   - Database file permissions are set to 0600 (owner read/write only)
//
// Usage:
//
//	db, err := database.Open(database.Config{Path: cfg.HistoryPath(), WALMode: true, BusyTimeout: 5})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx, migrations.FS); err != nil {
//	    return err
//	}
//
// Migration files are named YYYYMMDD_HHMMSS_description.up.sql with an
// optional matching .down.sql.
package database
