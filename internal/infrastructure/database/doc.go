// Package database provides SQLite persistence for HomeGuard Gateway.
//
// The gateway's only durable client state is the persisted session
// (token and expiry), stored in the session_state table so an operator
// survives gateway restarts without re-authenticating.
//
// # Features
//
//   - Automatic directory and file creation with restricted permissions
//   - WAL mode for crash safety
//   - Embedded SQL migrations applied in version order
//   - Health checks for monitoring
//
// # Usage
//
//	db, err := database.Open(database.Config{Path: cfg.Database.Path, WALMode: true, BusyTimeout: 5})
//	if err != nil { ... }
//	defer db.Close()
//	if err := db.Migrate(ctx); err != nil { ... }
package database
