// Package database owns the optional SQLite file used to keep sessions across server
// restarts (SESSION_STORE=sqlite).
//
// Nothing but session blobs is stored: the schema is the one scs/sqlite3store expects,
// and rows expire with the session lifetime.
//
//	db, err := database.NewDatabase("./storybook-sessions.db")
//	sqlDB, _ := db.DB.DB()
//	store := sqlite3store.New(sqlDB)
package database
