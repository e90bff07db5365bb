package store

import "database/sql"

// DB exposes the connection pool for pragma checks.
func (s *Store) DB() *sql.DB { return s.db }
