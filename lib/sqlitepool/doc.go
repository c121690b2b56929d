// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package sqlitepool opens the SQLite database that holds taskboard's
// client-local state.
//
// It wraps zombiezen.com/go/sqlite's sqlitex.Pool with a fixed set of
// pragmas (WAL journal, NORMAL synchronous, a busy timeout so the CLI
// and the viewer can share one database file) and a schema script run
// on every new connection. Connections are not safe for concurrent
// use; [Pool.With] and [Pool.WithTransaction] take a connection, run a
// function, and return it.
//
//	pool, err := sqlitepool.Open(sqlitepool.Config{
//	    Path:   filepath.Join(stateRoot, "taskboard.db"),
//	    Schema: schema,
//	    Logger: logger,
//	})
//	if err != nil {
//	    return err
//	}
//	defer pool.Close()
//
//	err = pool.WithTransaction(ctx, func(conn *sqlite.Conn) error {
//	    return sqlitex.Execute(conn, "INSERT ...", &sqlitex.ExecOptions{Args: args})
//	})
package sqlitepool
