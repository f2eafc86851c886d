// Package session stores generation sessions and defines their lifecycle.
//
// A Session tracks one termination-song request from creation through the
// pipeline stages to a terminal ready or failed state. The Store interface
// has two backends: an in-memory map (the default; sessions are deliberately
// process-lifetime only) and SQLite for deployments that want sessions to
// survive a restart. Both apply updates atomically so pollers observe either
// the pre- or post-update record.
//
// Treat this package as the single source of truth for session semantics;
// when adding statuses or fields, update schema.sql and bump schemaVersion.
package session
