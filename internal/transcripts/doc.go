// Package transcripts persists missions, pages, revisions, and page locks in
// SQLite and exposes the operations the cleaning workflow is built on.
//
// The Store manages database connections and schema initialization, page lock
// acquisition (a conditional write so two cleaners can never claim the same
// page), revision commits (a single transaction covering the lock check and
// the append), and the routing queries that pick the next page needing
// cleaning. A page's current text is always derived from the latest revision;
// there is no duplicated mutable text column.
//
// Treat this package as the single source of truth for cleaning semantics;
// when lock or approval rules change, update schema.sql and bump schemaVersion.
package transcripts
