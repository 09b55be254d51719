// Package daemon runs the kallistod background process: it enforces
// single-instance execution with a lock file and serves the HTTP API that
// routes cleaners to pages, accepts revisions, and streams mission exports.
package daemon
