// Package main hosts the kallisto CLI entrypoint and command graph.
//
// The Cobra-based command tree covers mission ingestion, cleaning from the
// terminal, transcript export, and configuration scaffolding. It centralizes
// configuration resolution and store access so subcommands can focus on user
// experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
