// Package logging configures slog output for kallisto.
//
// It provides console and JSON handlers, helpers for building attributes with
// standardized keys, and component loggers so every subsystem tags its records
// consistently.
package logging
