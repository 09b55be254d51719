// Package api defines wire-format types and converters for the HTTP API
// layer. It translates internal transcript models into transport-friendly
// DTOs so consumers never couple to internal types.
//
// # Key Types
//
// Mission: transport representation of a mission with cleaning progress.
//
// Page: a page with its derived current text and lock state.
//
// NextPage: routing result, either a claimed page or a done signal.
//
// # Design Notes
//
// DTOs use camelCase JSON tags. Timestamps use RFC3339 with milliseconds.
// Lock holders are exposed as cleaner names, never internal ids.
package api
