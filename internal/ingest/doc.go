// Package ingest creates missions and loads their page scans. Page text
// files are the machine first pass; once ingested they become the immutable
// original_text that cleaning revisions are layered on top of.
package ingest
