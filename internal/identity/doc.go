// Package identity resolves the opaque identity value carried by requests
// into cleaner records. The core never authenticates; it only needs a stable
// id to compare for lock ownership, so unknown identities are registered on
// first sight.
package identity
