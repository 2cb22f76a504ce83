// Package urls handles parsing and validation of the server base URL a
// device reports to.
//
// A server base URL has the form "scheme://host[:port]/path" and points at
// the root of the ReductStore/observability stack. Besides validation, the
// package derives the bare host portion of a URL (everything after "//" up
// to the next "/"), which the configuration synchronizer uses for its
// secondary host-only replacement pass.
//
// Malformed input never panics; it is reported as a *ParseError so callers
// can decide between aborting and skipping the host pass with a warning.
package urls
