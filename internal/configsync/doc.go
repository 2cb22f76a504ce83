// Package configsync detects drift between previously applied device values
// and newly requested ones, and rewrites a configuration directory tree to
// match.
//
// # Contract
//
// A Plan is built from the old and new (device identity, server URL) pairs.
// For each pair where old differs from new, every regular file under the
// target directory is rewritten with a literal, global substring replacement
// of old with new. For the URL pair the plan additionally carries a derived
// host pair (everything after "//" up to the next "/"), replaced the same
// way, so bare host/IP references in the files follow the server move too.
//
// Replacement is strictly literal (strings.ReplaceAll): identity tokens and
// URLs containing characters that are metacharacters in pattern languages
// are substituted verbatim, never interpreted.
//
// # Properties
//
// Runs are not transactional. An interrupted run leaves some files updated
// and others not; the directory is idempotently convergent, so re-running
// the same plan finishes the job and a run over an already converged tree
// changes nothing. Pairs where old equals new are dropped at plan time and
// the tree is left byte-identical.
//
// A malformed URL (no "//") yields a plan without a host pair plus a
// warning; it never aborts the run and never silently corrupts files.
//
// # Concurrency
//
// Single-threaded by design: the configuration directory is assumed to be
// touched by one operator at a time and no locking is provided.
package configsync
