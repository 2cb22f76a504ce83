// Package reduct is a minimal HTTP client for the ReductStore API (v1),
// covering the handful of operations the device tooling needs: probing the
// server, ensuring a bucket exists, writing records with labels, and
// listing/removing entries.
//
// ReductStore itself is an external, pre-built product consumed as a black
// box; this package only speaks its documented REST surface, it does not
// reimplement any storage behavior.
//
// # Timestamps
//
// Record timestamps are Unix microseconds. The store rejects a write whose
// timestamp already exists in the entry with HTTP 409; WriteRecord treats
// that as a duplicate rather than a failure, so replays converge instead of
// aborting.
//
// # Errors
//
// API failures carry a message in the "x-reduct-error" response header and
// surface as *APIError with the HTTP status attached.
package reduct
