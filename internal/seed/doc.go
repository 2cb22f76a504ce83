// Package seed replays a short MCAP clip into a ReductStore bucket as a
// plan of synthetic robot sessions, so a freshly provisioned demo device
// has weeks of believable telemetry to browse.
//
// A ~30 second recorded clip is looped to fill fixed-duration sessions
// (default 10 minutes) scheduled at a fixed interval across a window
// reaching from the past into the future. Message timestamps are remapped
// onto each session's timeline. Per entry, timestamps are forced strictly
// increasing in microseconds, because the store rejects duplicate record
// timestamps.
//
// High-frequency topics are throttled to target rates (images to ~1 Hz,
// pointclouds lower still) so the seeded bucket stays a demo, not a dump.
// Every written record carries a session context (robot, run, mission,
// site, shift) plus randomized numeric telemetry labels (battery, CPU
// temperature, zone risk, ...) designed for dashboard panels. Under a
// fixed random seed the whole plan is deterministic.
//
// Structured topics are batched into JSON row entries; allowed image
// topics are unwrapped from their CDR envelope and stored with their real
// image content type; everything else is passed through as raw CDR bytes.
package seed
