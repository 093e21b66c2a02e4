// Package intel implements the content-addressable intelligence cache:
// a SQLite-backed store of structured page analyses keyed by the
// sha256 fingerprint of a normalized source URL. Lookups return the
// highest-confidence fresh entry; hits are reused at zero cost via
// attributed reference records, and a periodic sweep evicts entries
// that are stale, low-confidence, and unreferenced.
package intel
