// Package ledger keeps session-scoped cost accounting: what every
// routed call cost, what it saved against the configured baseline, and
// how each provider is performing.
package ledger
