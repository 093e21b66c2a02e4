// Package provider models the configured AI vendors and their health.
//
// A Provider carries static routing metadata (capability, unit cost,
// quality score, tier) plus mutable health state derived from call
// outcomes. The Registry answers "which providers can serve this
// request right now" in strict cheapest-first order; the Tracker is the
// only code allowed to change health state. Rate-limit cooldowns and
// disable penalties expire lazily at eligibility-check time, so no
// background timer is needed.
package provider
