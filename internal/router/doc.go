// Package router implements cost-tiered failover across the configured
// AI vendors. Candidates are attempted strictly in ascending cost order
// with ties broken by quality score; the first success wins, and an
// exhausted run returns the full classified attempt log.
package router
