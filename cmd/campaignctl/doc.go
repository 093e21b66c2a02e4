// Command campaignctl is the operator CLI for the AI request router and
// intelligence cache: generate content through cost-tiered failover,
// inspect provider health and the cost ledger, and maintain the cache.
package main
