// Package types defines the shared data model and standard errors for the
// Fareflow pipeline-correctness core: canonical schemas, in-memory dataset
// snapshots, expectation results, ingestion ledger entries, lineage events,
// and the three-state stage result exchanged with the orchestration layer.
package types
