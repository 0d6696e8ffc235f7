// Package domain holds the core types of the sync engine: documents,
// tracking records, the manifest and run summaries. It has no
// dependencies on adapters or external services.
package domain
