// Package services implements the core sync engine: the tracker that
// classifies documents against the manifest, the orchestrator that drives
// a run, the reporter that accounts for it, and the resetter that tears
// the index down.
package services
