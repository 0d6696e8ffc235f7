// Package driven defines the secondary ports of the sync engine: the
// interfaces the core services require from the outside world (document
// source, remote store, persistence). Adapters implement these.
package driven
