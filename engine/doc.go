// Package engine orchestrates the complete lifecycle of one retrieval-backed
// execution against a hosted agent platform.
//
// An execution provisions the document resources (uploaded file + vector
// store), binds a file-search toolset to a freshly created agent, opens a
// conversation thread, drives the supplied queries strictly sequentially and
// finally tears all four remote resources down in the order thread, agent,
// file, vector store. The teardown is the one hard resource-safety contract
// in the system: it runs on every exit path, including provisioning and
// query failures, and survives cancellation of the caller's context.
//
// All remote behavior (semantic search, context injection, generation) is
// delegated to the core.Service implementation; the engine owns sequencing
// and resource scope only.
package engine
