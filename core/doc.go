// Package core provides the foundational domain types and collaborator
// interfaces used by RagMesh. It defines the core abstractions for:
//
//   - Messages (role + ordered content blocks in a remote thread)
//   - Remote resource handles (uploaded files, vector stores, agents, threads)
//   - Run results (one agent execution against the current thread state)
//   - Pluggable remote collaborators (file store, vector index, agent service)
//
// The package intentionally keeps implementation concerns (HTTP transport,
// polling, concrete backends) out of scope, exposing small interfaces so the
// provisioning, query and lifecycle layers never depend on a specific hosted
// platform. All retrieval, ranking and generation behavior lives behind these
// interfaces; this module owns only the orchestration around them.
package core
