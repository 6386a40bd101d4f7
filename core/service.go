package core

import (
	"context"

	"github.com/hupe1980/ragmesh/tool"
)

// PurposeAssistants is the upload purpose tag that marks a file as input for
// agent tooling (file search) rather than fine-tuning or batch processing.
const PurposeAssistants = "assistants"

// AgentSpec describes a hosted agent configuration. The toolset is bound at
// creation time and immutable afterwards.
type AgentSpec struct {
	Name         string       `json:"name"`
	Model        string       `json:"model"`
	Instructions string       `json:"instructions"`
	Toolset      tool.Toolset `json:"toolset"`
}

// RunStatus is the terminal state of one agent run. Non-terminal remote
// states (queued, in progress) are never surfaced; implementations block
// until the run settles.
type RunStatus string

const (
	// RunStatusCompleted indicates the run produced assistant output.
	RunStatusCompleted RunStatus = "completed"
	// RunStatusFailed indicates the remote side reported a failure.
	RunStatusFailed RunStatus = "failed"
	// RunStatusCancelled indicates the run was cancelled remotely.
	RunStatusCancelled RunStatus = "cancelled"
	// RunStatusExpired indicates the run exceeded the remote deadline.
	RunStatusExpired RunStatus = "expired"
)

// RunResult reports the outcome of one blocking agent run.
type RunResult struct {
	ID        string    `json:"id"`
	Status    RunStatus `json:"status"`
	LastError string    `json:"last_error,omitempty"`
}

// FileStore uploads local documents to the remote service and deletes them
// again. Upload blocks until the remote side reports a terminal state for the
// file; any internal polling is owned by the implementation.
type FileStore interface {
	Upload(ctx context.Context, path, purpose string) (string, error)
	DeleteFile(ctx context.Context, fileID string) error
}

// VectorIndex creates and deletes remote vector stores scoped to previously
// uploaded file ids. CreateStore blocks until the index build settles.
type VectorIndex interface {
	CreateStore(ctx context.Context, name string, fileIDs []string) (string, error)
	DeleteStore(ctx context.Context, storeID string) error
}

// AgentService is the hosted conversation surface: agent and thread
// lifecycle, message appends, blocking runs and message listing.
//
// Contract:
//   - Run blocks until the run reaches a terminal state and returns it; a
//     transport failure is an error, a remotely failed run is a RunResult
//     with a non-completed status.
//   - ListMessages returns the thread newest first.
//   - Deleting an unknown id returns ErrNotFound.
type AgentService interface {
	CreateAgent(ctx context.Context, spec AgentSpec) (string, error)
	DeleteAgent(ctx context.Context, agentID string) error
	CreateThread(ctx context.Context) (string, error)
	DeleteThread(ctx context.Context, threadID string) error
	AppendMessage(ctx context.Context, threadID string, msg Message) error
	Run(ctx context.Context, threadID, agentID string) (RunResult, error)
	ListMessages(ctx context.Context, threadID string) ([]Message, error)
}

// Service bundles the three remote collaborators a full execution needs.
// Backends typically implement all of them against a single client.
type Service interface {
	FileStore
	VectorIndex
	AgentService
}
