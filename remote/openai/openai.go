// Package openai adapts the OpenAI Files, Vector Stores and Assistants APIs
// to the RagMesh remote service interfaces. It owns the status polling for
// long-running remote operations (upload processing, vector store builds,
// runs); callers see plain blocking calls that return once the remote side
// settles in a terminal state.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/hupe1980/ragmesh/config"
	"github.com/hupe1980/ragmesh/core"
	"github.com/hupe1980/ragmesh/tool"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Options configure the service adapter.
type Options struct {
	// PollInterval is the delay between remote status polls.
	PollInterval time.Duration
	// PollTimeout bounds how long one blocking operation may poll before
	// giving up.
	PollTimeout time.Duration
}

// Service wraps an OpenAI client behind the core service interfaces.
type Service struct {
	client       *openai.Client
	pollInterval time.Duration
	pollTimeout  time.Duration
}

var _ core.Service = (*Service)(nil)

// New creates a Service using the default client (credentials from the
// environment).
func New(optFns ...func(o *Options)) *Service {
	client := openai.NewClient()
	return NewFromClient(&client, optFns...)
}

// NewFromClient creates a Service from an existing client.
func NewFromClient(client *openai.Client, optFns ...func(o *Options)) *Service {
	opts := Options{
		PollInterval: 2 * time.Second,
		PollTimeout:  10 * time.Minute,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Service{client: client, pollInterval: opts.PollInterval, pollTimeout: opts.PollTimeout}
}

// NewFromConfig creates a Service from a RagMesh configuration.
func NewFromConfig(cfg *config.Config, optFns ...func(o *Options)) *Service {
	reqOpts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.BaseURL))
	}
	client := openai.NewClient(reqOpts...)

	fns := append([]func(o *Options){func(o *Options) {
		if cfg.PollInterval > 0 {
			o.PollInterval = cfg.PollInterval
		}
	}}, optFns...)

	return NewFromClient(&client, fns...)
}

// Upload submits the local file and blocks until the remote side reports a
// terminal processing state, returning the file id.
func (s *Service) Upload(ctx context.Context, path, purpose string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %q: %w", path, err)
	}
	defer f.Close()

	file, err := s.client.Files.New(ctx, openai.FileNewParams{
		File:    f,
		Purpose: openai.FilePurpose(purpose),
	})
	if err != nil {
		return "", core.NewRemoteError("upload", "file", err)
	}

	fileID := file.ID
	if err := s.poll(ctx, "file "+fileID, func(ctx context.Context) (bool, error) {
		cur, err := s.client.Files.Get(ctx, fileID)
		if err != nil {
			return false, core.NewRemoteError("get", "file", err)
		}
		switch cur.Status {
		case openai.FileObjectStatusProcessed:
			return true, nil
		case openai.FileObjectStatusError:
			return false, core.NewRemoteError("upload", "file", fmt.Errorf("file %s entered error state", fileID))
		default:
			return false, nil
		}
	}); err != nil {
		return "", err
	}
	return fileID, nil
}

// DeleteFile removes an uploaded file.
func (s *Service) DeleteFile(ctx context.Context, fileID string) error {
	_, err := s.client.Files.Delete(ctx, fileID)
	return mapErr("delete", "file", err)
}

// CreateStore requests a vector store over the given file ids and blocks
// until the index build settles, returning the store id.
func (s *Service) CreateStore(ctx context.Context, name string, fileIDs []string) (string, error) {
	vs, err := s.client.VectorStores.New(ctx, openai.VectorStoreNewParams{
		Name:    openai.String(name),
		FileIDs: fileIDs,
	})
	if err != nil {
		return "", core.NewRemoteError("create_store", "vector_store", err)
	}

	storeID := vs.ID
	if err := s.poll(ctx, "vector store "+storeID, func(ctx context.Context) (bool, error) {
		cur, err := s.client.VectorStores.Get(ctx, storeID)
		if err != nil {
			return false, core.NewRemoteError("get", "vector_store", err)
		}
		switch cur.Status {
		case openai.VectorStoreStatusCompleted:
			return true, nil
		case openai.VectorStoreStatusExpired:
			return false, core.NewRemoteError("create_store", "vector_store", fmt.Errorf("vector store %s expired during build", storeID))
		default:
			return false, nil
		}
	}); err != nil {
		return "", err
	}
	return storeID, nil
}

// DeleteStore removes a vector store.
func (s *Service) DeleteStore(ctx context.Context, storeID string) error {
	_, err := s.client.VectorStores.Delete(ctx, storeID)
	return mapErr("delete", "vector_store", err)
}

// CreateAgent creates a hosted assistant with the spec's toolset bound at
// creation time.
func (s *Service) CreateAgent(ctx context.Context, spec core.AgentSpec) (string, error) {
	var tools []openai.AssistantToolUnionParam
	for _, d := range spec.Toolset.Descriptors() {
		if d.Type != tool.TypeFileSearch {
			return "", fmt.Errorf("unsupported tool type %q", d.Type)
		}
		tools = append(tools, openai.AssistantToolUnionParam{OfFileSearch: &openai.FileSearchToolParam{}})
	}

	params := openai.BetaAssistantNewParams{
		Model:        spec.Model,
		Name:         openai.String(spec.Name),
		Instructions: openai.String(spec.Instructions),
		Tools:        tools,
	}
	if ids := spec.Toolset.VectorStoreIDs(); len(ids) > 0 {
		params.ToolResources = openai.BetaAssistantNewParamsToolResources{
			FileSearch: openai.BetaAssistantNewParamsToolResourcesFileSearch{
				VectorStoreIDs: ids,
			},
		}
	}

	asst, err := s.client.Beta.Assistants.New(ctx, params)
	if err != nil {
		return "", core.NewRemoteError("create_agent", "agent", err)
	}
	return asst.ID, nil
}

// DeleteAgent removes a hosted assistant.
func (s *Service) DeleteAgent(ctx context.Context, agentID string) error {
	_, err := s.client.Beta.Assistants.Delete(ctx, agentID)
	return mapErr("delete", "agent", err)
}

// CreateThread opens an empty conversation thread.
func (s *Service) CreateThread(ctx context.Context) (string, error) {
	th, err := s.client.Beta.Threads.New(ctx, openai.BetaThreadNewParams{})
	if err != nil {
		return "", core.NewRemoteError("create_thread", "thread", err)
	}
	return th.ID, nil
}

// DeleteThread removes a conversation thread.
func (s *Service) DeleteThread(ctx context.Context, threadID string) error {
	_, err := s.client.Beta.Threads.Delete(ctx, threadID)
	return mapErr("delete", "thread", err)
}

// AppendMessage appends a message to the thread. Text blocks are joined; the
// remote message API accepts a single text payload per append here.
func (s *Service) AppendMessage(ctx context.Context, threadID string, msg core.Message) error {
	var sb strings.Builder
	for _, b := range msg.Blocks {
		if b.Type == core.BlockTypeText {
			sb.WriteString(b.Text)
		}
	}

	_, err := s.client.Beta.Threads.Messages.New(ctx, threadID, openai.BetaThreadMessageNewParams{
		Role: openai.BetaThreadMessageNewParamsRole(msg.Role),
		Content: openai.BetaThreadMessageNewParamsContentUnion{
			OfString: openai.String(sb.String()),
		},
	})
	if err != nil {
		return core.NewRemoteError("append_message", "thread", err)
	}
	return nil
}

// Run triggers a run of the agent against the thread and blocks until the
// run reaches a terminal state.
func (s *Service) Run(ctx context.Context, threadID, agentID string) (core.RunResult, error) {
	run, err := s.client.Beta.Threads.Runs.New(ctx, threadID, openai.BetaThreadRunNewParams{
		AssistantID: agentID,
	})
	if err != nil {
		return core.RunResult{}, core.NewRemoteError("run", "thread", err)
	}

	final := run
	if err := s.poll(ctx, "run "+run.ID, func(ctx context.Context) (bool, error) {
		cur, err := s.client.Beta.Threads.Runs.Get(ctx, threadID, run.ID)
		if err != nil {
			return false, core.NewRemoteError("get", "run", err)
		}
		final = cur
		switch cur.Status {
		case openai.RunStatusQueued, openai.RunStatusInProgress, openai.RunStatusCancelling:
			return false, nil
		default:
			return true, nil
		}
	}); err != nil {
		return core.RunResult{}, err
	}

	return core.RunResult{
		ID:        final.ID,
		Status:    mapRunStatus(final.Status),
		LastError: runLastError(final),
	}, nil
}

// ListMessages returns the thread's messages newest first.
func (s *Service) ListMessages(ctx context.Context, threadID string) ([]core.Message, error) {
	page, err := s.client.Beta.Threads.Messages.List(ctx, threadID, openai.BetaThreadMessageListParams{
		Order: openai.BetaThreadMessageListParamsOrderDesc,
	})
	if err != nil {
		return nil, core.NewRemoteError("list_messages", "thread", err)
	}

	msgs := make([]core.Message, 0, len(page.Data))
	for _, m := range page.Data {
		blocks := make([]core.ContentBlock, 0, len(m.Content))
		for _, c := range m.Content {
			if c.Type == "text" {
				blocks = append(blocks, core.ContentBlock{Type: core.BlockTypeText, Text: c.Text.Value})
				continue
			}
			blocks = append(blocks, core.ContentBlock{Type: string(c.Type)})
		}
		msgs = append(msgs, core.Message{ID: m.ID, Role: string(m.Role), Blocks: blocks})
	}
	return msgs, nil
}

// poll invokes check every pollInterval until it reports done, fails, the
// context is cancelled or pollTimeout elapses.
func (s *Service) poll(ctx context.Context, what string, check func(ctx context.Context) (bool, error)) error {
	deadline := time.Now().Add(s.pollTimeout)
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		done, err := check(ctx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("polling %s timed out after %s", what, s.pollTimeout)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func mapRunStatus(status openai.RunStatus) core.RunStatus {
	switch status {
	case openai.RunStatusCompleted:
		return core.RunStatusCompleted
	case openai.RunStatusCancelled:
		return core.RunStatusCancelled
	case openai.RunStatusExpired:
		return core.RunStatusExpired
	default:
		return core.RunStatusFailed
	}
}

func runLastError(run *openai.Run) string {
	if run.LastError.Message != "" {
		return fmt.Sprintf("%s: %s", run.LastError.Code, run.LastError.Message)
	}
	if run.Status == openai.RunStatusRequiresAction {
		return "run requires tool output submission, which is not supported"
	}
	return ""
}

// mapErr converts a 404 from the remote API into core.ErrNotFound so delete
// calls for unknown ids surface a defined condition.
func mapErr(op, kind string, err error) error {
	if err == nil {
		return nil
	}
	var apierr *openai.Error
	if errors.As(err, &apierr) && apierr.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s %s: %w", op, kind, core.ErrNotFound)
	}
	return core.NewRemoteError(op, kind, err)
}
