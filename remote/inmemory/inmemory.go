// Package inmemory provides a volatile implementation of the remote service
// interfaces storing everything in process local maps. It is safe for
// concurrent access and best suited for tests or offline demos. Ids are
// assigned monotonically per resource kind, answers come from canned
// substring matches with a configurable fallback, and every call is recorded
// in an ordered operation log so tests can assert call counts and ordering.
package inmemory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/hupe1980/ragmesh/core"
	"github.com/hupe1980/ragmesh/prompt"
)

type cannedAnswer struct {
	substr string
	text   string
}

// Service is an in-memory core.Service. The zero value is not usable; use New.
type Service struct {
	mu      sync.Mutex
	counter map[string]int

	files   map[string]string         // file id -> local path
	stores  map[string][]string       // store id -> member file ids
	agents  map[string]core.AgentSpec // agent id -> spec
	threads map[string][]core.Message // thread id -> messages, append order
	runErrs map[string]error          // query substring -> injected run error
	silent  map[string]bool           // query substring -> run completes without reply

	storeErr error

	answers  []cannedAnswer
	fallback string

	ops []string
}

// Compile-time interface assertions.
var (
	_ core.FileStore    = (*Service)(nil)
	_ core.VectorIndex  = (*Service)(nil)
	_ core.AgentService = (*Service)(nil)
	_ core.Service      = (*Service)(nil)
)

// New constructs an empty in-memory service. The fallback answer defaults to
// the fixed grounding fallback phrase.
func New() *Service {
	return &Service{
		counter:  map[string]int{},
		files:    map[string]string{},
		stores:   map[string][]string{},
		agents:   map[string]core.AgentSpec{},
		threads:  map[string][]core.Message{},
		runErrs:  map[string]error{},
		silent:   map[string]bool{},
		fallback: prompt.FallbackAnswer,
	}
}

// AddAnswer registers a canned answer returned by runs whose latest user
// query contains substr. Earlier registrations win on overlap.
func (s *Service) AddAnswer(substr, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.answers = append(s.answers, cannedAnswer{substr: substr, text: text})
}

// SetFallback overrides the answer used when no canned answer matches.
func (s *Service) SetFallback(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fallback = text
}

// FailRunWhen injects a transport-level run failure for queries containing
// substr.
func (s *Service) FailRunWhen(substr string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runErrs[substr] = err
}

// SilentRunWhen makes runs for queries containing substr complete without
// appending an assistant reply, reproducing the absent-result condition.
func (s *Service) SilentRunWhen(substr string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.silent[substr] = true
}

// FailCreateStore makes every subsequent CreateStore call return err,
// leaving already uploaded files behind.
func (s *Service) FailCreateStore(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.storeErr = err
}

// Ops returns a copy of the ordered operation log. Entries have the form
// "op:id", e.g. "upload:file-1" or "run:thread-1".
func (s *Service) Ops() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ops := make([]string, len(s.ops))
	copy(ops, s.ops)
	return ops
}

// nextIDLocked assigns the next monotonically increasing id for a resource
// kind; caller must hold the lock.
func (s *Service) nextIDLocked(kind string) string {
	s.counter[kind]++
	return fmt.Sprintf("%s-%d", kind, s.counter[kind])
}

func (s *Service) recordLocked(op, id string) {
	s.ops = append(s.ops, op+":"+id)
}

// Upload registers a file handle for the given path. The path is not read;
// no dedup is performed, so uploading the same path twice yields two ids.
func (s *Service) Upload(_ context.Context, path, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextIDLocked("file")
	s.files[id] = path
	s.recordLocked("upload", id)
	return id, nil
}

// DeleteFile removes a file handle, returning core.ErrNotFound for unknown ids.
func (s *Service) DeleteFile(_ context.Context, fileID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recordLocked("delete_file", fileID)
	if _, ok := s.files[fileID]; !ok {
		return fmt.Errorf("file %s: %w", fileID, core.ErrNotFound)
	}
	delete(s.files, fileID)
	return nil
}

// CreateStore builds a vector store handle over the given file ids. Unknown
// file ids are rejected.
func (s *Service) CreateStore(_ context.Context, _ string, fileIDs []string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.storeErr != nil {
		return "", s.storeErr
	}
	for _, fid := range fileIDs {
		if _, ok := s.files[fid]; !ok {
			return "", fmt.Errorf("file %s: %w", fid, core.ErrNotFound)
		}
	}
	id := s.nextIDLocked("vs")
	member := make([]string, len(fileIDs))
	copy(member, fileIDs)
	s.stores[id] = member
	s.recordLocked("create_store", id)
	return id, nil
}

// DeleteStore removes a vector store handle.
func (s *Service) DeleteStore(_ context.Context, storeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recordLocked("delete_store", storeID)
	if _, ok := s.stores[storeID]; !ok {
		return fmt.Errorf("vector store %s: %w", storeID, core.ErrNotFound)
	}
	delete(s.stores, storeID)
	return nil
}

// CreateAgent registers an agent configuration.
func (s *Service) CreateAgent(_ context.Context, spec core.AgentSpec) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextIDLocked("agent")
	s.agents[id] = spec
	s.recordLocked("create_agent", id)
	return id, nil
}

// DeleteAgent removes an agent.
func (s *Service) DeleteAgent(_ context.Context, agentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recordLocked("delete_agent", agentID)
	if _, ok := s.agents[agentID]; !ok {
		return fmt.Errorf("agent %s: %w", agentID, core.ErrNotFound)
	}
	delete(s.agents, agentID)
	return nil
}

// CreateThread creates an empty conversation thread.
func (s *Service) CreateThread(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextIDLocked("thread")
	s.threads[id] = []core.Message{}
	s.recordLocked("create_thread", id)
	return id, nil
}

// DeleteThread removes a thread and its messages.
func (s *Service) DeleteThread(_ context.Context, threadID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recordLocked("delete_thread", threadID)
	if _, ok := s.threads[threadID]; !ok {
		return fmt.Errorf("thread %s: %w", threadID, core.ErrNotFound)
	}
	delete(s.threads, threadID)
	return nil
}

// AppendMessage appends a message to an existing thread.
func (s *Service) AppendMessage(_ context.Context, threadID string, msg core.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs, ok := s.threads[threadID]
	if !ok {
		return fmt.Errorf("thread %s: %w", threadID, core.ErrNotFound)
	}
	msg.ID = s.nextIDLocked("msg")
	s.threads[threadID] = append(msgs, msg)
	s.recordLocked("append_message", threadID)
	return nil
}

// Run answers the latest user message in the thread: the first canned answer
// whose substring matches wins, otherwise the fallback. The answer is
// appended as an assistant message, mirroring the remote behavior the query
// driver depends on.
func (s *Service) Run(_ context.Context, threadID, agentID string) (core.RunResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.agents[agentID]; !ok {
		return core.RunResult{}, fmt.Errorf("agent %s: %w", agentID, core.ErrNotFound)
	}
	msgs, ok := s.threads[threadID]
	if !ok {
		return core.RunResult{}, fmt.Errorf("thread %s: %w", threadID, core.ErrNotFound)
	}

	query := latestUserText(msgs)
	runID := s.nextIDLocked("run")
	s.recordLocked("run", threadID)

	for substr, err := range s.runErrs {
		if strings.Contains(query, substr) {
			return core.RunResult{}, err
		}
	}

	for substr := range s.silent {
		if strings.Contains(query, substr) {
			return core.RunResult{ID: runID, Status: core.RunStatusCompleted}, nil
		}
	}

	answer := s.fallback
	for _, ca := range s.answers {
		if strings.Contains(query, ca.substr) {
			answer = ca.text
			break
		}
	}

	reply := core.Message{
		ID:     s.nextIDLocked("msg"),
		Role:   core.RoleAssistant,
		Blocks: []core.ContentBlock{{Type: core.BlockTypeText, Text: answer}},
	}
	s.threads[threadID] = append(msgs, reply)

	return core.RunResult{ID: runID, Status: core.RunStatusCompleted}, nil
}

// ListMessages returns the thread's messages newest first.
func (s *Service) ListMessages(_ context.Context, threadID string) ([]core.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs, ok := s.threads[threadID]
	if !ok {
		return nil, fmt.Errorf("thread %s: %w", threadID, core.ErrNotFound)
	}
	s.recordLocked("list_messages", threadID)
	out := make([]core.Message, len(msgs))
	for i, m := range msgs {
		out[len(msgs)-1-i] = m
	}
	return out, nil
}

func latestUserText(msgs []core.Message) string {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role != core.RoleUser {
			continue
		}
		if text, ok := msgs[i].FirstText(); ok {
			return text
		}
	}
	return ""
}
