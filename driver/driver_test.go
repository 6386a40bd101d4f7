package driver

import (
	"context"
	"errors"
	"testing"

	"github.com/hupe1980/ragmesh/core"
	"github.com/hupe1980/ragmesh/remote/inmemory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDriver(t *testing.T, svc *inmemory.Service) *Driver {
	t.Helper()
	ctx := context.Background()
	agentID, err := svc.CreateAgent(ctx, core.AgentSpec{Name: "test-agent", Model: "m"})
	require.NoError(t, err)
	threadID, err := svc.CreateThread(ctx)
	require.NoError(t, err)
	return New(svc, threadID, agentID)
}

func TestAsk(t *testing.T) {
	svc := inmemory.New()
	svc.AddAnswer("coverage", "Coverage includes X")
	d := newTestDriver(t, svc)

	answer, err := d.Ask(context.Background(), "Explain coverage")
	require.NoError(t, err)
	assert.Equal(t, "Coverage includes X", answer)
}

func TestAsk_SequentialOrder(t *testing.T) {
	svc := inmemory.New()
	d := newTestDriver(t, svc)
	ctx := context.Background()

	queries := []string{"first", "second", "third"}
	for _, q := range queries {
		_, err := d.Ask(ctx, q)
		require.NoError(t, err)
	}

	var appends, runs int
	lastAppend, lastRun := -1, -1
	for i, op := range svc.Ops() {
		switch op {
		case "append_message:" + d.ThreadID():
			appends++
			lastAppend = i
		case "run:" + d.ThreadID():
			runs++
			lastRun = i
			// Every run is triggered by the append directly before it.
			assert.Equal(t, lastAppend, i-1, "run must directly follow its append")
		}
	}
	assert.Equal(t, len(queries), appends)
	assert.Equal(t, len(queries), runs)
	assert.Greater(t, lastRun, lastAppend)
}

func TestAsk_RunFailureAborts(t *testing.T) {
	svc := inmemory.New()
	boom := errors.New("service unavailable")
	svc.FailRunWhen("bad", boom)
	d := newTestDriver(t, svc)

	_, err := d.Ask(context.Background(), "bad query")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

// emptyService completes runs without ever writing assistant messages,
// reproducing the absent-result condition.
type emptyService struct {
	core.AgentService
	msgs []core.Message
}

func (s *emptyService) AppendMessage(context.Context, string, core.Message) error { return nil }

func (s *emptyService) Run(context.Context, string, string) (core.RunResult, error) {
	return core.RunResult{ID: "run-1", Status: core.RunStatusCompleted}, nil
}

func (s *emptyService) ListMessages(context.Context, string) ([]core.Message, error) {
	return s.msgs, nil
}

func TestAsk_NoAnswer(t *testing.T) {
	tests := []struct {
		name string
		msgs []core.Message
	}{
		{name: "empty thread", msgs: nil},
		{name: "no text block", msgs: []core.Message{{Role: core.RoleAssistant, Blocks: []core.ContentBlock{{Type: "image"}}}}},
		{name: "no assistant reply", msgs: []core.Message{core.NewUserMessage("anything")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New(&emptyService{msgs: tt.msgs}, "thread-1", "agent-1")

			_, err := d.Ask(context.Background(), "anything")
			assert.ErrorIs(t, err, core.ErrNoAnswer)
		})
	}
}

func TestAsk_NonCompletedRun(t *testing.T) {
	d := New(&failedRunService{}, "thread-1", "agent-1")

	_, err := d.Ask(context.Background(), "anything")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expired")
}

type failedRunService struct {
	core.AgentService
}

func (s *failedRunService) AppendMessage(context.Context, string, core.Message) error { return nil }

func (s *failedRunService) Run(context.Context, string, string) (core.RunResult, error) {
	return core.RunResult{ID: "run-1", Status: core.RunStatusExpired, LastError: "deadline exceeded"}, nil
}
