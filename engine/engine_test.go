package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hupe1980/ragmesh/remote/inmemory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDoc(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "insurance.md")
	require.NoError(t, os.WriteFile(path, []byte("# Policy\nCoverage includes X."), 0o644))
	return path
}

func countOps(ops []string, name string) int {
	var n int
	for _, op := range ops {
		if strings.HasPrefix(op, name+":") {
			n++
		}
	}
	return n
}

func deleteOrder(ops []string) []string {
	var out []string
	for _, op := range ops {
		switch op {
		case "delete_thread:thread-1", "delete_agent:agent-1", "delete_file:file-1", "delete_store:vs-1":
			out = append(out, op)
		}
	}
	return out
}

func TestExecute_EndToEnd(t *testing.T) {
	svc := inmemory.New()
	svc.AddAnswer("coverage", "Coverage includes X")
	eng := New(svc)

	answers, err := eng.Execute(context.Background(), writeDoc(t), []string{
		"Explain coverage",
		"What is a neural network?",
	})
	require.NoError(t, err)
	require.Len(t, answers, 2)

	assert.Equal(t, "Coverage includes X", answers[0].Text)
	assert.Contains(t, answers[1].Text, "I don't know the answer")

	ops := svc.Ops()
	assert.Equal(t, 2, countOps(ops, "append_message"))
	assert.Equal(t, 2, countOps(ops, "run"))

	// All four deletes fire exactly once, in order thread, agent, file, store.
	assert.Equal(t, []string{
		"delete_thread:thread-1",
		"delete_agent:agent-1",
		"delete_file:file-1",
		"delete_store:vs-1",
	}, deleteOrder(ops))
	assert.Equal(t, 1, countOps(ops, "delete_thread"))
	assert.Equal(t, 1, countOps(ops, "delete_agent"))
	assert.Equal(t, 1, countOps(ops, "delete_file"))
	assert.Equal(t, 1, countOps(ops, "delete_store"))
}

func TestExecute_RunFailureAbortsRemainingQueries(t *testing.T) {
	svc := inmemory.New()
	svc.AddAnswer("first", "answer one")
	boom := errors.New("rate limited")
	svc.FailRunWhen("second", boom)
	eng := New(svc)

	answers, err := eng.Execute(context.Background(), writeDoc(t), []string{
		"first question",
		"second question",
		"third question",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	// Query one answered, query two failed, query three never attempted.
	require.Len(t, answers, 1)
	assert.Equal(t, "answer one", answers[0].Text)

	ops := svc.Ops()
	assert.Equal(t, 2, countOps(ops, "append_message"))
	assert.Equal(t, 2, countOps(ops, "run"))

	// Cleanup still executes exactly once per resource, in order.
	assert.Equal(t, []string{
		"delete_thread:thread-1",
		"delete_agent:agent-1",
		"delete_file:file-1",
		"delete_store:vs-1",
	}, deleteOrder(ops))
}

func TestExecute_NoAnswerContinuesBatch(t *testing.T) {
	svc := inmemory.New()
	svc.AddAnswer("coverage", "Coverage includes X")
	svc.AddAnswer("deductible", "The deductible is 500")
	svc.SilentRunWhen("warranty")
	eng := New(svc)

	answers, err := eng.Execute(context.Background(), writeDoc(t), []string{
		"Explain coverage",
		"Is there a warranty?",
		"What is the deductible?",
	})
	require.NoError(t, err)
	require.Len(t, answers, 3)

	assert.Equal(t, "Coverage includes X", answers[0].Text)

	// The silent query is recorded, not dropped, and does not abort the batch.
	assert.True(t, answers[1].NoAnswer)
	assert.Empty(t, answers[1].Text)
	assert.Equal(t, "Is there a warranty?", answers[1].Query)

	assert.Equal(t, "The deductible is 500", answers[2].Text)

	ops := svc.Ops()
	assert.Equal(t, 3, countOps(ops, "append_message"))
	assert.Equal(t, 3, countOps(ops, "run"))
}

func TestExecute_StoreCreationFailureDeletesUploadedFile(t *testing.T) {
	svc := inmemory.New()
	boom := errors.New("index backend down")
	svc.FailCreateStore(boom)
	eng := New(svc)

	answers, err := eng.Execute(context.Background(), writeDoc(t), []string{"q"})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, answers)

	ops := svc.Ops()
	assert.Equal(t, 1, countOps(ops, "upload"))
	assert.Equal(t, 0, countOps(ops, "create_store"))
	assert.Equal(t, 0, countOps(ops, "create_agent"))
	assert.Equal(t, 0, countOps(ops, "create_thread"))

	// The orphaned upload is cleaned up; nothing else was created, so only
	// the file delete fires.
	assert.Equal(t, []string{"delete_file:file-1"}, deleteOrder(ops))
	assert.Equal(t, 0, countOps(ops, "delete_store"))
	assert.Equal(t, 0, countOps(ops, "delete_agent"))
	assert.Equal(t, 0, countOps(ops, "delete_thread"))
}

func TestExecute_MissingDocumentSkipsRemoteCalls(t *testing.T) {
	svc := inmemory.New()
	eng := New(svc)

	_, err := eng.Execute(context.Background(), filepath.Join(t.TempDir(), "nope.md"), []string{"q"})
	require.Error(t, err)
	assert.Empty(t, svc.Ops())
}

func TestExecute_Options(t *testing.T) {
	svc := inmemory.New()
	eng := New(svc, func(o *Options) {
		o.AgentName = "policy-bot"
		o.Model = "gpt-4o"
		o.Instructions = "Answer from the policy only."
	})

	_, err := eng.Execute(context.Background(), writeDoc(t), nil)
	require.NoError(t, err)

	// No queries: still a full provision + agent/thread lifecycle.
	ops := svc.Ops()
	assert.Equal(t, 0, countOps(ops, "append_message"))
	assert.Equal(t, 0, countOps(ops, "run"))
	assert.Equal(t, 1, countOps(ops, "create_agent"))
	assert.Equal(t, 1, countOps(ops, "create_thread"))
	assert.Equal(t, 1, countOps(ops, "delete_thread"))
}
