package ragmesh

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/hupe1980/ragmesh/remote/inmemory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WithInjectedService(t *testing.T) {
	svc := inmemory.New()
	svc.AddAnswer("coverage", "Coverage includes X")

	mesh, err := New(func(o *Options) { o.Service = svc })
	require.NoError(t, err)

	docPath := filepath.Join(t.TempDir(), "insurance.md")
	require.NoError(t, os.WriteFile(docPath, []byte("# Policy"), 0o644))

	answers, err := mesh.Execute(context.Background(), docPath, []string{"Explain coverage"})
	require.NoError(t, err)
	require.Len(t, answers, 1)
	assert.Equal(t, "Coverage includes X", answers[0].Text)
}

func TestNew_MissingCredentials(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	_, err := New()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
}
