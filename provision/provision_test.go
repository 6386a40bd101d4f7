package provision

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/hupe1980/ragmesh/remote/inmemory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDoc(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "insurance.md")
	require.NoError(t, os.WriteFile(path, []byte("# Coverage\nHospital stays are covered."), 0o644))
	return path
}

func TestProvision(t *testing.T) {
	svc := inmemory.New()
	p := New(svc, svc)

	res, err := p.Provision(context.Background(), writeDoc(t))
	require.NoError(t, err)

	assert.Equal(t, "file-1", res.FileID)
	assert.Equal(t, "vs-1", res.StoreID)
	assert.Equal(t, []string{"upload:file-1", "create_store:vs-1"}, svc.Ops())
}

func TestProvision_MissingFile(t *testing.T) {
	svc := inmemory.New()
	p := New(svc, svc)

	_, err := p.Provision(context.Background(), filepath.Join(t.TempDir(), "nope.md"))
	require.Error(t, err)
	assert.Empty(t, svc.Ops(), "no remote calls for a missing local file")
}
