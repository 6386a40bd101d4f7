// Package provision uploads local documents to the remote file store and
// builds the vector store the file-search capability depends on. It owns the
// first half of the resource lifecycle; teardown of what it creates belongs
// to the engine's scoped cleanup.
package provision

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/hupe1980/ragmesh/core"
	"github.com/hupe1980/ragmesh/logging"
)

// Options configures a Provisioner.
type Options struct {
	// Purpose is the upload purpose tag. Defaults to core.PurposeAssistants.
	Purpose string
	// StoreName names the created vector store. Defaults to "ragmesh-store".
	StoreName string
	// Logger defaults to NoOp.
	Logger logging.Logger
}

// Provisioner creates the two remote resources every execution needs: an
// uploaded file and a vector store scoped to it. Both calls block until the
// remote side reports a terminal state; polling is owned by the collaborator
// implementations.
type Provisioner struct {
	files     core.FileStore
	index     core.VectorIndex
	purpose   string
	storeName string
	logger    logging.Logger
}

// New constructs a Provisioner with optional overrides.
func New(files core.FileStore, index core.VectorIndex, optFns ...func(o *Options)) *Provisioner {
	opts := Options{
		Purpose:   core.PurposeAssistants,
		StoreName: "ragmesh-store",
		Logger:    logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Provisioner{
		files:     files,
		index:     index,
		purpose:   opts.Purpose,
		storeName: opts.StoreName,
		logger:    opts.Logger,
	}
}

// Resources identifies the remote resources created by one Provision call.
// Both are billable until deleted.
type Resources struct {
	FileID  string
	StoreID string
}

// Provision uploads the document at path and creates a vector store over it.
// Fails fast if the path does not exist. On a store-creation failure the
// already uploaded file is left behind for the caller's cleanup phase; the
// returned Resources carries the file id either way when upload succeeded.
func (p *Provisioner) Provision(ctx context.Context, path string) (*Resources, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("document %q: %w", path, err)
	}

	start := time.Now()
	fileID, err := p.files.Upload(ctx, path, p.purpose)
	if err != nil {
		return nil, fmt.Errorf("upload %q: %w", path, err)
	}
	p.logger.Info("document uploaded", "path", path, "file_id", fileID, "duration", time.Since(start))

	res := &Resources{FileID: fileID}

	start = time.Now()
	storeID, err := p.index.CreateStore(ctx, p.storeName, []string{fileID})
	if err != nil {
		return res, fmt.Errorf("create vector store for %s: %w", fileID, err)
	}
	p.logger.Info("vector store ready", "store_id", storeID, "file_id", fileID, "duration", time.Since(start))

	res.StoreID = storeID
	return res, nil
}
