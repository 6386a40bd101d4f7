// Package ragmesh provides a high-level façade over the provisioning,
// tool-binding, query-driving and lifecycle packages, enabling a complete
// retrieval-augmented execution against a hosted agent platform in one call.
// Most applications interact with this package by:
//  1. Creating a RagMesh via New() (optionally overriding the remote service,
//     configuration or logger)
//  2. Calling Execute with a document path and an ordered list of queries
//
// The façade delegates orchestration to engine.Engine while keeping setup
// ergonomics concise. With no overrides it builds the OpenAI-backed remote
// service from the environment; tests and offline demos inject the in-memory
// service instead.
package ragmesh

import (
	"context"

	"github.com/hupe1980/ragmesh/config"
	"github.com/hupe1980/ragmesh/core"
	"github.com/hupe1980/ragmesh/engine"
	"github.com/hupe1980/ragmesh/logging"
	remoteopenai "github.com/hupe1980/ragmesh/remote/openai"
)

// Options configures the RagMesh instance.
type Options struct {
	// Service is the remote backend. Defaults to the OpenAI-backed service
	// built from Config (which is then loaded from the environment if nil).
	Service core.Service

	// Config supplies model, agent and polling settings. Defaults to
	// config.FromEnv() when Service is nil, config.Default() otherwise.
	Config *config.Config

	// Logger defaults to NoOp logger if nil.
	Logger logging.Logger
}

// RagMesh is the high-level façade aggregating the engine and its services.
type RagMesh struct {
	opts   Options
	engine *engine.Engine
}

// New creates a new RagMesh instance with optional overrides.
func New(optFns ...func(o *Options)) (*RagMesh, error) {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	if opts.Config == nil {
		if opts.Service != nil {
			opts.Config = config.Default()
		} else {
			cfg, err := config.FromEnv()
			if err != nil {
				return nil, err
			}
			opts.Config = cfg
		}
	}

	if opts.Service == nil {
		opts.Service = remoteopenai.NewFromConfig(opts.Config)
	}

	eng := engine.New(opts.Service, func(o *engine.Options) {
		o.AgentName = opts.Config.AgentName
		o.Model = opts.Config.Model
		o.Instructions = opts.Config.Instructions
		o.Logger = opts.Logger
	})

	return &RagMesh{opts: opts, engine: eng}, nil
}

// Execute provisions the document, binds the file-search toolset to a fresh
// agent and thread, runs the queries strictly in order and tears all remote
// resources down again regardless of query outcome.
func (m *RagMesh) Execute(ctx context.Context, docPath string, queries []string) ([]engine.Answer, error) {
	return m.engine.Execute(ctx, docPath, queries)
}
