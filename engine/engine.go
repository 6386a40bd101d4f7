package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/ragmesh/core"
	"github.com/hupe1980/ragmesh/driver"
	"github.com/hupe1980/ragmesh/logging"
	"github.com/hupe1980/ragmesh/provision"
	"github.com/hupe1980/ragmesh/tool"
)

// Options configures an Engine instance.
type Options struct {
	// AgentName names the agent created for each execution.
	AgentName string
	// Model is the hosted model identifier bound to the agent.
	Model string
	// Instructions is the system instruction text for the agent.
	Instructions string
	// Purpose tags uploads. Defaults to core.PurposeAssistants.
	Purpose string
	// StoreName names the created vector store.
	StoreName string
	// Logger defaults to NoOp.
	Logger logging.Logger
}

// Engine owns the end-to-end execution lifecycle: provision the document
// resources, bind the file-search toolset, create agent and thread, drive
// the queries strictly sequentially and tear every created remote resource
// down again. Teardown runs on every exit path, including early errors, in
// the fixed order thread, agent, file, vector store.
type Engine struct {
	svc          core.Service
	agentName    string
	model        string
	instructions string
	purpose      string
	storeName    string
	logger       logging.Logger
}

// New constructs an Engine with optional overrides.
func New(svc core.Service, optFns ...func(o *Options)) *Engine {
	opts := Options{
		AgentName:    "ragmesh-agent",
		Model:        "gpt-4o-mini",
		Instructions: "You are a helpful agent that answers questions using the attached document search tool.",
		Purpose:      core.PurposeAssistants,
		StoreName:    "ragmesh-store",
		Logger:       logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Engine{
		svc:          svc,
		agentName:    opts.AgentName,
		model:        opts.Model,
		instructions: opts.Instructions,
		purpose:      opts.Purpose,
		storeName:    opts.StoreName,
		logger:       opts.Logger,
	}
}

// Answer is the outcome of one query.
type Answer struct {
	// Query is the raw input query.
	Query string
	// Text is the extracted answer. Empty when NoAnswer is set.
	Text string
	// NoAnswer is set when the run completed but the service returned no
	// usable message content for this query.
	NoAnswer bool
}

// Execute runs the full provision, bind, query, teardown sequence for one
// document and an ordered list of queries.
//
// Queries run strictly sequentially against one shared thread; a transport
// or run failure at query k aborts queries k+1..n. A query that yields
// core.ErrNoAnswer is recorded in its Answer and does not abort the batch.
// Answers collected so far are returned alongside any error.
func (e *Engine) Execute(ctx context.Context, docPath string, queries []string) (answers []Answer, err error) {
	executionID := core.NewID()
	e.logger.Info("execution started", "execution_id", executionID, "document", docPath, "queries", len(queries))

	prov := provision.New(e.svc, e.svc, func(o *provision.Options) {
		o.Purpose = e.purpose
		o.StoreName = e.storeName
		o.Logger = e.logger
	})

	var agentID, threadID string
	res, err := prov.Provision(ctx, docPath)

	// Teardown is scoped to everything created from here on and must run on
	// every exit path. It uses a context that survives cancellation of ctx.
	defer func() {
		e.teardown(context.WithoutCancel(ctx), executionID, threadID, agentID, res)
	}()

	if err != nil {
		return nil, fmt.Errorf("provision: %w", err)
	}

	toolset := tool.NewToolset(tool.NewFileSearch(res.StoreID))

	agentID, err = e.svc.CreateAgent(ctx, core.AgentSpec{
		Name:         e.agentName,
		Model:        e.model,
		Instructions: e.instructions,
		Toolset:      toolset,
	})
	if err != nil {
		return nil, fmt.Errorf("create agent: %w", err)
	}
	e.logger.Info("agent created", "execution_id", executionID, "agent_id", agentID, "model", e.model)

	threadID, err = e.svc.CreateThread(ctx)
	if err != nil {
		return nil, fmt.Errorf("create thread: %w", err)
	}
	e.logger.Info("thread created", "execution_id", executionID, "thread_id", threadID)

	drv := driver.New(e.svc, threadID, agentID, func(o *driver.Options) { o.Logger = e.logger })

	answers = make([]Answer, 0, len(queries))
	for _, q := range queries {
		text, askErr := drv.Ask(ctx, q)
		if errors.Is(askErr, core.ErrNoAnswer) {
			e.logger.Warn("no answer returned", "execution_id", executionID, "query", q)
			answers = append(answers, Answer{Query: q, NoAnswer: true})
			continue
		}
		if askErr != nil {
			return answers, fmt.Errorf("query %q: %w", q, askErr)
		}
		answers = append(answers, Answer{Query: q, Text: text})
	}
	return answers, nil
}

// teardown deletes the remote resources of one execution in the fixed order
// thread, agent, file, vector store. Ids that were never assigned are
// skipped; deletion failures are logged, never returned, so one failed
// delete does not prevent the remaining ones.
func (e *Engine) teardown(ctx context.Context, executionID, threadID, agentID string, res *provision.Resources) {
	type target struct{ kind, id string }
	targets := []target{
		{kind: "thread", id: threadID},
		{kind: "agent", id: agentID},
	}
	if res != nil {
		targets = append(targets, target{kind: "file", id: res.FileID}, target{kind: "vector_store", id: res.StoreID})
	}

	for _, tg := range targets {
		if tg.id == "" {
			continue
		}
		var err error
		switch tg.kind {
		case "thread":
			err = e.svc.DeleteThread(ctx, tg.id)
		case "agent":
			err = e.svc.DeleteAgent(ctx, tg.id)
		case "file":
			err = e.svc.DeleteFile(ctx, tg.id)
		case "vector_store":
			err = e.svc.DeleteStore(ctx, tg.id)
		}
		if err != nil {
			e.logger.Warn("cleanup failed", "execution_id", executionID, "resource_kind", tg.kind, "resource_id", tg.id, "error", err)
			continue
		}
		e.logger.Info("resource deleted", "execution_id", executionID, "resource_kind", tg.kind, "resource_id", tg.id)
	}
}
