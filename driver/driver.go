// Package driver sends user queries through a hosted agent's conversation
// thread. Per query it appends a user message, triggers a blocking run of the
// bound agent and extracts the newest message's first text block. Retrieval
// context is supplied server-side by the agent's file-search tool; the raw
// query goes onto the thread unmodified.
package driver

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/ragmesh/core"
	"github.com/hupe1980/ragmesh/logging"
)

// Options configures a Driver.
type Options struct {
	// Logger defaults to NoOp.
	Logger logging.Logger
}

// Driver runs queries against one agent/thread pair. Queries must be issued
// sequentially: each run consumes the thread state left by the previous one.
type Driver struct {
	svc      core.AgentService
	threadID string
	agentID  string
	logger   logging.Logger
}

// New constructs a Driver bound to an existing thread and agent.
func New(svc core.AgentService, threadID, agentID string, optFns ...func(o *Options)) *Driver {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Driver{svc: svc, threadID: threadID, agentID: agentID, logger: opts.Logger}
}

// ThreadID returns the shared thread id all queries append to.
func (d *Driver) ThreadID() string { return d.threadID }

// Ask appends the raw query to the thread, runs the agent until a terminal
// run state and returns the answer text. It returns core.ErrNoAnswer when
// the completed run left no assistant message or no text block on the
// thread, and a wrapped error for transport failures or non-completed
// terminal states.
func (d *Driver) Ask(ctx context.Context, query string) (string, error) {
	if err := d.svc.AppendMessage(ctx, d.threadID, core.NewUserMessage(query)); err != nil {
		return "", fmt.Errorf("append message: %w", err)
	}

	start := time.Now()
	res, err := d.svc.Run(ctx, d.threadID, d.agentID)
	if err != nil {
		return "", fmt.Errorf("run agent: %w", err)
	}
	d.logger.Debug("run finished", "run_id", res.ID, "status", string(res.Status), "duration", time.Since(start))

	if res.Status != core.RunStatusCompleted {
		if res.LastError != "" {
			return "", fmt.Errorf("run %s ended %s: %s", res.ID, res.Status, res.LastError)
		}
		return "", fmt.Errorf("run %s ended %s", res.ID, res.Status)
	}

	msgs, err := d.svc.ListMessages(ctx, d.threadID)
	if err != nil {
		return "", fmt.Errorf("list messages: %w", err)
	}
	if len(msgs) == 0 || msgs[0].Role != core.RoleAssistant {
		return "", core.ErrNoAnswer
	}
	text, ok := msgs[0].FirstText()
	if !ok {
		return "", core.ErrNoAnswer
	}
	return text, nil
}
