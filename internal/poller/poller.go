// Package poller runs a fetch function on a fixed interval until its context ends.
package poller

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/GITHIYON49/taskmanagementapp/internal/otel"
	"github.com/GITHIYON49/taskmanagementapp/pkg/models"
)

// DefaultInterval matches the notification refresh cadence of the web client.
const DefaultInterval = models.DefaultPollIntervalSec * time.Second

// Poller calls Fetch once immediately and then every Interval.
type Poller struct {
	Name     string
	Interval time.Duration
	Fetch    func(ctx context.Context) error
	Logger   *slog.Logger
}

// Run blocks until ctx is done. Fetch errors are logged and never stop the loop.
func (p *Poller) Run(ctx context.Context) {
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	log := p.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	name := p.Name
	if name == "" {
		name = "poll"
	}

	p.tick(ctx, log, name)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx, log, name)
		}
	}
}

func (p *Poller) tick(ctx context.Context, log *slog.Logger, name string) {
	err := p.Fetch(ctx)
	switch {
	case err == nil:
		otel.RecordPoll(ctx, "ok")
	case errors.Is(err, context.Canceled) || ctx.Err() != nil:
		otel.RecordPoll(ctx, "canceled")
	default:
		otel.RecordPoll(ctx, "error")
		log.Warn("poller: fetch failed", "poller", name, "error", err)
	}
}
