package api

import (
	"context"

	"github.com/wastewise-india/sortline/sim"
	"github.com/wastewise-india/sortline/store"
)

// LineController is the subset of live.Controller the handlers drive.
type LineController interface {
	Start(ctx context.Context) (sim.Snapshot, error)
	Stop(ctx context.Context) (sim.Snapshot, error)
	Reset(ctx context.Context) (ended, fresh sim.Snapshot, err error)
	StepFrame(ctx context.Context) (sim.Snapshot, error)
	Snapshot() sim.Snapshot
	Subscribe() (<-chan sim.Snapshot, func())
	Seed() int64
}

// RunStore persists finished sessions.
type RunStore interface {
	SaveRun(ctx context.Context, rec store.RunRecord) error
	ListRuns(ctx context.Context, limit int) ([]store.RunRecord, error)
	GetRun(ctx context.Context, id string) (store.RunRecord, error)
}
