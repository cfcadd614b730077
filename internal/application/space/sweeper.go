package space

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/VaishnavKrishnanP/EchoSpace/internal/domain"
	"github.com/VaishnavKrishnanP/EchoSpace/internal/pkg/id"
)

// SpaceStore is the persistence surface the sweeper needs for spaces.
type SpaceStore interface {
	ListExpired(ctx context.Context, now int64) ([]domain.SpaceRecord, error)
}

// AccountStore resolves owner back-references.
type AccountStore interface {
	Get(ctx context.Context, userID string) (*domain.AccountRecord, error)
}

// WriteBatch collects the staged writes of one sweep cycle and commits them
// as a grouped write.
type WriteBatch interface {
	StageAccountUpdate(userID string, hasSpace bool) error
	StageSpaceDelete(spaceID string)
	Len() int
	Commit(ctx context.Context) error
}

// AnomalyReporter surfaces dangling owner references to operators.
type AnomalyReporter interface {
	ReportDanglingOwner(ctx context.Context, spaceID, userID string) error
}

// Sweeper reclaims expired spaces on a fixed schedule, flipping each
// resolvable owner's has_space flag in the same grouped write. Failures are
// logged and swallowed; an abandoned cycle is retried at the next tick.
type Sweeper struct {
	spaces   SpaceStore
	users    AccountStore
	newBatch func() WriteBatch
	reporter AnomalyReporter // nil disables SNS reporting
	interval time.Duration
}

// SweeperDeps bundles the sweeper's collaborators.
type SweeperDeps struct {
	SpaceRepo SpaceStore
	UserRepo  AccountStore
	NewBatch  func() WriteBatch
	Reporter  AnomalyReporter
	Interval  time.Duration
}

func NewSweeper(deps SweeperDeps) *Sweeper {
	return &Sweeper{
		spaces:   deps.SpaceRepo,
		users:    deps.UserRepo,
		newBatch: deps.NewBatch,
		reporter: deps.Reporter,
		interval: deps.Interval,
	}
}

// Run executes one sweep per tick until the context is cancelled. Cycles run
// sequentially, so at most one is in flight at a time.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	slog.Info("expiry sweeper started", "interval", s.interval)
	for {
		select {
		case <-ctx.Done():
			slog.Info("expiry sweeper stopped")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep runs a single cycle. It never returns an error: anything that goes
// wrong is logged and the remaining work is left for the next cycle, which
// re-queries the store and naturally picks it up.
func (s *Sweeper) Sweep(ctx context.Context) {
	cycleID := id.New()
	now := time.Now().UTC().Unix()

	expired, err := s.spaces.ListExpired(ctx, now)
	if err != nil {
		slog.Error("sweep: expired-space query failed", "cycle", cycleID, "err", err)
		return
	}
	if len(expired) == 0 {
		slog.Info("sweep: no expired spaces found", "cycle", cycleID)
		return
	}

	batch := s.newBatch()
	for _, sp := range expired {
		if sp.CreatedBy != "" {
			acc, err := s.users.Get(ctx, sp.CreatedBy)
			switch {
			case err == nil:
				if err := batch.StageAccountUpdate(acc.UserID, false); err != nil {
					slog.Error("sweep: failed to stage account update", "cycle", cycleID, "user_id", acc.UserID, "err", err)
					return
				}
			case errors.Is(err, domain.ErrNotFound):
				slog.Warn("sweep: dangling owner reference", "cycle", cycleID, "space_id", sp.SpaceID, "user_id", sp.CreatedBy)
				s.reportDanglingOwner(ctx, sp.SpaceID, sp.CreatedBy)
			default:
				slog.Error("sweep: owner lookup failed", "cycle", cycleID, "user_id", sp.CreatedBy, "err", err)
				return
			}
		}
		batch.StageSpaceDelete(sp.SpaceID)
	}

	staged := batch.Len()
	if err := batch.Commit(ctx); err != nil {
		slog.Error("sweep: grouped write failed", "cycle", cycleID, "staged", staged, "err", err)
		return
	}
	slog.Info("sweep: deleted expired spaces", "cycle", cycleID, "spaces", len(expired), "writes", staged)
}

func (s *Sweeper) reportDanglingOwner(ctx context.Context, spaceID, userID string) {
	if s.reporter == nil {
		return
	}
	if err := s.reporter.ReportDanglingOwner(ctx, spaceID, userID); err != nil {
		slog.Warn("sweep: anomaly report failed", "space_id", spaceID, "err", err)
	}
}
