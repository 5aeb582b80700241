package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/FACorreiaa/swipetrip/internal/app/models"
	"github.com/FACorreiaa/swipetrip/internal/app/relay"
)

type Repository interface {
	ListGroups(keep func(models.Group) bool) []models.Group
	ListGroupMembers(keep func(models.GroupMember) bool) []models.GroupMember
	MarkVoteClosedAnnounced(groupID int64) (bool, error)
}

type Tallier interface {
	Tally(ctx context.Context, groupID int64) ([]models.VoteResult, error)
}

// VoteWindowWatcher announces the final tally of every group whose vote
// window has ended. Each group is announced once.
type VoteWindowWatcher struct {
	repo      Repository
	tallier   Tallier
	publisher relay.Publisher
	logger    *zap.Logger
	interval  time.Duration
	now       func() time.Time

	stopCh  chan struct{}
	wg      sync.WaitGroup
	running bool
	mu      sync.Mutex
}

func NewVoteWindowWatcher(repo Repository, tallier Tallier, publisher relay.Publisher, interval time.Duration, logger *zap.Logger) *VoteWindowWatcher {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &VoteWindowWatcher{
		repo:      repo,
		tallier:   tallier,
		publisher: publisher,
		logger:    logger,
		interval:  interval,
		now:       time.Now,
	}
}

// Start runs the watcher until Stop is called or ctx is done.
func (w *VoteWindowWatcher) Start(ctx context.Context) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.mu.Unlock()

	w.wg.Add(1)
	go w.run(ctx, w.stopCh)
	w.logger.Info("Vote window watcher started", zap.Duration("interval", w.interval))
}

// Stop halts the watcher and waits for an in-flight pass to finish.
func (w *VoteWindowWatcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	close(w.stopCh)
	w.mu.Unlock()

	w.wg.Wait()
	w.logger.Info("Vote window watcher stopped")
}

func (w *VoteWindowWatcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *VoteWindowWatcher) run(ctx context.Context, stop <-chan struct{}) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := w.RunOnce(ctx); err != nil {
				w.logger.Error("Vote window pass failed", zap.Error(err))
			}
		case <-stop:
			return
		case <-ctx.Done():
			w.mu.Lock()
			w.running = false
			w.mu.Unlock()
			return
		}
	}
}

// RunOnce announces every vote window that has ended since the last pass and
// returns how many groups were announced.
func (w *VoteWindowWatcher) RunOnce(ctx context.Context) (int, error) {
	ctx, span := otel.Tracer("VoteWindowWatcher").Start(ctx, "RunOnce")
	defer span.End()

	now := w.now()
	due := w.repo.ListGroups(func(g models.Group) bool {
		return g.VoteEndTime != nil && !g.ClosedAnnounced && !g.VotingOpen(now)
	})

	announced := 0
	for _, g := range due {
		if err := ctx.Err(); err != nil {
			return announced, err
		}

		results, err := w.tallier.Tally(ctx, g.ID)
		if err != nil {
			span.RecordError(err)
			return announced, fmt.Errorf("tally group %d: %w", g.ID, err)
		}
		first, err := w.repo.MarkVoteClosedAnnounced(g.ID)
		if err != nil {
			span.RecordError(err)
			return announced, fmt.Errorf("mark group %d announced: %w", g.ID, err)
		}
		if !first {
			continue
		}

		members := w.repo.ListGroupMembers(func(m models.GroupMember) bool { return m.GroupID == g.ID })
		ids := make([]int64, 0, len(members))
		for _, m := range members {
			ids = append(ids, m.UserID)
		}
		delivered := w.publisher.PublishMany(ids, relay.Event{
			Type:    relay.KindVoteClosed,
			Payload: relay.VoteClosedPayload{GroupID: g.ID, Results: results},
		})

		w.logger.Info("Vote window closed",
			zap.Int64("groupID", g.ID),
			zap.Int("results", len(results)),
			zap.Int("members", len(ids)),
			zap.Int("delivered", delivered))
		announced++
	}

	span.SetAttributes(attribute.Int("groups.announced", announced))
	return announced, nil
}
