package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/maheshrc27/postgen/internal/models"
	"github.com/maheshrc27/postgen/internal/publisher"
)

// Run drains pending publications every interval until ctx is cancelled.
func (q *Queue) Run(ctx context.Context) {
	ticker := time.NewTicker(q.interval)
	defer ticker.Stop()

	log.Printf("Publication worker started (interval %s)", q.interval)
	for {
		q.Tick(ctx)

		select {
		case <-ctx.Done():
			log.Println("Publication worker stopped")
			return
		case <-ticker.C:
		}
	}
}

// Tick processes every pending publication once, in id order, if the queue is running.
func (q *Queue) Tick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("publication tick panicked", "panic", r)
		}
	}()

	if !q.state.Running() {
		return
	}

	pending, err := q.pr.ListPending(ctx)
	if err != nil {
		slog.Error("failed to list pending publications", "error", err)
		return
	}

	for _, p := range pending {
		if ctx.Err() != nil {
			return
		}
		if err := q.ProcessPublication(ctx, p); err != nil {
			slog.Error("failed to process publication", "id", p.ID, "error", err)
		}
	}
}

// ProcessPublication claims the row and records the adapter's result. A row claimed
// elsewhere is skipped. A panicking adapter fails the row with EXCEPTION.
func (q *Queue) ProcessPublication(ctx context.Context, p *models.Publication) (err error) {
	claimed, err := q.pr.Claim(ctx, p.ID)
	if err != nil {
		return err
	}
	if !claimed {
		return nil
	}

	// the outcome is written even when shutdown cancels ctx mid-call
	store := context.WithoutCancel(ctx)

	defer func() {
		if r := recover(); r != nil {
			log.Printf("Panic while publishing %d to %s: %v", p.ID, p.Platform, r)
			err = q.pr.MarkFailed(store, p.ID, models.ErrException, fmt.Sprint(r))
		}
	}()

	callCtx, cancel := context.WithTimeout(ctx, q.timeout)
	defer cancel()

	result := q.registry.Publish(callCtx, p.Platform, p.Text, publisher.SelectMedia(p.Platform, p.MediaURL, p.VideoPath))

	if result.Success {
		slog.Info("publication published", "id", p.ID, "platform", p.Platform, "external_id", result.ID)
		return q.pr.MarkPublished(store, p.ID, externalRef(result))
	}

	kind := result.ErrorKind
	if kind == "" {
		kind = models.ErrException
	}
	slog.Info("publication failed", "id", p.ID, "platform", p.Platform, "error_kind", kind, "message", result.Message)
	return q.pr.MarkFailed(store, p.ID, kind, result.Message)
}

func externalRef(r publisher.Result) string {
	if r.ID != "" {
		return r.ID
	}
	return r.Message
}

// HandleProcessPublicationTask processes one publication as soon as it is enqueued.
func (q *Queue) HandleProcessPublicationTask(ctx context.Context, task *asynq.Task) error {
	var payload ProcessPublicationPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	if !q.state.Running() {
		return nil
	}

	p, err := q.pr.GetByID(ctx, payload.PublicationID)
	if err != nil {
		slog.Info(err.Error())
		return nil
	}
	if p == nil || p.Status != models.PublicationStatusPending {
		return nil
	}

	if err := q.ProcessPublication(ctx, p); err != nil {
		slog.Error("failed to process publication", "id", p.ID, "error", err)
	}
	return nil
}

// RequeueStale returns publications stuck in processing past the lease to pending.
func (q *Queue) RequeueStale(ctx context.Context, lease time.Duration) (int64, error) {
	return q.pr.RequeueStale(ctx, time.Now().Add(-lease))
}
