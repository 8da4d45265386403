package job

import (
	"context"
	"log/slog"
	"time"
)

type staleRequeuer interface {
	RequeueStale(ctx context.Context, lease time.Duration) (int64, error)
}

// LeaseRecoveryJob returns publications whose worker died mid-publish to the pending queue.
type LeaseRecoveryJob struct {
	q     staleRequeuer
	lease time.Duration
}

func NewLeaseRecoveryJob(q staleRequeuer, lease time.Duration) *LeaseRecoveryJob {
	return &LeaseRecoveryJob{
		q:     q,
		lease: lease,
	}
}

func (j *LeaseRecoveryJob) RequeueStale() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := j.q.RequeueStale(ctx, j.lease)
	if err != nil {
		slog.Info(err.Error())
		return
	}
	if n > 0 {
		slog.Info("requeued stale publications", "count", n, "lease", j.lease)
	}
}
