package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/maheshrc27/postgen/internal/models"
	"github.com/maheshrc27/postgen/internal/publisher"
	"github.com/maheshrc27/postgen/internal/repository"
	"github.com/maheshrc27/postgen/internal/transfer"
)

// PreflightChecker rejects publications that could never succeed before they are queued.
type PreflightChecker interface {
	Check(platform string, media publisher.Media) *publisher.Result
}

// PublicationNotifier hints a worker that a new publication is waiting.
type PublicationNotifier interface {
	Notify(ctx context.Context, publicationID int64) error
}

type RunFlag interface {
	Running() bool
	SetRunning(running bool)
}

type PublicationService interface {
	Enqueue(ctx context.Context, ownerID *int64, req *transfer.PublishRequest) transfer.PublishResponse
	List(ctx context.Context, ownerID int64) ([]*models.Publication, error)
	Get(ctx context.Context, id int64) (*models.Publication, error)
	QueueStatus(ctx context.Context) (*transfer.QueueStatus, error)
	SetRunning(ctx context.Context, running bool) (*transfer.QueueStatus, error)
}

type publicationService struct {
	pr       repository.PublicationRepository
	checker  PreflightChecker
	notifier PublicationNotifier
	state    RunFlag
}

// NewPublicationService accepts a nil notifier when no asynq server is configured.
func NewPublicationService(
	pr repository.PublicationRepository,
	checker PreflightChecker,
	notifier PublicationNotifier,
	state RunFlag) PublicationService {
	return &publicationService{
		pr:       pr,
		checker:  checker,
		notifier: notifier,
		state:    state,
	}
}

func (s *publicationService) Enqueue(ctx context.Context, ownerID *int64, req *transfer.PublishRequest) transfer.PublishResponse {
	platform := strings.ToLower(strings.TrimSpace(req.Platform))
	text := strings.TrimSpace(req.Text)

	if platform == "" {
		return rejected(models.ErrValidation, "Platform is required.")
	}
	if text == "" {
		return rejected(models.ErrValidation, "Text is required.")
	}

	media := publisher.SelectMedia(platform, req.MediaURL, req.VideoPath)
	if r := s.checker.Check(platform, media); r != nil {
		return rejected(r.ErrorKind, r.Message)
	}

	p := &models.Publication{
		OwnerID:   ownerID,
		Platform:  platform,
		Text:      text,
		MediaURL:  req.MediaURL,
		VideoPath: req.VideoPath,
	}
	id, err := s.pr.Create(ctx, p)
	if err != nil {
		slog.Error("failed to queue publication", "platform", platform, "error", err)
		return rejected(models.ErrException, "Failed to queue publication.")
	}

	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, id); err != nil {
			slog.Info("publication notify failed", "id", id, "error", err)
		}
	}

	return transfer.PublishResponse{
		Success:       true,
		Message:       "Publication queued for " + platform + ".",
		PublicationID: id,
		Status:        models.PublicationStatusPending,
	}
}

func rejected(kind models.ErrorKind, message string) transfer.PublishResponse {
	return transfer.PublishResponse{
		Success:   false,
		Message:   message,
		Status:    models.PublicationStatusFailed,
		ErrorKind: kind,
	}
}

func (s *publicationService) List(ctx context.Context, ownerID int64) ([]*models.Publication, error) {
	publications, err := s.pr.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if publications == nil {
		publications = []*models.Publication{}
	}
	return publications, nil
}

func (s *publicationService) Get(ctx context.Context, id int64) (*models.Publication, error) {
	return s.pr.GetByID(ctx, id)
}

func (s *publicationService) QueueStatus(ctx context.Context) (*transfer.QueueStatus, error) {
	count, err := s.pr.CountPending(ctx)
	if err != nil {
		return nil, err
	}
	return &transfer.QueueStatus{Running: s.state.Running(), PendingCount: count}, nil
}

func (s *publicationService) SetRunning(ctx context.Context, running bool) (*transfer.QueueStatus, error) {
	s.state.SetRunning(running)
	slog.Info("publication queue toggled", "running", running)
	return s.QueueStatus(ctx)
}
