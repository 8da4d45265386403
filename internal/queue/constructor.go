package queue

import (
	"context"
	"time"

	"github.com/maheshrc27/postgen/internal/publisher"
	"github.com/maheshrc27/postgen/internal/repository"
)

// Dispatcher routes a publication to the adapter of its platform.
type Dispatcher interface {
	Publish(ctx context.Context, platform, text string, media publisher.Media) publisher.Result
}

type Queue struct {
	pr       repository.PublicationRepository
	registry Dispatcher
	state    *State
	interval time.Duration
	timeout  time.Duration
}

func NewQueue(
	pr repository.PublicationRepository,
	registry Dispatcher,
	state *State,
	interval time.Duration,
	timeout time.Duration) *Queue {
	return &Queue{
		pr:       pr,
		registry: registry,
		state:    state,
		interval: interval,
		timeout:  timeout,
	}
}

const TaskTypeProcessPublication = "publication:process"

type ProcessPublicationPayload struct {
	PublicationID int64 `json:"publication_id"`
}
