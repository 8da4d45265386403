package queue

import (
	"context"
	"encoding/json"
	"log"

	"github.com/hibiken/asynq"
)

func EnqueuePublication(ctx context.Context, asynqClient *asynq.Client, payload ProcessPublicationPayload) error {
	taskPayload, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	task := asynq.NewTask(TaskTypeProcessPublication, taskPayload)

	// best effort, the ticker picks up whatever this misses
	_, err = asynqClient.EnqueueContext(ctx, task, asynq.MaxRetry(0))
	if err != nil {
		return err
	}

	log.Printf("Task enqueued: %+v", payload)
	return nil
}

// Notifier asks the asynq server to process a publication without waiting for the next tick.
type Notifier struct {
	client *asynq.Client
}

func NewNotifier(client *asynq.Client) *Notifier {
	return &Notifier{client: client}
}

func (n *Notifier) Notify(ctx context.Context, publicationID int64) error {
	return EnqueuePublication(ctx, n.client, ProcessPublicationPayload{PublicationID: publicationID})
}
