// Package outbox holds chat messages that could not be sent while offline and
// coordinates replaying them once connectivity returns.
package outbox

import (
	"context"
	"errors"

	"github.com/ouge98-max/your-repo-sub000/internal/models"
)

var ErrDuplicateMessage = errors.New("message already queued")

// Queue is a persistent store of messages pending delivery, keyed by message ID.
type Queue interface {
	// AddMessageToQueue inserts one message. A message with the same ID already
	// in the queue is rejected with ErrDuplicateMessage.
	AddMessageToQueue(ctx context.Context, msg models.QueuedMessage) error

	// GetQueuedMessages returns every queued message in insertion order.
	GetQueuedMessages(ctx context.Context) ([]models.QueuedMessage, error)

	// DeleteQueuedMessage removes one message. Deleting an unknown ID is not an error.
	DeleteQueuedMessage(ctx context.Context, id string) error
}
