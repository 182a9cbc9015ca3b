package messaging

import (
	"context"

	"github.com/lumenshare/cardledger/internal/domain"
)

// Publisher defines the interface for publishing card lifecycle events
// to the message broker
type Publisher interface {
	// PublishEvent publishes a card lifecycle event
	PublishEvent(ctx context.Context, event *domain.CardEvent) error
	// Close closes the connection
	Close()
}
