package ledger

import (
	"context"
	"strings"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/lumenshare/cardledger/internal/adapter"
	"github.com/lumenshare/cardledger/internal/cache"
	"github.com/lumenshare/cardledger/internal/domain"
	"github.com/lumenshare/cardledger/internal/logger"
	"github.com/lumenshare/cardledger/internal/messaging"
	"github.com/lumenshare/cardledger/internal/store"
	"github.com/lumenshare/cardledger/internal/store/schema"
)

// Service manages ownership records and their listing state
type Service interface {
	// ListOwnedBy retrieves a user's copies with their card definitions,
	// most recently acquired first
	ListOwnedBy(ctx context.Context, ownerID string) ([]store.OwnedCardResult, error)
	// SetListing puts a copy up for sale at the given price
	SetListing(ctx context.Context, ownershipID string, salePrice float64) (*schema.CardOwnership, error)
	// Unlist takes a copy off the market
	Unlist(ctx context.Context, ownershipID string) (*schema.CardOwnership, error)
}

type service struct {
	store     store.Store
	cache     *cache.CardCache
	publisher messaging.Publisher
	clock     adapter.Clock
}

// NewService creates a ledger service
func NewService(s store.Store, c *cache.CardCache, pub messaging.Publisher, clock adapter.Clock) Service {
	return &service{store: s, cache: c, publisher: pub, clock: clock}
}

func (s *service) ListOwnedBy(ctx context.Context, ownerID string) ([]store.OwnedCardResult, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, domain.NewValidationError("owner_id", "owner_id is required")
	}
	return s.store.ListOwnershipsByOwner(ctx, ownerID)
}

func (s *service) SetListing(ctx context.Context, ownershipID string, salePrice float64) (*schema.CardOwnership, error) {
	if salePrice <= 0 {
		return nil, domain.NewValidationError("sale_price", "sale_price must be positive")
	}

	ownership, err := s.store.SetListing(ctx, ownershipID, salePrice)
	if err != nil {
		return nil, err
	}

	// Listing may have lowered the card's floor price
	if s.cache != nil {
		s.cache.Invalidate(ctx, ownership.CardID)
	}

	s.publish(ctx, &domain.CardEvent{
		EventID:       ulid.Make().String(),
		EventType:     domain.CardEventListed,
		CardID:        ownership.CardID,
		OwnershipID:   ownership.ID,
		ActorID:       ownership.OwnerID,
		EditionNumber: &ownership.EditionNumber,
		Price:         salePrice,
		Timestamp:     s.clock.Now(),
	})

	return ownership, nil
}

func (s *service) Unlist(ctx context.Context, ownershipID string) (*schema.CardOwnership, error) {
	ownership, err := s.store.Unlist(ctx, ownershipID)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, &domain.CardEvent{
		EventID:       ulid.Make().String(),
		EventType:     domain.CardEventUnlisted,
		CardID:        ownership.CardID,
		OwnershipID:   ownership.ID,
		ActorID:       ownership.OwnerID,
		EditionNumber: &ownership.EditionNumber,
		Timestamp:     s.clock.Now(),
	})

	return ownership, nil
}

func (s *service) publish(ctx context.Context, event *domain.CardEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishEvent(ctx, event); err != nil {
		logger.WarnCtx(ctx, "Failed to publish card event",
			zap.String("event_type", string(event.EventType)),
			zap.String("card_id", event.CardID),
			zap.Error(err))
	}
}
