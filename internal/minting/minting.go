package minting

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
	"github.com/lumenshare/cardledger/internal/wallet"
)

// MintRequest identifies the card and buyer for a primary mint
type MintRequest struct {
	CardID    string
	BuyerID   string
	BuyerName string
}

// Coordinator drives primary mints: edition numbering, capacity checks
// and payment settle in one storage transaction, events fire after
// commit
type Coordinator interface {
	// Mint issues the next edition of the card to the buyer
	Mint(ctx context.Context, req MintRequest) (*schema.CardOwnership, error)
}

type coordinator struct {
	store     store.Store
	wallet    wallet.Service
	cache     *cache.CardCache
	publisher messaging.Publisher
	clock     adapter.Clock
}

// NewCoordinator creates a minting coordinator
func NewCoordinator(s store.Store, w wallet.Service, c *cache.CardCache, pub messaging.Publisher, clock adapter.Clock) Coordinator {
	return &coordinator{store: s, wallet: w, cache: c, publisher: pub, clock: clock}
}

func (c *coordinator) Mint(ctx context.Context, req MintRequest) (*schema.CardOwnership, error) {
	if strings.TrimSpace(req.CardID) == "" {
		return nil, domain.NewValidationError("card_id", "card_id is required")
	}
	if strings.TrimSpace(req.BuyerID) == "" {
		return nil, domain.NewValidationError("buyer_id", "buyer_id is required")
	}
	if strings.TrimSpace(req.BuyerName) == "" {
		return nil, domain.NewValidationError("buyer_name", "buyer_name is required")
	}

	settle := func(txCtx context.Context, card *schema.Card, editionNumber int) error {
		return c.wallet.ProcessPrimaryPurchase(txCtx, req.BuyerID, card, editionNumber)
	}

	ownership, err := c.store.MintEdition(ctx, store.MintEditionInput{
		CardID:    req.CardID,
		BuyerID:   req.BuyerID,
		BuyerName: req.BuyerName,
	}, settle)
	if err != nil {
		return nil, err
	}

	// Mint counters on the card row changed
	if c.cache != nil {
		c.cache.Invalidate(ctx, ownership.CardID)
	}

	c.publishMinted(ctx, ownership)

	return ownership, nil
}

func (c *coordinator) publishMinted(ctx context.Context, ownership *schema.CardOwnership) {
	if c.publisher == nil {
		return
	}
	event := &domain.CardEvent{
		EventID:       ulid.Make().String(),
		EventType:     domain.CardEventMinted,
		CardID:        ownership.CardID,
		OwnershipID:   ownership.ID,
		ActorID:       ownership.OwnerID,
		EditionNumber: &ownership.EditionNumber,
		Price:         ownership.PurchasePrice,
		Timestamp:     c.clock.Now(),
	}
	if err := c.publisher.PublishEvent(ctx, event); err != nil {
		logger.WarnCtx(ctx, "Failed to publish mint event",
			zap.String("card_id", ownership.CardID),
			zap.Int("edition_number", ownership.EditionNumber),
			zap.Error(err))
	}
}
