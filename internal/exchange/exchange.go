package exchange

import (
	"context"
	"strings"

	"github.com/alitto/pond/v2"
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

// DefaultQueryLimit caps marketplace queries that do not set a limit
const DefaultQueryLimit = 50

// QueryRequest narrows a marketplace browse. Price bounds, sort and
// limit are evaluated by the store; rarity, discipline and edition type
// are applied after the card definitions are fetched.
type QueryRequest struct {
	Rarity      string
	Discipline  string
	EditionType string
	MinPrice    *float64
	MaxPrice    *float64
	Sort        store.ListingSort
	Limit       int
}

// Listing pairs a for-sale ownership record with its card definition
type Listing struct {
	Ownership schema.CardOwnership `json:"ownership"`
	Card      schema.Card          `json:"card"`
}

// PurchaseRequest identifies the listing and buyer for a resale
type PurchaseRequest struct {
	OwnershipID string
	BuyerID     string
	BuyerName   string
}

// Service is the marketplace exchange: listing discovery and resale
// purchases
type Service interface {
	// Query returns current listings matching the request
	Query(ctx context.Context, req QueryRequest) ([]Listing, error)
	// Purchase buys a listed copy, settling payment and transferring
	// ownership atomically
	Purchase(ctx context.Context, req PurchaseRequest) (*schema.CardOwnership, error)
	// Close releases the card fetch worker pool
	Close()
}

type service struct {
	store     store.Store
	wallet    wallet.Service
	cache     *cache.CardCache
	publisher messaging.Publisher
	clock     adapter.Clock
	pool      pond.ResultPool[*schema.Card]
}

// NewService creates an exchange service. fetchWorkers bounds the
// concurrency of per-listing card definition fetches.
func NewService(s store.Store, w wallet.Service, c *cache.CardCache, pub messaging.Publisher, clock adapter.Clock, fetchWorkers int) Service {
	if fetchWorkers <= 0 {
		fetchWorkers = 8
	}
	return &service{
		store:     s,
		wallet:    w,
		cache:     c,
		publisher: pub,
		clock:     clock,
		pool:      pond.NewResultPool[*schema.Card](fetchWorkers),
	}
}

func (s *service) Query(ctx context.Context, req QueryRequest) ([]Listing, error) {
	limit := req.Limit
	if limit <= 0 || limit > DefaultQueryLimit {
		limit = DefaultQueryLimit
	}

	listings, err := s.store.ListListings(ctx, store.ListingFilter{
		MinPrice: req.MinPrice,
		MaxPrice: req.MaxPrice,
		Sort:     req.Sort,
		Limit:    limit,
	})
	if err != nil {
		return nil, err
	}
	if len(listings) == 0 {
		return []Listing{}, nil
	}

	cards, err := s.fetchCards(ctx, listings)
	if err != nil {
		return nil, err
	}

	rarity := domain.RarityTier("")
	if req.Rarity != "" {
		rarity = domain.NormalizeRarity(req.Rarity)
	}

	results := make([]Listing, 0, len(listings))
	for _, listing := range listings {
		card, ok := cards[listing.CardID]
		if !ok || card == nil {
			continue
		}
		if rarity != "" && card.Rarity != rarity {
			continue
		}
		if req.Discipline != "" && !strings.EqualFold(string(card.Discipline), req.Discipline) {
			continue
		}
		if req.EditionType != "" && !strings.EqualFold(string(card.EditionType), req.EditionType) {
			continue
		}
		results = append(results, Listing{Ownership: listing, Card: *card})
	}

	return results, nil
}

// fetchCards resolves the card definition for every distinct card in the
// listing page, fanning the lookups out over the worker pool
func (s *service) fetchCards(ctx context.Context, listings []schema.CardOwnership) (map[string]*schema.Card, error) {
	distinct := make(map[string]struct{}, len(listings))
	for _, l := range listings {
		distinct[l.CardID] = struct{}{}
	}

	tasks := make(map[string]pond.Result[*schema.Card], len(distinct))
	for cardID := range distinct {
		id := cardID
		tasks[id] = s.pool.SubmitErr(func() (*schema.Card, error) {
			return s.getCard(ctx, id)
		})
	}

	cards := make(map[string]*schema.Card, len(distinct))
	for cardID, task := range tasks {
		card, err := task.Wait()
		if err != nil {
			return nil, err
		}
		cards[cardID] = card
	}

	return cards, nil
}

func (s *service) getCard(ctx context.Context, cardID string) (*schema.Card, error) {
	if s.cache != nil {
		if card := s.cache.Get(ctx, cardID); card != nil {
			return card, nil
		}
	}
	card, err := s.store.GetCardByID(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if card != nil && s.cache != nil {
		s.cache.Set(ctx, card)
	}
	return card, nil
}

func (s *service) Purchase(ctx context.Context, req PurchaseRequest) (*schema.CardOwnership, error) {
	if strings.TrimSpace(req.OwnershipID) == "" {
		return nil, domain.NewValidationError("ownership_id", "ownership_id is required")
	}
	if strings.TrimSpace(req.BuyerID) == "" {
		return nil, domain.NewValidationError("buyer_id", "buyer_id is required")
	}
	if strings.TrimSpace(req.BuyerName) == "" {
		return nil, domain.NewValidationError("buyer_name", "buyer_name is required")
	}

	settle := func(txCtx context.Context, card *schema.Card, listing *schema.CardOwnership) error {
		return s.wallet.ProcessResale(txCtx, req.BuyerID, card, listing)
	}

	ownership, err := s.store.TransferOwnership(ctx, store.TransferInput{
		OwnershipID: req.OwnershipID,
		BuyerID:     req.BuyerID,
		BuyerName:   req.BuyerName,
	}, settle)
	if err != nil {
		return nil, err
	}

	// Sale stats on the card row changed
	if s.cache != nil {
		s.cache.Invalidate(ctx, ownership.CardID)
	}

	s.publishSold(ctx, ownership)

	return ownership, nil
}

func (s *service) publishSold(ctx context.Context, ownership *schema.CardOwnership) {
	if s.publisher == nil {
		return
	}
	event := &domain.CardEvent{
		EventID:       ulid.Make().String(),
		EventType:     domain.CardEventSold,
		CardID:        ownership.CardID,
		OwnershipID:   ownership.ID,
		ActorID:       ownership.OwnerID,
		EditionNumber: &ownership.EditionNumber,
		Price:         ownership.PurchasePrice,
		Timestamp:     s.clock.Now(),
	}
	if err := s.publisher.PublishEvent(ctx, event); err != nil {
		logger.WarnCtx(ctx, "Failed to publish sale event",
			zap.String("card_id", ownership.CardID),
			zap.String("ownership_id", ownership.ID),
			zap.Error(err))
	}
}

func (s *service) Close() {
	s.pool.StopAndWait()
}
