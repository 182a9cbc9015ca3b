package catalog

import (
	"context"
	"fmt"
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

// DefaultTimedMaxMints caps a timed edition when the creator does not
// set an explicit limit
const DefaultTimedMaxMints = 1000

// CreateCardRequest carries the creator's card definition before
// validation and normalization
type CreateCardRequest struct {
	CreatorID   string
	CreatorName string
	Title       string
	Description string
	FrontImage  string
	BackImage   *string
	ImagePosX   *int
	ImagePosY   *int
	Discipline  string
	CardStyle   string
	CardLayout  string
	Rarity      string
	EditionType string
	EditionSize *int
	MaxMints    *int
	BasePrice   float64
}

// Service manages card definitions
type Service interface {
	// CreateCard validates and stores a new card definition together
	// with its edition-0 creator copy
	CreateCard(ctx context.Context, req CreateCardRequest) (*schema.Card, *schema.CardOwnership, error)
	// GetCard retrieves a card definition, nil when absent
	GetCard(ctx context.Context, cardID string) (*schema.Card, error)
	// ListByCreator retrieves a creator's cards, newest first
	ListByCreator(ctx context.Context, creatorID string) ([]schema.Card, error)
}

type service struct {
	store     store.Store
	cache     *cache.CardCache
	publisher messaging.Publisher
	clock     adapter.Clock
}

// NewService creates a catalog service
func NewService(s store.Store, c *cache.CardCache, pub messaging.Publisher, clock adapter.Clock) Service {
	return &service{store: s, cache: c, publisher: pub, clock: clock}
}

func (s *service) CreateCard(ctx context.Context, req CreateCardRequest) (*schema.Card, *schema.CardOwnership, error) {
	input, err := s.validate(req)
	if err != nil {
		return nil, nil, err
	}

	card, creatorCopy, err := s.store.CreateCard(ctx, *input)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create card: %w", err)
	}

	s.publish(ctx, &domain.CardEvent{
		EventID:   ulid.Make().String(),
		EventType: domain.CardEventCreated,
		CardID:    card.ID,
		ActorID:   card.CreatorID,
		Timestamp: s.clock.Now(),
	})

	return card, creatorCopy, nil
}

// validate normalizes the request into a store input. All failures are
// domain.ValidationError so the API layer maps them to 422.
func (s *service) validate(req CreateCardRequest) (*store.CreateCardInput, error) {
	if strings.TrimSpace(req.CreatorID) == "" {
		return nil, domain.NewValidationError("creator_id", "creator_id is required")
	}
	if strings.TrimSpace(req.CreatorName) == "" {
		return nil, domain.NewValidationError("creator_name", "creator_name is required")
	}
	if strings.TrimSpace(req.Title) == "" {
		return nil, domain.NewValidationError("title", "title is required")
	}
	if strings.TrimSpace(req.FrontImage) == "" {
		return nil, domain.NewValidationError("front_image", "front_image is required")
	}
	if req.BasePrice < 0 {
		return nil, domain.NewValidationError("base_price", "base_price must not be negative")
	}
	if strings.TrimSpace(req.Rarity) == "" {
		return nil, domain.NewValidationError("rarity", "rarity is required")
	}

	editionType := domain.EditionType(req.EditionType)
	if !domain.IsValidEditionType(editionType) {
		return nil, domain.NewValidationError("edition_type", fmt.Sprintf("unknown edition type %q", req.EditionType))
	}

	input := store.CreateCardInput{
		CreatorID:   strings.TrimSpace(req.CreatorID),
		CreatorName: strings.TrimSpace(req.CreatorName),
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		FrontImage:  req.FrontImage,
		BackImage:   req.BackImage,
		ImagePosX:   50,
		ImagePosY:   50,
		Discipline:  domain.Discipline(req.Discipline),
		CardStyle:   domain.CardStyle(req.CardStyle),
		CardLayout:  domain.CardLayout(req.CardLayout),
		Rarity:      domain.NormalizeRarity(req.Rarity),
		EditionType: editionType,
		BasePrice:   req.BasePrice,
	}
	if req.ImagePosX != nil {
		input.ImagePosX = *req.ImagePosX
	}
	if req.ImagePosY != nil {
		input.ImagePosY = *req.ImagePosY
	}

	switch editionType {
	case domain.EditionTypeLimited:
		// An absent or non-positive size caps the edition at zero, so
		// only the creator copy ever exists
		size := 0
		if req.EditionSize != nil && *req.EditionSize > 0 {
			size = *req.EditionSize
		}
		input.EditionSize = &size
	case domain.EditionTypeTimed:
		maxMints := DefaultTimedMaxMints
		if req.MaxMints != nil {
			if *req.MaxMints <= 0 {
				return nil, domain.NewValidationError("max_mints", "max_mints must be positive")
			}
			maxMints = *req.MaxMints
		}
		input.MaxMints = &maxMints
	}

	return &input, nil
}

func (s *service) GetCard(ctx context.Context, cardID string) (*schema.Card, error) {
	if s.cache != nil {
		if card := s.cache.Get(ctx, cardID); card != nil {
			return card, nil
		}
	}

	card, err := s.store.GetCardByID(ctx, cardID)
	if err != nil {
		return nil, fmt.Errorf("failed to get card: %w", err)
	}
	if card == nil {
		return nil, nil
	}

	if s.cache != nil {
		s.cache.Set(ctx, card)
	}

	return card, nil
}

func (s *service) ListByCreator(ctx context.Context, creatorID string) ([]schema.Card, error) {
	if strings.TrimSpace(creatorID) == "" {
		return nil, domain.NewValidationError("creator_id", "creator_id is required")
	}
	return s.store.ListCardsByCreator(ctx, creatorID)
}

// publish fires an event without letting broker trouble fail the
// operation that already committed
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
