package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lumenshare/cardledger/internal/adapter"
	"github.com/lumenshare/cardledger/internal/domain"
	"github.com/lumenshare/cardledger/internal/store/schema"
)

type pgStore struct {
	db    *gorm.DB
	clock adapter.Clock
}

// NewPGStore creates a new PostgreSQL store instance
func NewPGStore(db *gorm.DB, clock adapter.Clock) Store {
	return &pgStore{db: db, clock: clock}
}

// Migrate creates or updates the database schema
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&schema.Card{},
		&schema.CardOwnership{},
		&schema.WalletAccount{},
		&schema.WalletTransaction{},
	)
}

// ConfigureConnectionPool configures the connection pool settings for a
// GORM database connection. Zero values fall back to defaults:
//   - MaxOpenConns: 20
//   - MaxIdleConns: 5
//   - ConnMaxLifetime: 5 minutes
//   - ConnMaxIdleTime: 10 minutes
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if maxOpenConns == 0 {
		maxOpenConns = 20
	}
	if maxIdleConns == 0 {
		maxIdleConns = 5
	}
	if connMaxLifetime == 0 {
		connMaxLifetime = 5 * time.Minute
	}
	if connMaxIdleTime == 0 {
		connMaxIdleTime = 10 * time.Minute
	}
	if maxIdleConns > maxOpenConns {
		maxIdleConns = maxOpenConns
	}

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

// CreateCard writes the card definition and its edition-0 creator copy
// in a single transaction; neither is visible unless both commit.
func (s *pgStore) CreateCard(ctx context.Context, input CreateCardInput) (*schema.Card, *schema.CardOwnership, error) {
	now := s.clock.Now()

	card := schema.Card{
		ID:          uuid.NewString(),
		CreatorID:   input.CreatorID,
		CreatorName: input.CreatorName,
		Title:       input.Title,
		Description: input.Description,
		FrontImage:  input.FrontImage,
		BackImage:   input.BackImage,
		ImagePosX:   input.ImagePosX,
		ImagePosY:   input.ImagePosY,
		Discipline:  input.Discipline,
		CardStyle:   input.CardStyle,
		CardLayout:  input.CardLayout,
		Rarity:      input.Rarity,
		EditionType: input.EditionType,
		EditionSize: input.EditionSize,
		MaxMints:    input.MaxMints,
		MintedCount: 0,
		BasePrice:   input.BasePrice,
		// Floor starts at the base price; listings only ever lower it
		StatsFloorPrice: input.BasePrice,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	creatorCopy := schema.CardOwnership{
		ID:            uuid.NewString(),
		CardID:        card.ID,
		OwnerID:       input.CreatorID,
		OwnerName:     input.CreatorName,
		EditionNumber: 0,
		IsCreatorCopy: true,
		AcquiredFrom:  domain.AcquisitionCreator,
		AcquiredAt:    now,
		PurchasePrice: 0,
		ForSale:       false,
		SalePrice:     0,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err := s.runInTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&card).Error; err != nil {
			return fmt.Errorf("failed to create card: %w", err)
		}
		if err := tx.Create(&creatorCopy).Error; err != nil {
			return fmt.Errorf("failed to create creator copy: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return &card, &creatorCopy, nil
}

// GetCardByID retrieves a card definition by its ID
func (s *pgStore) GetCardByID(ctx context.Context, cardID string) (*schema.Card, error) {
	var card schema.Card
	err := s.db.WithContext(ctx).Where("id = ?", cardID).First(&card).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get card: %w", err)
	}
	return &card, nil
}

// ListCardsByCreator retrieves all cards by a creator, newest first
func (s *pgStore) ListCardsByCreator(ctx context.Context, creatorID string) ([]schema.Card, error) {
	var cards []schema.Card
	err := s.db.WithContext(ctx).
		Where("creator_id = ?", creatorID).
		Order("created_at DESC").
		Find(&cards).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list cards by creator: %w", err)
	}
	return cards, nil
}

// GetOwnershipByID retrieves an ownership record by its ID
func (s *pgStore) GetOwnershipByID(ctx context.Context, ownershipID string) (*schema.CardOwnership, error) {
	var ownership schema.CardOwnership
	err := s.db.WithContext(ctx).Where("id = ?", ownershipID).First(&ownership).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get ownership: %w", err)
	}
	return &ownership, nil
}

// ListOwnershipsByOwner retrieves a user's copies joined with their card
// definitions, most recently acquired first. Non-transactional read.
func (s *pgStore) ListOwnershipsByOwner(ctx context.Context, ownerID string) ([]OwnedCardResult, error) {
	var ownerships []schema.CardOwnership
	err := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("acquired_at DESC").
		Find(&ownerships).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list ownerships: %w", err)
	}

	if len(ownerships) == 0 {
		return []OwnedCardResult{}, nil
	}

	cardIDs := make([]string, 0, len(ownerships))
	for _, o := range ownerships {
		cardIDs = append(cardIDs, o.CardID)
	}

	var cards []schema.Card
	if err := s.db.WithContext(ctx).Where("id IN ?", cardIDs).Find(&cards).Error; err != nil {
		return nil, fmt.Errorf("failed to get cards for ownerships: %w", err)
	}

	cardMap := make(map[string]*schema.Card, len(cards))
	for i := range cards {
		cardMap[cards[i].ID] = &cards[i]
	}

	results := make([]OwnedCardResult, 0, len(ownerships))
	for i := range ownerships {
		card, ok := cardMap[ownerships[i].CardID]
		if !ok {
			// Dangling reference; the store has no FK enforcement, so skip
			continue
		}
		results = append(results, OwnedCardResult{
			Card:      card,
			Ownership: &ownerships[i],
		})
	}

	return results, nil
}

// SetListing puts a copy up for sale. Creator copies and copies of
// unlimited-edition cards are never tradable. When the asking price
// undercuts the card's floor (or no floor is set), the floor follows it
// down within the same transaction.
func (s *pgStore) SetListing(ctx context.Context, ownershipID string, salePrice float64) (*schema.CardOwnership, error) {
	var ownership schema.CardOwnership

	err := s.runInTx(ctx, func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", ownershipID).
			First(&ownership).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrOwnershipNotFound
			}
			return fmt.Errorf("failed to lock ownership: %w", err)
		}

		if ownership.IsCreatorCopy {
			return domain.ErrCreatorCopyNotTradable
		}

		var card schema.Card
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", ownership.CardID).
			First(&card).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrCardNotFound
			}
			return fmt.Errorf("failed to lock card: %w", err)
		}

		if card.EditionType == domain.EditionTypeUnlimited {
			return domain.ErrUnlimitedNotTradable
		}

		now := s.clock.Now()
		ownership.ForSale = true
		ownership.SalePrice = salePrice
		ownership.ListedAt = &now
		ownership.UpdatedAt = now

		if err := tx.Save(&ownership).Error; err != nil {
			return fmt.Errorf("failed to update listing: %w", err)
		}

		// Floor only ever moves down; unlisting never restores it
		if card.StatsFloorPrice == 0 || salePrice < card.StatsFloorPrice {
			err := tx.Model(&schema.Card{}).
				Where("id = ?", card.ID).
				Updates(map[string]interface{}{
					"stats_floor_price": salePrice,
					"updated_at":        now,
				}).Error
			if err != nil {
				return fmt.Errorf("failed to update floor price: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &ownership, nil
}

// Unlist takes a copy off the market, clearing its listing state. The
// card's floor price is intentionally left untouched.
func (s *pgStore) Unlist(ctx context.Context, ownershipID string) (*schema.CardOwnership, error) {
	var ownership schema.CardOwnership

	err := s.runInTx(ctx, func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", ownershipID).
			First(&ownership).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrOwnershipNotFound
			}
			return fmt.Errorf("failed to lock ownership: %w", err)
		}

		ownership.ForSale = false
		ownership.SalePrice = 0
		ownership.ListedAt = nil
		ownership.UpdatedAt = s.clock.Now()

		if err := tx.Save(&ownership).Error; err != nil {
			return fmt.Errorf("failed to clear listing: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &ownership, nil
}

// MintEdition issues the next numbered edition of a card. The card row
// is locked and re-read inside the transaction, so two mints contending
// for the last slot serialize: the second sees the incremented counter
// and fails the capacity check. Payment settlement runs inside the same
// transaction; its failure leaves no visible state.
func (s *pgStore) MintEdition(ctx context.Context, input MintEditionInput, settle SettleMintFunc) (*schema.CardOwnership, error) {
	var ownership schema.CardOwnership

	err := s.runInTx(ctx, func(tx *gorm.DB) error {
		var card schema.Card
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", input.CardID).
			First(&card).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrCardNotFound
			}
			return fmt.Errorf("failed to lock card: %w", err)
		}

		now := s.clock.Now()

		switch card.EditionType {
		case domain.EditionTypeLimited:
			if card.EditionSize != nil && card.MintedCount >= *card.EditionSize {
				return domain.ErrEditionExhausted
			}
		case domain.EditionTypeTimed:
			if card.ExpiresAt != nil && now.After(*card.ExpiresAt) {
				return domain.ErrEditionExpired
			}
			if card.MaxMints != nil && card.MintedCount >= *card.MaxMints {
				return domain.ErrEditionExhausted
			}
		}

		// Edition number derives from the locked row, never from a
		// pre-transaction snapshot
		editionNumber := card.MintedCount + 1

		if settle != nil {
			if err := settle(WithTx(ctx, tx), &card, editionNumber); err != nil {
				return err
			}
		}

		err = tx.Model(&schema.Card{}).
			Where("id = ?", card.ID).
			Updates(map[string]interface{}{
				"minted_count":          gorm.Expr("minted_count + 1"),
				"stats_total_minted":    gorm.Expr("stats_total_minted + 1"),
				"stats_total_owners":    gorm.Expr("stats_total_owners + 1"),
				"stats_last_sale_price": card.BasePrice,
				"updated_at":            now,
			}).Error
		if err != nil {
			return fmt.Errorf("failed to update mint counters: %w", err)
		}

		ownership = schema.CardOwnership{
			ID:            uuid.NewString(),
			CardID:        card.ID,
			OwnerID:       input.BuyerID,
			OwnerName:     input.BuyerName,
			EditionNumber: editionNumber,
			IsCreatorCopy: false,
			AcquiredFrom:  domain.AcquisitionPrimary,
			AcquiredAt:    now,
			PurchasePrice: card.BasePrice,
			ForSale:       false,
			SalePrice:     0,
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		if err := tx.Create(&ownership).Error; err != nil {
			return fmt.Errorf("failed to create ownership record: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &ownership, nil
}

// TransferOwnership moves a listed copy to its buyer. The listing row is
// locked and re-read inside the transaction, so of two concurrent buyers
// exactly one observes for_sale=true; the loser gets domain.ErrNotForSale
// before any payment call is made. The row is mutated in place to
// preserve the edition number.
func (s *pgStore) TransferOwnership(ctx context.Context, input TransferInput, settle SettleResaleFunc) (*schema.CardOwnership, error) {
	var ownership schema.CardOwnership

	err := s.runInTx(ctx, func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", input.OwnershipID).
			First(&ownership).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrOwnershipNotFound
			}
			return fmt.Errorf("failed to lock ownership: %w", err)
		}

		if !ownership.ForSale {
			return domain.ErrNotForSale
		}

		var card schema.Card
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", ownership.CardID).
			First(&card).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrCardNotFound
			}
			return fmt.Errorf("failed to lock card: %w", err)
		}

		if settle != nil {
			if err := settle(WithTx(ctx, tx), &card, &ownership); err != nil {
				return err
			}
		}

		now := s.clock.Now()
		salePrice := ownership.SalePrice

		ownership.OwnerID = input.BuyerID
		ownership.OwnerName = input.BuyerName
		ownership.AcquiredFrom = domain.AcquisitionResale
		ownership.AcquiredAt = now
		ownership.PurchasePrice = salePrice
		ownership.ForSale = false
		ownership.SalePrice = 0
		ownership.ListedAt = nil
		ownership.UpdatedAt = now

		if err := tx.Save(&ownership).Error; err != nil {
			return fmt.Errorf("failed to transfer ownership: %w", err)
		}

		err = tx.Model(&schema.Card{}).
			Where("id = ?", card.ID).
			Updates(map[string]interface{}{
				"stats_last_sale_price": salePrice,
				"updated_at":            now,
			}).Error
		if err != nil {
			return fmt.Errorf("failed to update sale stats: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &ownership, nil
}

// ListListings retrieves for-sale records matching the filter.
// Non-transactional read for the discovery path.
func (s *pgStore) ListListings(ctx context.Context, filter ListingFilter) ([]schema.CardOwnership, error) {
	query := s.db.WithContext(ctx).
		Model(&schema.CardOwnership{}).
		Where("for_sale = ?", true)

	if filter.MinPrice != nil {
		query = query.Where("sale_price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("sale_price <= ?", *filter.MaxPrice)
	}

	switch filter.Sort {
	case ListingSortPriceAsc:
		query = query.Order("sale_price ASC")
	case ListingSortPriceDesc:
		query = query.Order("sale_price DESC")
	default:
		query = query.Order("listed_at DESC NULLS LAST")
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	query = query.Limit(limit)

	var listings []schema.CardOwnership
	if err := query.Find(&listings).Error; err != nil {
		return nil, fmt.Errorf("failed to list listings: %w", err)
	}

	return listings, nil
}
