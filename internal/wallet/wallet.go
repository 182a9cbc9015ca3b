package wallet

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lumenshare/cardledger/internal/adapter"
	"github.com/lumenshare/cardledger/internal/domain"
	"github.com/lumenshare/cardledger/internal/store"
	"github.com/lumenshare/cardledger/internal/store/schema"
)

// Revenue split applied to marketplace resales. Primary sales are not
// split; the creator keeps the full base price.
const (
	PlatformFeeRate    = 0.10
	CreatorRoyaltyRate = 0.05
)

// Balance is a user's wallet snapshot with its recent ledger entries
type Balance struct {
	UserID           string                     `json:"user_id"`
	Balance          float64                    `json:"balance"`
	LifetimeEarnings float64                    `json:"lifetime_earnings"`
	Transactions     []schema.WalletTransaction `json:"transactions"`
}

// Service settles payments for mints and resales and answers balance
// queries. Settlement methods run inside a ledger transaction when the
// context carries one, so a failed credit aborts the whole operation.
type Service interface {
	// ProcessPrimaryPurchase credits the creator with the full base
	// price of a freshly minted edition
	ProcessPrimaryPurchase(ctx context.Context, buyerID string, card *schema.Card, editionNumber int) error
	// ProcessResale splits the listing price between platform fee,
	// creator royalty and seller proceeds. The royalty credit is
	// skipped when the seller is the creator; the share is retained
	// like the platform fee.
	ProcessResale(ctx context.Context, buyerID string, card *schema.Card, listing *schema.CardOwnership) error
	// GetWalletBalance returns the user's balance and recent ledger
	// entries, zero-valued when the account has never been credited
	GetWalletBalance(ctx context.Context, userID string) (*Balance, error)
}

type ledgerWallet struct {
	db    *gorm.DB
	clock adapter.Clock
}

// NewService creates a wallet service backed by the given database
func NewService(db *gorm.DB, clock adapter.Clock) Service {
	return &ledgerWallet{db: db, clock: clock}
}

func (w *ledgerWallet) ProcessPrimaryPurchase(ctx context.Context, buyerID string, card *schema.Card, editionNumber int) error {
	if card.BasePrice <= 0 {
		return nil
	}

	tx := store.DBFromContext(ctx, w.db)
	description := fmt.Sprintf("Primary sale: %s #%d", card.Title, editionNumber)

	if err := w.credit(ctx, tx, card.CreatorID, card.BasePrice, schema.WalletTransactionSale, description, card.ID); err != nil {
		return domain.NewPaymentError("failed to credit creator", err)
	}

	return nil
}

func (w *ledgerWallet) ProcessResale(ctx context.Context, buyerID string, card *schema.Card, listing *schema.CardOwnership) error {
	price := listing.SalePrice
	if price <= 0 {
		return domain.NewPaymentError("listing has no sale price", nil)
	}

	tx := store.DBFromContext(ctx, w.db)

	split := SplitResale(price, listing.OwnerID == card.CreatorID)

	description := fmt.Sprintf("Sale: %s #%d", card.Title, listing.EditionNumber)
	if err := w.credit(ctx, tx, listing.OwnerID, split.SellerProceeds, schema.WalletTransactionSale, description, card.ID); err != nil {
		return domain.NewPaymentError("failed to credit seller", err)
	}

	if split.Royalty > 0 {
		description := fmt.Sprintf("Royalty: %s #%d", card.Title, listing.EditionNumber)
		if err := w.credit(ctx, tx, card.CreatorID, split.Royalty, schema.WalletTransactionRoyalty, description, card.ID); err != nil {
			return domain.NewPaymentError("failed to credit creator royalty", err)
		}
	}

	return nil
}

// ResaleSplit is the breakdown of a resale price. Royalty is the
// amount credited to the creator; the platform fee, and the royalty
// share when the seller is the creator, are retained rather than
// credited to any account.
type ResaleSplit struct {
	PlatformFee    float64
	Royalty        float64
	SellerProceeds float64
}

// SplitResale computes the revenue split for a resale. The royalty
// share is always deducted from the seller proceeds; sellerIsCreator
// only controls whether it is credited back.
func SplitResale(price float64, sellerIsCreator bool) ResaleSplit {
	royalty := price * CreatorRoyaltyRate
	split := ResaleSplit{
		PlatformFee:    price * PlatformFeeRate,
		SellerProceeds: price - price*PlatformFeeRate - royalty,
	}
	if !sellerIsCreator {
		split.Royalty = royalty
	}
	return split
}

// credit upserts the account balance and appends the ledger entry in the
// caller's transaction
func (w *ledgerWallet) credit(ctx context.Context, tx *gorm.DB, userID string, amount float64, txType schema.WalletTransactionType, description, cardID string) error {
	now := w.clock.Now()

	account := schema.WalletAccount{
		UserID:           userID,
		Balance:          amount,
		LifetimeEarnings: amount,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	err := tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"balance":           gorm.Expr("wallet_accounts.balance + ?", amount),
			"lifetime_earnings": gorm.Expr("wallet_accounts.lifetime_earnings + ?", amount),
			"updated_at":        now,
		}),
	}).Create(&account).Error
	if err != nil {
		return fmt.Errorf("failed to upsert wallet account: %w", err)
	}

	itemType := "card"
	entry := schema.WalletTransaction{
		ID:              uuid.NewString(),
		UserID:          userID,
		Amount:          amount,
		Type:            txType,
		Description:     description,
		RelatedItemID:   &cardID,
		RelatedItemType: &itemType,
		CreatedAt:       now,
	}
	if err := tx.WithContext(ctx).Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to append wallet transaction: %w", err)
	}

	return nil
}

func (w *ledgerWallet) GetWalletBalance(ctx context.Context, userID string) (*Balance, error) {
	var account schema.WalletAccount
	err := w.db.WithContext(ctx).Where("user_id = ?", userID).First(&account).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to get wallet account: %w", err)
		}
		account = schema.WalletAccount{UserID: userID}
	}

	var transactions []schema.WalletTransaction
	err = w.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(50).
		Find(&transactions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list wallet transactions: %w", err)
	}

	return &Balance{
		UserID:           userID,
		Balance:          account.Balance,
		LifetimeEarnings: account.LifetimeEarnings,
		Transactions:     transactions,
	}, nil
}
