package store

import (
	"context"

	"github.com/lumenshare/cardledger/internal/domain"
	"github.com/lumenshare/cardledger/internal/store/schema"
)

// CreateCardInput holds the validated fields for a new card definition
type CreateCardInput struct {
	CreatorID   string
	CreatorName string
	Title       string
	Description string
	FrontImage  string
	BackImage   *string
	ImagePosX   int
	ImagePosY   int
	Discipline  domain.Discipline
	CardStyle   domain.CardStyle
	CardLayout  domain.CardLayout
	Rarity      domain.RarityTier
	EditionType domain.EditionType
	EditionSize *int
	MaxMints    *int
	BasePrice   float64
}

// MintEditionInput identifies the card and buyer for a primary mint
type MintEditionInput struct {
	CardID    string
	BuyerID   string
	BuyerName string
}

// TransferInput identifies the listing and buyer for a resale
type TransferInput struct {
	OwnershipID string
	BuyerID     string
	BuyerName   string
}

// ListingSort orders marketplace listing queries
type ListingSort string

const (
	ListingSortNewest    ListingSort = "newest"
	ListingSortPriceAsc  ListingSort = "price_asc"
	ListingSortPriceDesc ListingSort = "price_desc"
)

// ListingFilter narrows marketplace listing queries. Only predicates the
// store can evaluate natively appear here; rarity, discipline and
// edition-type filters are applied by the exchange after the card
// definitions are fetched.
type ListingFilter struct {
	MinPrice *float64
	MaxPrice *float64
	Sort     ListingSort
	Limit    int
}

// OwnedCardResult pairs an ownership record with its card definition
type OwnedCardResult struct {
	Card      *schema.Card
	Ownership *schema.CardOwnership
}

// SettleMintFunc settles payment for a primary mint. It runs inside the
// mint transaction; the context carries the transaction handle so
// collaborators writing to the same database commit or roll back with
// the ledger mutation. Returning an error aborts the mint.
type SettleMintFunc func(ctx context.Context, card *schema.Card, editionNumber int) error

// SettleResaleFunc settles payment for a marketplace resale. Same
// transactional contract as SettleMintFunc.
type SettleResaleFunc func(ctx context.Context, card *schema.Card, listing *schema.CardOwnership) error

// Store defines the interface for database operations
type Store interface {
	// CreateCard writes a card definition and its edition-0 creator copy
	// as one atomic unit
	CreateCard(ctx context.Context, input CreateCardInput) (*schema.Card, *schema.CardOwnership, error)
	// GetCardByID retrieves a card definition, or nil when absent
	GetCardByID(ctx context.Context, cardID string) (*schema.Card, error)
	// ListCardsByCreator retrieves a creator's cards, newest first
	ListCardsByCreator(ctx context.Context, creatorID string) ([]schema.Card, error)
	// GetOwnershipByID retrieves an ownership record, or nil when absent
	GetOwnershipByID(ctx context.Context, ownershipID string) (*schema.CardOwnership, error)
	// ListOwnershipsByOwner retrieves a user's copies joined with their
	// card definitions, most recently acquired first
	ListOwnershipsByOwner(ctx context.Context, ownerID string) ([]OwnedCardResult, error)
	// SetListing puts a copy up for sale and lowers the card's floor
	// price when undercut, atomically
	SetListing(ctx context.Context, ownershipID string, salePrice float64) (*schema.CardOwnership, error)
	// Unlist takes a copy off the market. The floor price is never
	// recomputed upward.
	Unlist(ctx context.Context, ownershipID string) (*schema.CardOwnership, error)
	// MintEdition issues the next numbered edition of a card inside one
	// retried transaction: capacity re-check, payment settlement, counter
	// increments and the new ownership row commit together or not at all
	MintEdition(ctx context.Context, input MintEditionInput, settle SettleMintFunc) (*schema.CardOwnership, error)
	// TransferOwnership moves a listed copy to the buyer inside one
	// retried transaction, failing with domain.ErrNotForSale when the
	// listing is gone
	TransferOwnership(ctx context.Context, input TransferInput, settle SettleResaleFunc) (*schema.CardOwnership, error)
	// ListListings retrieves for-sale records matching the filter
	ListListings(ctx context.Context, filter ListingFilter) ([]schema.CardOwnership, error)
}
