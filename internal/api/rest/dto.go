package rest

import (
	"time"

	"github.com/lumenshare/cardledger/internal/domain"
	"github.com/lumenshare/cardledger/internal/store"
	"github.com/lumenshare/cardledger/internal/store/schema"
	"github.com/lumenshare/cardledger/internal/wallet"
)

// CreateCardRequest is the request body for POST /api/v1/cards
type CreateCardRequest struct {
	CreatorID   string   `json:"creator_id"`
	CreatorName string   `json:"creator_name"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	FrontImage  string   `json:"front_image"`
	BackImage   *string  `json:"back_image"`
	ImagePosX   *int     `json:"image_pos_x"`
	ImagePosY   *int     `json:"image_pos_y"`
	Discipline  string   `json:"discipline"`
	CardStyle   string   `json:"card_style"`
	CardLayout  string   `json:"card_layout"`
	Rarity      string   `json:"rarity"`
	EditionType string   `json:"edition_type"`
	EditionSize *int     `json:"edition_size"`
	MaxMints    *int     `json:"max_mints"`
	BasePrice   float64  `json:"base_price"`
}

// MintRequest is the request body for POST /api/v1/cards/:id/mint
type MintRequest struct {
	BuyerID   string `json:"buyer_id"`
	BuyerName string `json:"buyer_name"`
}

// ListingRequest is the request body for PUT /api/v1/ownerships/:id/listing
type ListingRequest struct {
	SalePrice float64 `json:"sale_price"`
}

// PurchaseRequest is the request body for POST /api/v1/ownerships/:id/purchase
type PurchaseRequest struct {
	BuyerID   string `json:"buyer_id"`
	BuyerName string `json:"buyer_name"`
}

// RarityInfoDTO carries tier presentation metadata
type RarityInfoDTO struct {
	Name        string `json:"name"`
	CSSClass    string `json:"css_class"`
	Color       string `json:"color"`
	ColorHex    string `json:"color_hex"`
	Weight      int    `json:"weight"`
	Border      string `json:"border"`
	Glow        bool   `json:"glow"`
	Animated    bool   `json:"animated"`
	Holographic bool   `json:"holographic"`
	Iridescent  bool   `json:"iridescent"`
}

// CardStatsDTO carries aggregate card statistics
type CardStatsDTO struct {
	TotalMinted   int     `json:"total_minted"`
	TotalOwners   int     `json:"total_owners"`
	FloorPrice    float64 `json:"floor_price"`
	LastSalePrice float64 `json:"last_sale_price"`
}

// CardDTO is the public representation of a card definition
type CardDTO struct {
	ID          string        `json:"id"`
	CreatorID   string        `json:"creator_id"`
	CreatorName string        `json:"creator_name"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	FrontImage  string        `json:"front_image"`
	BackImage   *string       `json:"back_image,omitempty"`
	ImagePosX   int           `json:"image_pos_x"`
	ImagePosY   int           `json:"image_pos_y"`
	Discipline  string        `json:"discipline,omitempty"`
	CardStyle   string        `json:"card_style,omitempty"`
	CardLayout  string        `json:"card_layout,omitempty"`
	Rarity      string        `json:"rarity"`
	RarityInfo  RarityInfoDTO `json:"rarity_info"`
	EditionType string        `json:"edition_type"`
	EditionSize *int          `json:"edition_size,omitempty"`
	MaxMints    *int          `json:"max_mints,omitempty"`
	ExpiresAt   *time.Time    `json:"expires_at,omitempty"`
	MintedCount int           `json:"minted_count"`
	BasePrice   float64       `json:"base_price"`
	Stats       CardStatsDTO  `json:"stats"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// OwnershipDTO is the public representation of an ownership record
type OwnershipDTO struct {
	ID            string     `json:"id"`
	CardID        string     `json:"card_id"`
	OwnerID       string     `json:"owner_id"`
	OwnerName     string     `json:"owner_name"`
	EditionNumber int        `json:"edition_number"`
	IsCreatorCopy bool       `json:"is_creator_copy"`
	AcquiredFrom  string     `json:"acquired_from"`
	AcquiredAt    time.Time  `json:"acquired_at"`
	PurchasePrice float64    `json:"purchase_price"`
	ForSale       bool       `json:"for_sale"`
	SalePrice     float64    `json:"sale_price,omitempty"`
	ListedAt      *time.Time `json:"listed_at,omitempty"`
}

// OwnedCardDTO pairs an owned copy with its card definition
type OwnedCardDTO struct {
	Ownership OwnershipDTO `json:"ownership"`
	Card      CardDTO      `json:"card"`
}

// ListingDTO is a marketplace listing with its card definition
type ListingDTO struct {
	Ownership OwnershipDTO `json:"ownership"`
	Card      CardDTO      `json:"card"`
}

// WalletTransactionDTO is a single wallet ledger entry
type WalletTransactionDTO struct {
	ID              string    `json:"id"`
	Amount          float64   `json:"amount"`
	Type            string    `json:"type"`
	Description     string    `json:"description"`
	RelatedItemID   *string   `json:"related_item_id,omitempty"`
	RelatedItemType *string   `json:"related_item_type,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// WalletDTO is a user's wallet snapshot
type WalletDTO struct {
	UserID           string                 `json:"user_id"`
	Balance          float64                `json:"balance"`
	LifetimeEarnings float64                `json:"lifetime_earnings"`
	Transactions     []WalletTransactionDTO `json:"transactions"`
}

func toRarityInfoDTO(tier domain.RarityTier) RarityInfoDTO {
	info := domain.TierInfo(tier)
	return RarityInfoDTO{
		Name:        string(tier),
		CSSClass:    info.CSSClass,
		Color:       info.Color,
		ColorHex:    info.ColorHex,
		Weight:      info.Weight,
		Border:      info.Border,
		Glow:        info.Glow,
		Animated:    info.Animated,
		Holographic: info.Holographic,
		Iridescent:  info.Iridescent,
	}
}

func toCardDTO(card *schema.Card) CardDTO {
	return CardDTO{
		ID:          card.ID,
		CreatorID:   card.CreatorID,
		CreatorName: card.CreatorName,
		Title:       card.Title,
		Description: card.Description,
		FrontImage:  card.FrontImage,
		BackImage:   card.BackImage,
		ImagePosX:   card.ImagePosX,
		ImagePosY:   card.ImagePosY,
		Discipline:  string(card.Discipline),
		CardStyle:   string(card.CardStyle),
		CardLayout:  string(card.CardLayout),
		Rarity:      string(card.Rarity),
		RarityInfo:  toRarityInfoDTO(card.Rarity),
		EditionType: string(card.EditionType),
		EditionSize: card.EditionSize,
		MaxMints:    card.MaxMints,
		ExpiresAt:   card.ExpiresAt,
		MintedCount: card.MintedCount,
		BasePrice:   card.BasePrice,
		Stats: CardStatsDTO{
			TotalMinted:   card.StatsTotalMinted,
			TotalOwners:   card.StatsTotalOwners,
			FloorPrice:    card.StatsFloorPrice,
			LastSalePrice: card.StatsLastSalePrice,
		},
		CreatedAt: card.CreatedAt,
		UpdatedAt: card.UpdatedAt,
	}
}

func toOwnershipDTO(o *schema.CardOwnership) OwnershipDTO {
	return OwnershipDTO{
		ID:            o.ID,
		CardID:        o.CardID,
		OwnerID:       o.OwnerID,
		OwnerName:     o.OwnerName,
		EditionNumber: o.EditionNumber,
		IsCreatorCopy: o.IsCreatorCopy,
		AcquiredFrom:  string(o.AcquiredFrom),
		AcquiredAt:    o.AcquiredAt,
		PurchasePrice: o.PurchasePrice,
		ForSale:       o.ForSale,
		SalePrice:     o.SalePrice,
		ListedAt:      o.ListedAt,
	}
}

func toOwnedCardDTOs(results []store.OwnedCardResult) []OwnedCardDTO {
	dtos := make([]OwnedCardDTO, 0, len(results))
	for _, r := range results {
		dtos = append(dtos, OwnedCardDTO{
			Ownership: toOwnershipDTO(r.Ownership),
			Card:      toCardDTO(r.Card),
		})
	}
	return dtos
}

func toWalletDTO(b *wallet.Balance) WalletDTO {
	transactions := make([]WalletTransactionDTO, 0, len(b.Transactions))
	for _, tx := range b.Transactions {
		transactions = append(transactions, WalletTransactionDTO{
			ID:              tx.ID,
			Amount:          tx.Amount,
			Type:            string(tx.Type),
			Description:     tx.Description,
			RelatedItemID:   tx.RelatedItemID,
			RelatedItemType: tx.RelatedItemType,
			CreatedAt:       tx.CreatedAt,
		})
	}
	return WalletDTO{
		UserID:           b.UserID,
		Balance:          b.Balance,
		LifetimeEarnings: b.LifetimeEarnings,
		Transactions:     transactions,
	}
}
