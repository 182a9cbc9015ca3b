package schema

import (
	"time"

	"github.com/lumenshare/cardledger/internal/domain"
)

// Card represents the cards table - the definition of a collectible card.
// Cards are created once and never deleted; after creation only the mint
// counter and aggregate stats mutate.
type Card struct {
	// ID is the card identifier (UUID)
	ID string `gorm:"column:id;primaryKey;type:text"`
	// CreatorID is the user who created the card
	CreatorID string `gorm:"column:creator_id;not null;type:text;index:idx_cards_creator_created,priority:1"`
	// CreatorName is the creator's display name at creation time
	CreatorName string `gorm:"column:creator_name;not null;type:text"`
	// Title is the card title
	Title string `gorm:"column:title;not null;type:text"`
	// Description is the optional card description
	Description string `gorm:"column:description;not null;default:'';type:text"`
	// FrontImage is the front artwork reference
	FrontImage string `gorm:"column:front_image;not null;type:text"`
	// BackImage is the optional back artwork reference
	BackImage *string `gorm:"column:back_image;type:text"`
	// ImagePosX / ImagePosY is the crop focal point in percent
	ImagePosX int `gorm:"column:image_pos_x;not null;default:50"`
	ImagePosY int `gorm:"column:image_pos_y;not null;default:50"`
	// Discipline is the subject category (closed set, defaults to other)
	Discipline domain.Discipline `gorm:"column:discipline;not null;type:text"`
	// CardStyle is the visual template (closed set, defaults to classic)
	CardStyle domain.CardStyle `gorm:"column:card_style;not null;type:text"`
	// CardLayout is fullbleed or bordered
	CardLayout domain.CardLayout `gorm:"column:card_layout;not null;type:text"`
	// Rarity is the normalized rarity tier
	Rarity domain.RarityTier `gorm:"column:rarity;not null;type:text"`
	// EditionType is the issuance policy
	EditionType domain.EditionType `gorm:"column:edition_type;not null;type:text"`
	// EditionSize is the mint cap for limited editions (nil otherwise)
	EditionSize *int `gorm:"column:edition_size"`
	// MaxMints is the mint cap for timed editions (nil otherwise)
	MaxMints *int `gorm:"column:max_mints"`
	// ExpiresAt is the timed edition deadline. Left unset at creation;
	// populated later by edition scheduling, if ever.
	ExpiresAt *time.Time `gorm:"column:expires_at;type:timestamptz"`
	// MintedCount is the number of numbered editions issued so far.
	// Monotonic; mutated only inside the mint transaction.
	MintedCount int `gorm:"column:minted_count;not null;default:0"`
	// BasePrice is the primary sale price in platform credits
	BasePrice float64 `gorm:"column:base_price;not null;default:0"`

	// Aggregate stats, embedded as flat columns
	StatsTotalMinted   int     `gorm:"column:stats_total_minted;not null;default:0"`
	StatsTotalOwners   int     `gorm:"column:stats_total_owners;not null;default:0"`
	StatsFloorPrice    float64 `gorm:"column:stats_floor_price;not null;default:0"`
	StatsLastSalePrice float64 `gorm:"column:stats_last_sale_price;not null;default:0"`

	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz;index:idx_cards_creator_created,priority:2,sort:desc"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`

	// Associations
	Ownerships []CardOwnership `gorm:"foreignKey:CardID;references:ID"`
}

// TableName specifies the table name for the Card model
func (Card) TableName() string {
	return "cards"
}

// Cap returns the effective mint cap for the card's policy, or nil when
// issuance is uncapped.
func (c *Card) Cap() *int {
	switch c.EditionType {
	case domain.EditionTypeLimited:
		return c.EditionSize
	case domain.EditionTypeTimed:
		return c.MaxMints
	}
	return nil
}
