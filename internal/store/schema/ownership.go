package schema

import (
	"time"

	"github.com/lumenshare/cardledger/internal/domain"
)

// CardOwnership represents the card_ownerships table - one row per
// numbered copy of a card. Edition 0 is the permanent creator copy;
// resale mutates the row in place so the edition number and provenance
// survive transfers. The card reference is validated by the store, not
// by a foreign key constraint.
type CardOwnership struct {
	// ID is the ownership record identifier (UUID)
	ID string `gorm:"column:id;primaryKey;type:text"`
	// CardID references the card definition
	CardID string `gorm:"column:card_id;not null;type:text;uniqueIndex:idx_ownerships_card_edition,priority:1"`
	// OwnerID is the current owner
	OwnerID string `gorm:"column:owner_id;not null;type:text;index:idx_ownerships_owner_acquired,priority:1"`
	// OwnerName is the current owner's display name
	OwnerName string `gorm:"column:owner_name;not null;type:text"`
	// EditionNumber is 0 for the creator copy, 1..N in primary mint order
	EditionNumber int `gorm:"column:edition_number;not null;uniqueIndex:idx_ownerships_card_edition,priority:2"`
	// IsCreatorCopy marks the permanent, non-transferable edition 0
	IsCreatorCopy bool `gorm:"column:is_creator_copy;not null;default:false"`
	// AcquiredFrom records how this copy was obtained (creator, primary, resale)
	AcquiredFrom domain.AcquisitionSource `gorm:"column:acquired_from;not null;type:text"`
	// AcquiredAt is when the current owner obtained the copy
	AcquiredAt time.Time `gorm:"column:acquired_at;not null;default:now();type:timestamptz;index:idx_ownerships_owner_acquired,priority:2,sort:desc"`
	// PurchasePrice is what the current owner paid in platform credits
	PurchasePrice float64 `gorm:"column:purchase_price;not null;default:0"`
	// ForSale marks a live marketplace listing
	ForSale bool `gorm:"column:for_sale;not null;default:false;index:idx_ownerships_for_sale_price,priority:1"`
	// SalePrice is the asking price; positive iff ForSale
	SalePrice float64 `gorm:"column:sale_price;not null;default:0;index:idx_ownerships_for_sale_price,priority:2"`
	// ListedAt is when the listing went live (nil when not listed)
	ListedAt *time.Time `gorm:"column:listed_at;type:timestamptz"`

	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the CardOwnership model
func (CardOwnership) TableName() string {
	return "card_ownerships"
}
