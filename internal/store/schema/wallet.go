package schema

import "time"

// WalletTransactionType categorizes wallet ledger entries
type WalletTransactionType string

const (
	// WalletTransactionSale credits proceeds from a primary or secondary sale
	WalletTransactionSale WalletTransactionType = "sale"
	// WalletTransactionRoyalty credits a creator's resale royalty
	WalletTransactionRoyalty WalletTransactionType = "royalty"
)

// WalletAccount represents the wallet_accounts table - per-user earnings
// balance. The ledger only ever credits accounts; spending is settled
// outside this subsystem.
type WalletAccount struct {
	UserID           string    `gorm:"column:user_id;primaryKey;type:text"`
	Balance          float64   `gorm:"column:balance;not null;default:0"`
	LifetimeEarnings float64   `gorm:"column:lifetime_earnings;not null;default:0"`
	CreatedAt        time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	UpdatedAt        time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the WalletAccount model
func (WalletAccount) TableName() string {
	return "wallet_accounts"
}

// WalletTransaction represents the wallet_transactions table - the
// append-only log behind every wallet credit.
type WalletTransaction struct {
	ID              string                `gorm:"column:id;primaryKey;type:text"`
	UserID          string                `gorm:"column:user_id;not null;type:text;index:idx_wallet_tx_user_created,priority:1"`
	Amount          float64               `gorm:"column:amount;not null"`
	Type            WalletTransactionType `gorm:"column:type;not null;type:text"`
	Description     string                `gorm:"column:description;not null;type:text"`
	RelatedItemID   *string               `gorm:"column:related_item_id;type:text"`
	RelatedItemType *string               `gorm:"column:related_item_type;type:text"`
	CreatedAt       time.Time             `gorm:"column:created_at;not null;default:now();type:timestamptz;index:idx_wallet_tx_user_created,priority:2,sort:desc"`
}

// TableName specifies the table name for the WalletTransaction model
func (WalletTransaction) TableName() string {
	return "wallet_transactions"
}
