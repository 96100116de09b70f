package model

import "time"

// Статусы транзакции.
const (
	TxPending   = "pending"
	TxConfirmed = "confirmed"
	TxFailed    = "failed"
)

// Tx — транзакция listItem: попадает в очередь при отправке и применяется майнером.
type Tx struct {
	Hash   string `gorm:"primaryKey"`
	Seq    int64  `gorm:"not null;index"` // порядок поступления в mempool
	UserID int64  `gorm:"not null;index"`
	User   *User  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`

	Listing Listing `gorm:"embedded;embeddedPrefix:listing_"`

	Status string `gorm:"not null;default:'pending';index"`
	Reason string
	Detail string
	Block  uint64
	ItemID uint64

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
