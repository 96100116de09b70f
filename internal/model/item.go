package model

import "time"

// Listing — аргументы listItem. Суммы — десятичные строки базовых единиц.
type Listing struct {
	Name            string
	Price           string `gorm:"not null;default:'0'"`
	IsAuction       bool   `gorm:"not null;default:false"`
	AuctionDuration uint64 `gorm:"not null;default:0"`
	IsRent          bool   `gorm:"not null;default:false"`
	RentalPrice     string `gorm:"not null;default:'0'"`
	RentalDuration  uint64 `gorm:"not null;default:0"`
	UseLogistics    bool   `gorm:"not null;default:false"`
	LogisticsPrice  string `gorm:"not null;default:'0'"`
}

// Item — записанный листинг. ID плотные, с 1, назначаются майнером.
type Item struct {
	ID      uint64  `gorm:"primaryKey;autoIncrement:false"`
	Listing Listing `gorm:"embedded"`
	Owner   string  `gorm:"not null;index"`
	TxHash  string  `gorm:"not null;uniqueIndex"`
	Block   uint64  `gorm:"not null"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
