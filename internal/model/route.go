package model

import "github.com/shopspring/decimal"

// Route is a fixed-price trip between two named points, scoped to one client.
type Route struct {
	ID                     uint            `gorm:"primaryKey" json:"id"`
	ClientID               uint            `gorm:"not null;index" json:"client_id"`
	Client                 *Client         `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Name                   string          `gorm:"type:varchar(15);not null" json:"name"`
	OriginDescription      string          `gorm:"type:varchar(100);not null" json:"origin_description"`
	DestinationDescription string          `gorm:"type:varchar(100);not null" json:"destination_description"`
	FixedPrice             decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"fixed_price"`
	Status                 RecordStatus    `gorm:"type:varchar(10);not null" json:"status"`
}
