package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ride is a scheduled or completed trip for a client.
type Ride struct {
	ID           uint             `gorm:"primaryKey" json:"id"`
	ClientID     uint             `gorm:"not null;index" json:"client_id"`
	Client       *Client          `gorm:"foreignKey:ClientID;constraint:OnDelete:RESTRICT" json:"client,omitempty"`
	RequesterID  uint             `gorm:"not null;index" json:"requester_id"`
	Requester    *AuthorizedUser  `gorm:"foreignKey:RequesterID;constraint:OnDelete:RESTRICT" json:"requester,omitempty"`
	RiderID      *uint            `gorm:"index" json:"rider_id"`
	Rider        *AuthorizedUser  `gorm:"foreignKey:RiderID;constraint:OnDelete:RESTRICT" json:"rider,omitempty"`
	FareType     FareType         `gorm:"type:varchar(10);not null" json:"fare_type"`
	StartAddress *string          `gorm:"type:varchar(200)" json:"start_address"`
	EndAddress   *string          `gorm:"type:varchar(200)" json:"end_address"`
	StartKm      *decimal.Decimal `gorm:"type:decimal(10,2)" json:"start_km"`
	EndKm        *decimal.Decimal `gorm:"type:decimal(10,2)" json:"end_km"`
	RouteID      *uint            `gorm:"index" json:"route_id"`
	Route        *Route           `gorm:"foreignKey:RouteID;constraint:OnDelete:RESTRICT" json:"route,omitempty"`
	ScheduledAt  time.Time        `gorm:"not null;index" json:"scheduled_at"`
	UnitID       uint             `gorm:"not null;index" json:"unit_id"`
	Unit         *Unit            `gorm:"foreignKey:UnitID;constraint:OnDelete:RESTRICT" json:"unit,omitempty"`
	Price        decimal.Decimal  `gorm:"type:decimal(10,2);not null" json:"price"`
	Note         *string          `gorm:"type:text" json:"note"`
	Status       RideStatus       `gorm:"type:varchar(10);not null;index" json:"status"`
	CostCenterID *uint            `gorm:"index" json:"cost_center_id"`
	CostCenter   *CostCenter      `gorm:"foreignKey:CostCenterID;constraint:OnDelete:RESTRICT" json:"cost_center,omitempty"`
	Version      int              `gorm:"not null;default:1" json:"version"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}
