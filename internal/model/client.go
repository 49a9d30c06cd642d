package model

import "time"

// Client is a corporate customer. It owns its cost centers, authorized users and routes.
type Client struct {
	ID              uint             `gorm:"primaryKey" json:"id"`
	Name            string           `gorm:"type:varchar(100);not null" json:"name"`
	TaxID           string           `gorm:"type:varchar(18)" json:"tax_id"`
	Email           string           `gorm:"type:varchar(100)" json:"email"`
	Status          RecordStatus     `gorm:"type:varchar(10);not null;index" json:"status"`
	Phone1          string           `gorm:"type:varchar(20)" json:"phone1"`
	Phone2          string           `gorm:"type:varchar(20)" json:"phone2"`
	Street          string           `gorm:"type:varchar(200)" json:"street"`
	Number          string           `gorm:"type:varchar(10)" json:"number"`
	Complement      string           `gorm:"type:varchar(50)" json:"complement"`
	District        string           `gorm:"type:varchar(100)" json:"district"`
	PostalCode      string           `gorm:"type:varchar(9)" json:"postal_code"`
	State           string           `gorm:"type:varchar(2)" json:"state"`
	City            string           `gorm:"type:varchar(100)" json:"city"`
	Version         int              `gorm:"not null;default:1" json:"version"`
	CostCenters     []CostCenter     `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE" json:"cost_centers"`
	AuthorizedUsers []AuthorizedUser `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE" json:"authorized_users"`
	Routes          []Route          `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE" json:"routes,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// CostCenter is a billing bucket inside a client.
type CostCenter struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	ClientID    uint   `gorm:"not null;index" json:"client_id"`
	Code        string `gorm:"type:varchar(10);not null" json:"code"`
	Description string `gorm:"type:varchar(50);not null" json:"description"`
}

// AuthorizedUser is a person at a client allowed to request and/or ride.
type AuthorizedUser struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	ClientID      uint          `gorm:"not null;index" json:"client_id"`
	Name          string        `gorm:"type:varchar(50);not null" json:"name"`
	EmployeeCode  string        `gorm:"type:varchar(15)" json:"employee_code"`
	RequesterType RequesterType `gorm:"type:varchar(10);not null" json:"requester_type"`
	Status        RecordStatus  `gorm:"type:varchar(10);not null" json:"status"`
	Phone1        string        `gorm:"type:varchar(20);not null" json:"phone1"`
	Phone2        string        `gorm:"type:varchar(20)" json:"phone2"`
	Email         string        `gorm:"type:varchar(100);not null" json:"email"`
}
