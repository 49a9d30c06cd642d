package model

import "github.com/shopspring/decimal"

// Unit is a vehicle plus its driver.
type Unit struct {
	ID                 uint            `gorm:"primaryKey" json:"id"`
	Name               string          `gorm:"type:varchar(50);not null" json:"name"`
	TaxID              string          `gorm:"type:varchar(14)" json:"tax_id"`
	Nickname           string          `gorm:"type:varchar(10)" json:"nickname"`
	Phone              string          `gorm:"type:varchar(15)" json:"phone"`
	Status             RecordStatus    `gorm:"type:varchar(10);not null" json:"status"`
	VehicleDescription string          `gorm:"type:varchar(20)" json:"vehicle_description"`
	Plate              string          `gorm:"type:varchar(8)" json:"plate"`
	DeviceID           string          `gorm:"type:varchar(50)" json:"device_id"`
	CommissionPercent  decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"commission_percent"`
}

// DisplayName prefers the short nickname used over the radio.
func (u Unit) DisplayName() string {
	if u.Nickname != "" {
		return u.Nickname + " - " + u.Name
	}
	return u.Name
}
