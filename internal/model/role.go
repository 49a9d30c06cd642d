package model

import "time"

// Role is an operator profile. Its grants decide which screens an operator may see or edit.
type Role struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	Name      string      `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"`
	Grants    []RoleGrant `gorm:"foreignKey:RoleID;constraint:OnDelete:CASCADE" json:"grants"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// RoleGrant gives a role view and/or edit access to one resource.
type RoleGrant struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	RoleID       uint   `gorm:"not null;uniqueIndex:idx_role_grants_role_resource" json:"role_id"`
	ResourceName string `gorm:"type:varchar(50);not null;uniqueIndex:idx_role_grants_role_resource" json:"resource_name"`
	CanView      bool   `gorm:"not null" json:"can_view"`
	CanEdit      bool   `gorm:"not null" json:"can_edit"`
}
