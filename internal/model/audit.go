package model

import "time"

const (
	ActionCreateClient     = "CREATE_CLIENT"
	ActionUpdateClient     = "UPDATE_CLIENT"
	ActionDeleteClient     = "DELETE_CLIENT"
	ActionCreateRoute      = "CREATE_ROUTE"
	ActionUpdateRoute      = "UPDATE_ROUTE"
	ActionDeleteRoute      = "DELETE_ROUTE"
	ActionCreateUnit       = "CREATE_UNIT"
	ActionUpdateUnit       = "UPDATE_UNIT"
	ActionDeleteUnit       = "DELETE_UNIT"
	ActionCreateRide       = "CREATE_RIDE"
	ActionUpdateRide       = "UPDATE_RIDE"
	ActionCompleteRide     = "COMPLETE_RIDE"
	ActionDeleteRide       = "DELETE_RIDE"
	ActionCreateRole       = "CREATE_ROLE"
	ActionUpdateRole       = "UPDATE_ROLE"
	ActionDeleteRole       = "DELETE_ROLE"
	ActionUpdateRoleGrants = "UPDATE_ROLE_GRANTS"
	ActionCreateUser       = "CREATE_USER"
	ActionUpdateUser       = "UPDATE_USER"
	ActionDeleteUser       = "DELETE_USER"
	ActionChangePassword   = "CHANGE_PASSWORD"
)

// AuditLog tracks who changed what and when.
type AuditLog struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     *uint     `gorm:"index" json:"user_id"` // nil for system actions such as seeding
	User       *User     `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL" json:"user"`
	Action     string    `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string    `gorm:"type:varchar(50);index" json:"entity_id"`
	EntityName string    `gorm:"type:varchar(255)" json:"entity_name,omitempty"`
	Details    string    `gorm:"type:jsonb" json:"details"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}
