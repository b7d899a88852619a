package model

import "time"

// Role is the access level of a user.
type Role string

const (
	RoleAdmin            Role = "admin"
	RoleWarehouseManager Role = "warehouse_manager"
	RoleEmployee         Role = "employee"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleWarehouseManager, RoleEmployee:
		return true
	}
	return false
}

type User struct {
	UserID            string    `bson:"user_id" json:"user_id"`
	Username          string    `bson:"username" json:"username"`
	Email             string    `bson:"email" json:"email"`
	Password          string    `bson:"password" json:"-"` // argon2 salt$hash
	AppToken          string    `bson:"app_token" json:"appToken,omitempty"`
	Role              Role      `bson:"role" json:"role"`
	AssignedWarehouse string    `bson:"assigned_warehouse,omitempty" json:"assignedWarehouse,omitempty"`
	IsActive          bool      `bson:"is_active" json:"isActive"`
	CreatedAt         time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt         time.Time `bson:"updated_at" json:"updatedAt"`
}

// UserFilter narrows user listings.
type UserFilter struct {
	Role      Role
	Warehouse string
	Page      int64
	Limit     int64
}
