package domain

import "time"

type Role string

const (
	RoleCustomer Role = "customer"
	RoleOperator Role = "operator"
)

type User struct {
	ID        uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	Username  string    `json:"username" gorm:"size:64;uniqueIndex;not null"`
	Role      Role      `json:"role" gorm:"size:16;not null;default:'customer'"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

// Actor is the pre-validated identity attached to a request. Authentication
// happens upstream; services only consult the role for privileged transitions.
type Actor struct {
	UserID uint64
	Role   Role
}
