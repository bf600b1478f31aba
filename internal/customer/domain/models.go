// Package domain contains the customer registry and the commission-party
// directory the distribution engine resolves recipients against.
package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Role enumerates the commission chain positions.
type Role string

const (
	RoleMainAgent   Role = "main_agent"
	RoleSubAgent    Role = "sub_agent"
	RoleDistributor Role = "distributor"
	RoleInvestor    Role = "investor"
	RoleAmbassador  Role = "ambassador"
)

// Roles lists every payable role in chain order.
var Roles = []Role{RoleMainAgent, RoleSubAgent, RoleDistributor, RoleInvestor, RoleAmbassador}

var (
	ErrCustomerNotFound = errors.New("customer: not found")
	ErrPartyNotFound    = errors.New("customer: party not found")
	ErrInvalidRole      = errors.New("customer: invalid role")
	ErrInvalidParent    = errors.New("customer: parent must be a main agent")
)

func (r Role) Valid() bool {
	switch r {
	case RoleMainAgent, RoleSubAgent, RoleDistributor, RoleInvestor, RoleAmbassador:
		return true
	}
	return false
}

// Customer is a policy holder.
type Customer struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	Name      string       `gorm:"type:text;not null"`
	Email     string       `gorm:"type:text;not null;index"`
	Phone     string       `gorm:"type:text"`
	Address   string       `gorm:"type:text"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Customer) TableName() string { return "customers" }

// Party is a commission recipient. Sub-agents hang off a main agent via
// ParentID; all other roles are flat.
type Party struct {
	ID          snowflake.ID  `gorm:"primaryKey"`
	Role        Role          `gorm:"type:text;not null;index"`
	Name        string        `gorm:"type:text;not null"`
	Email       string        `gorm:"type:text;not null"`
	Phone       string        `gorm:"type:text"`
	PAN         string        `gorm:"column:pan;type:text"`
	BankAccount string        `gorm:"type:text"`
	ParentID    *snowflake.ID `gorm:"index"`
	Active      bool          `gorm:"not null;default:true"`
	CreatedAt   time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Party) TableName() string { return "commission_parties" }
