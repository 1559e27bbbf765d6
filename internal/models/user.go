// internal/models/user.go

package models

import (
	"time"

	"github.com/google/uuid"
)

type AccountStatusType string

const (
	AccountStatusIncomplete AccountStatusType = "INCOMPLETE"
	AccountStatusActive     AccountStatusType = "ACTIVE"
	AccountStatusSuspended  AccountStatusType = "SUSPENDED"
)

// PartyType identifies which side of a negotiation a user is on.
type PartyType string

const (
	PartyBuyer  PartyType = "BUYER"
	PartySeller PartyType = "SELLER"
)

// Other returns the opposite party.
func (p PartyType) Other() PartyType {
	if p == PartyBuyer {
		return PartySeller
	}
	return PartyBuyer
}

// ParseParty converts the wire form ("buyer"/"seller") to the enum.
func ParseParty(s string) (PartyType, bool) {
	switch s {
	case "buyer", "BUYER":
		return PartyBuyer, true
	case "seller", "SELLER":
		return PartySeller, true
	}
	return "", false
}

type User struct {
	Versioned

	ID          uuid.UUID         `json:"id"`
	Email       string            `json:"email"`
	PhoneNumber string            `json:"phone_number"`
	FirstName   string            `json:"first_name"`
	LastName    string            `json:"last_name"`

	AccountType   PartyType         `json:"account_type"`
	AccountStatus AccountStatusType `json:"account_status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) GetID() string {
	return u.ID.String()
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
