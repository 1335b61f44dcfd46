package domain

import (
	"errors"
	"time"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrNameTaken          = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("username or password incorrect")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInsufficientFunds  = errors.New("insufficient balance")
)

// User is a store account. Balance is in satang and is mutated only through
// the ledger operations.
type User struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Phone        string     `json:"phone,omitempty"`
	Address      string     `json:"address,omitempty"`
	PasswordHash string     `json:"-"`
	Role         Role       `json:"role"`
	Balance      int64      `json:"balance"`
	DeletedAt    *time.Time `json:"deletedAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

func (u User) Deleted() bool { return u.DeletedAt != nil }

// PartialUpdate carries the optional profile fields a user may change. Nil
// means "leave as is".
type PartialUpdate struct {
	Email   *string
	Phone   *string
	Address *string
}

func (p PartialUpdate) Empty() bool {
	return p.Email == nil && p.Phone == nil && p.Address == nil
}
