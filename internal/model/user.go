package model

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/nyaruka/phonenumbers"
	"gorm.io/gorm"

	apperrors "craftopia/internal/errors"
)

// Role is the authorization level of a user.
type Role string

const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// defaultPhoneRegion is assumed for numbers written without a country code.
const defaultPhoneRegion = "US"

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// Rank orders roles by privilege; unknown roles rank below user.
func (r Role) Rank() int {
	switch r {
	case RoleUser:
		return 1
	case RoleAdmin:
		return 2
	case RoleSuperAdmin:
		return 3
	}
	return 0
}

// User represents an account holder.
type User struct {
	ID           uuid.UUID  `json:"id" gorm:"type:char(36);primaryKey"`
	Email        string     `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string     `json:"-" gorm:"column:password;size:255;not null"` // Never expose in JSON
	FirstName    string     `json:"firstName" gorm:"size:50;not null"`
	LastName     string     `json:"lastName" gorm:"size:50;not null"`
	Phone        string     `json:"phone,omitempty" gorm:"size:20"`
	Role         Role       `json:"role" gorm:"type:varchar(20);not null;index"`
	IsActive     bool       `json:"isActive" gorm:"not null;index"`
	LastLogin    *time.Time `json:"lastLogin,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// BeforeCreate sets UUID before creating the record.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// FullName joins first and last name.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// IsSuperAdmin reports whether the user is the root identity.
func (u *User) IsSuperAdmin() bool {
	return u.Role == RoleSuperAdmin
}

// NewUser builds an active user with role "user" from raw input.
func NewUser(email, passwordHash, firstName, lastName, phone string) (*User, error) {
	u := &User{
		ID:           uuid.New(),
		Email:        NormalizeEmail(email),
		PasswordHash: passwordHash,
		FirstName:    strings.TrimSpace(firstName),
		LastName:     strings.TrimSpace(lastName),
		Role:         RoleUser,
		IsActive:     true,
	}
	if err := u.SetPhone(phone); err != nil {
		return nil, err
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	return u, nil
}

// SetPhone stores phone in E.164 form; an empty value clears it.
func (u *User) SetPhone(phone string) error {
	normalized, err := NormalizePhone(phone)
	if err != nil {
		return err
	}
	u.Phone = normalized
	return nil
}

// Validate checks field constraints that struct tags on requests do not cover.
func (u *User) Validate() error {
	if u.Email == "" || !strings.Contains(u.Email, "@") {
		return apperrors.Invalid("a valid email is required")
	}
	if n := utf8.RuneCountInString(u.FirstName); n < 2 || n > 50 {
		return apperrors.Invalid("first name must be between 2 and 50 characters")
	}
	if n := utf8.RuneCountInString(u.LastName); n < 2 || n > 50 {
		return apperrors.Invalid("last name must be between 2 and 50 characters")
	}
	if !u.Role.Valid() {
		return apperrors.Invalid("invalid role %q", u.Role)
	}
	return nil
}

// NormalizeEmail trims and lower-cases an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizePhone parses a phone number and formats it as E.164.
func NormalizePhone(phone string) (string, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return "", nil
	}
	num, err := phonenumbers.Parse(phone, defaultPhoneRegion)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return "", apperrors.Invalid("please provide a valid phone number")
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}
