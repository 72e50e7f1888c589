package auth

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of an account.
type Status string

const (
	StatusPendingVerification Status = "pending_verification"
	StatusActive              Status = "active"
	StatusSuspended           Status = "suspended"
	StatusBanned              Status = "banned"
	StatusDeactivated         Status = "deactivated"
)

type Account struct {
	ID                         uuid.UUID `gorm:"type:uuid;primaryKey"`
	Username                   string    `gorm:"size:20;uniqueIndex:idx_accounts_username;not null"`
	Email                      string    `gorm:"size:255;uniqueIndex:idx_accounts_email;not null"`
	PasswordHash               string    `gorm:"size:255;not null"`
	EmailVerificationToken     string    `gorm:"size:128"`
	EmailVerificationExpiresAt *time.Time
	IsEmailVerified            bool   `gorm:"not null;default:false"`
	Status                     Status `gorm:"size:32;not null;default:pending_verification"`

	FirstName           *string `gorm:"size:50"`
	LastName            *string `gorm:"size:50"`
	Bio                 *string `gorm:"size:500"`
	City                *string `gorm:"size:100"`
	Pincode             *string `gorm:"size:6"`
	GeneralAvailability *string `gorm:"size:255"`

	// Maintained by the credit and review services.
	SphereCreditBalance  int64 `gorm:"not null;default:0"`
	AvgRating            *float64
	TotalReviewsReceived int `gorm:"not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Account) TableName() string {
	return "accounts"
}

// PublicAccount is the projection returned by Register.
type PublicAccount struct {
	ID        uuid.UUID `json:"user_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LoginAccount is the projection returned by a successful Login.
type LoginAccount struct {
	ID              uuid.UUID `json:"user_id"`
	Username        string    `json:"username"`
	Email           string    `json:"email"`
	Status          Status    `json:"status"`
	IsEmailVerified bool      `json:"is_email_verified"`
}

type Profile struct {
	ID                   uuid.UUID `json:"user_id"`
	Username             string    `json:"username"`
	Email                string    `json:"email"`
	FirstName            *string   `json:"first_name"`
	LastName             *string   `json:"last_name"`
	Bio                  *string   `json:"bio"`
	City                 *string   `json:"city"`
	Pincode              *string   `json:"pincode"`
	GeneralAvailability  *string   `json:"general_availability"`
	SphereCreditBalance  int64     `json:"sphere_credit_balance"`
	AvgRating            *float64  `json:"avg_rating"`
	TotalReviewsReceived int       `json:"total_reviews_received"`
	Status               Status    `json:"status"`
	IsEmailVerified      bool      `json:"is_email_verified"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

func (a *Account) Public() *PublicAccount {
	return &PublicAccount{
		ID:        a.ID,
		Username:  a.Username,
		Email:     a.Email,
		Status:    a.Status,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func (a *Account) loginView() *LoginAccount {
	return &LoginAccount{
		ID:              a.ID,
		Username:        a.Username,
		Email:           a.Email,
		Status:          a.Status,
		IsEmailVerified: a.IsEmailVerified,
	}
}

func (a *Account) Profile() *Profile {
	return &Profile{
		ID:                   a.ID,
		Username:             a.Username,
		Email:                a.Email,
		FirstName:            a.FirstName,
		LastName:             a.LastName,
		Bio:                  a.Bio,
		City:                 a.City,
		Pincode:              a.Pincode,
		GeneralAvailability:  a.GeneralAvailability,
		SphereCreditBalance:  a.SphereCreditBalance,
		AvgRating:            a.AvgRating,
		TotalReviewsReceived: a.TotalReviewsReceived,
		Status:               a.Status,
		IsEmailVerified:      a.IsEmailVerified,
		CreatedAt:            a.CreatedAt,
		UpdatedAt:            a.UpdatedAt,
	}
}

// ProfileUpdate is the allow-listed set of mutable profile fields.
// A nil field is left untouched.
type ProfileUpdate struct {
	FirstName           *string `json:"first_name,omitempty" validate:"omitnil,max=50,alphaspace"`
	LastName            *string `json:"last_name,omitempty" validate:"omitnil,max=50,alphaspace"`
	Bio                 *string `json:"bio,omitempty" validate:"omitnil,max=500"`
	City                *string `json:"city,omitempty" validate:"omitnil,max=100"`
	Pincode             *string `json:"pincode,omitempty" validate:"omitnil,len=6,number"`
	GeneralAvailability *string `json:"general_availability,omitempty" validate:"omitnil,max=255"`
}

func (u ProfileUpdate) IsEmpty() bool {
	return u.FirstName == nil &&
		u.LastName == nil &&
		u.Bio == nil &&
		u.City == nil &&
		u.Pincode == nil &&
		u.GeneralAvailability == nil
}

// columns maps the supplied fields to their column names.
func (u ProfileUpdate) columns() map[string]any {
	cols := make(map[string]any, 6)
	if u.FirstName != nil {
		cols["first_name"] = *u.FirstName
	}
	if u.LastName != nil {
		cols["last_name"] = *u.LastName
	}
	if u.Bio != nil {
		cols["bio"] = *u.Bio
	}
	if u.City != nil {
		cols["city"] = *u.City
	}
	if u.Pincode != nil {
		cols["pincode"] = *u.Pincode
	}
	if u.GeneralAvailability != nil {
		cols["general_availability"] = *u.GeneralAvailability
	}
	return cols
}

// NormalizeEmail trims and lowercases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
