package model

import (
	"github.com/google/uuid"
)

// User is the singleton record for the authenticated account. Absence of a
// record is the logged-out state; there is no "present but logged out".
//
// IsAuthenticated is true only on records minted by NewUser, which is the
// OTP verification path. Nothing else sets the flag.
type User struct {
	ID              string `json:"id"`
	Phone           string `json:"phone"`
	CountryCode     string `json:"countryCode"`
	IsAuthenticated bool   `json:"isAuthenticated"`
}

// NewUser mints a verified user record. Callers must have validated the
// phone and dial code already; the record carries them verbatim.
func NewUser(phone, countryCode string) *User {
	return &User{
		ID:              uuid.NewString(),
		Phone:           phone,
		CountryCode:     countryCode,
		IsAuthenticated: true,
	}
}

func (u *User) IsZero() bool { return u == nil || u.ID == "" }
