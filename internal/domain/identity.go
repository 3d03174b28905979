package domain

import (
	"strings"
	"time"
)

// Identity is the authenticated caller as seen by the gateway.
type Identity struct {
	Subject   string    `json:"subject"`
	UserID    string    `json:"userId"`
	Username  string    `json:"username,omitempty"`
	Email     string    `json:"email,omitempty"`
	FirstName string    `json:"firstName,omitempty"`
	LastName  string    `json:"lastName,omitempty"`
	Roles     []Role    `json:"roles"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (i *Identity) DisplayName() string {
	if name := strings.TrimSpace(i.FirstName + " " + i.LastName); name != "" {
		return name
	}
	if i.Username != "" {
		return i.Username
	}
	return i.Email
}

func (i *Identity) Expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && !now.Before(i.ExpiresAt)
}
