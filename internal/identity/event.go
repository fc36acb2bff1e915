// Package identity syncs users from signed identity-provider webhooks.
package identity

import "strings"

const (
	EventUserCreated = "user.created"
	EventUserUpdated = "user.updated"
	EventUserDeleted = "user.deleted"
)

type Event struct {
	Type string   `json:"type"`
	Data UserData `json:"data"`
}

type EmailAddress struct {
	ID           string `json:"id"`
	EmailAddress string `json:"email_address"`
}

type UserData struct {
	ID                    string         `json:"id"`
	EmailAddresses        []EmailAddress `json:"email_addresses"`
	PrimaryEmailAddressID string         `json:"primary_email_address_id"`
	FirstName             string         `json:"first_name"`
	LastName              string         `json:"last_name"`
	ImageURL              string         `json:"image_url"`
	Deleted               bool           `json:"deleted"`
}

// PrimaryEmail returns the address flagged as primary, or the first one.
func (d UserData) PrimaryEmail() string {
	if d.PrimaryEmailAddressID != "" {
		for _, e := range d.EmailAddresses {
			if e.ID == d.PrimaryEmailAddressID {
				return strings.TrimSpace(e.EmailAddress)
			}
		}
	}
	if len(d.EmailAddresses) == 0 {
		return ""
	}
	return strings.TrimSpace(d.EmailAddresses[0].EmailAddress)
}

// User is the row synced into the users table.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	ImageURL  string `json:"image_url,omitempty"`
}
