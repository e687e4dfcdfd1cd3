package identity

import "encoding/json"

// Event kinds delivered by the identity provider.
const (
	EventUserCreated = "user.created"
	EventUserUpdated = "user.updated"
	EventUserDeleted = "user.deleted"
)

// Event is the webhook envelope: a kind plus the provider-canonical user
// payload.
type Event struct {
	Type string    `json:"type"`
	Data EventUser `json:"data"`
}

// EventUser carries the provider's user fields we sync locally.
type EventUser struct {
	ID             string         `json:"id"`
	Username       string         `json:"username"`
	FirstName      string         `json:"first_name"`
	LastName       string         `json:"last_name"`
	ImageURL       string         `json:"image_url"`
	EmailAddresses []EmailAddress `json:"email_addresses"`
}

type EmailAddress struct {
	EmailAddress string `json:"email_address"`
}

// PrimaryEmail returns the first listed address, the provider's canonical
// primary.
func (u EventUser) PrimaryEmail() string {
	if len(u.EmailAddresses) == 0 {
		return ""
	}
	return u.EmailAddresses[0].EmailAddress
}

// ParseEvent decodes a verified webhook body.
func ParseEvent(body []byte) (*Event, error) {
	var evt Event
	if err := json.Unmarshal(body, &evt); err != nil {
		return nil, err
	}
	return &evt, nil
}
