package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for webhook event parsing.
// Both map to a 400 at the HTTP boundary.
var (
	// ErrUnknownEventType indicates an event type this service does not handle.
	ErrUnknownEventType = errors.New("unhandled event type")

	// ErrInvalidEvent indicates a recognized event whose payload is missing
	// required fields.
	ErrInvalidEvent = errors.New("invalid event payload")
)

// Event is the closed union of webhook events this service handles.
// Payloads are validated into one of the concrete types at the boundary;
// handler logic never inspects raw JSON.
type Event interface {
	isEvent()
}

// UserCreatedEvent signals that a user record was created upstream.
type UserCreatedEvent struct {
	ID        string
	Email     string
	Username  string
	FirstName string
	LastName  string
	ImageURL  string
}

// UserUpdatedEvent signals that a user's profile changed upstream.
// Fields absent from the payload are empty strings: absent means clear.
type UserUpdatedEvent struct {
	ID        string
	Username  string
	FirstName string
	LastName  string
	ImageURL  string
}

// UserDeletedEvent signals that a user record was removed upstream.
type UserDeletedEvent struct {
	ID string
}

func (UserCreatedEvent) isEvent() {}
func (UserUpdatedEvent) isEvent() {}
func (UserDeletedEvent) isEvent() {}

type eventEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type emailAddress struct {
	EmailAddress string `json:"email_address"`
}

type userEventData struct {
	ID             string         `json:"id"`
	Username       string         `json:"username"`
	FirstName      string         `json:"first_name"`
	LastName       string         `json:"last_name"`
	ImageURL       string         `json:"image_url"`
	EmailAddresses []emailAddress `json:"email_addresses"`
}

// ParseEvent validates a verified webhook body into the event union.
// Unknown types and malformed payloads are rejected here, before any
// handler logic runs.
func ParseEvent(body []byte) (Event, error) {
	var env eventEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode event envelope: %w", ErrInvalidEvent)
	}

	var data userEventData
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return nil, fmt.Errorf("decode %q data: %w", env.Type, ErrInvalidEvent)
		}
	}
	if data.ID == "" {
		return nil, fmt.Errorf("event %q has no subject id: %w", env.Type, ErrInvalidEvent)
	}

	switch env.Type {
	case "user.created":
		if len(data.EmailAddresses) == 0 || data.EmailAddresses[0].EmailAddress == "" {
			// A user record is meaningless without contact info.
			return nil, fmt.Errorf("user.created without email address: %w", ErrInvalidEvent)
		}
		return UserCreatedEvent{
			ID:        data.ID,
			Email:     data.EmailAddresses[0].EmailAddress,
			Username:  data.Username,
			FirstName: data.FirstName,
			LastName:  data.LastName,
			ImageURL:  data.ImageURL,
		}, nil
	case "user.updated":
		return UserUpdatedEvent{
			ID:        data.ID,
			Username:  data.Username,
			FirstName: data.FirstName,
			LastName:  data.LastName,
			ImageURL:  data.ImageURL,
		}, nil
	case "user.deleted":
		return UserDeletedEvent{ID: data.ID}, nil
	default:
		return nil, fmt.Errorf("event type %q: %w", env.Type, ErrUnknownEventType)
	}
}

// CreateParams maps the creation event to repository input, applying the
// derivation rules: username falls back to the email local part, names
// to empty strings and the photo to the placeholder avatar.
func (e UserCreatedEvent) CreateParams() CreateUserParams {
	username := e.Username
	if username == "" {
		username = strings.SplitN(e.Email, "@", 2)[0]
	}
	photo := e.ImageURL
	if photo == "" {
		photo = DefaultPhotoURL
	}
	return CreateUserParams{
		ClerkID:   e.ID,
		Email:     e.Email,
		Username:  username,
		FirstName: e.FirstName,
		LastName:  e.LastName,
		Photo:     photo,
	}
}

// UpdateParams maps the update event to repository input. No fallbacks:
// fields the provider omitted arrive empty and actively clear the stored
// value.
func (e UserUpdatedEvent) UpdateParams() UpdateUserParams {
	return UpdateUserParams{
		Username:  e.Username,
		FirstName: e.FirstName,
		LastName:  e.LastName,
		Photo:     e.ImageURL,
	}
}
