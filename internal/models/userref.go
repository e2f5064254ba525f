package models

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// UserRef identifies a user in a todo field. Clients send it in two
// shapes: a bare id string ("8d6a...") or a structured reference
// ({"userId": "8d6a...", "email": "..."}). Both decode to the same
// value, and every comparison goes through the embedded UserID, never
// through the raw representation.
type UserRef struct {
	UserID uuid.UUID
	Email  string
}

// NewUserRef returns a reference to the given user id.
func NewUserRef(userID uuid.UUID) *UserRef {
	return &UserRef{UserID: userID}
}

// Refers reports whether the reference resolves to userID.
func (u *UserRef) Refers(userID uuid.UUID) bool {
	return u != nil && u.UserID == userID
}

type userRefObject struct {
	UserID uuid.UUID `json:"userId"`
	Email  string    `json:"email,omitempty"`
}

// UnmarshalJSON accepts either shape.
func (u *UserRef) UnmarshalJSON(data []byte) error {
	var bare string
	if err := json.Unmarshal(data, &bare); err == nil {
		if bare == "" {
			*u = UserRef{}
			return nil
		}
		id, err := uuid.Parse(bare)
		if err != nil {
			return fmt.Errorf("invalid user reference %q: %w", bare, err)
		}
		*u = UserRef{UserID: id}
		return nil
	}

	var obj userRefObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("invalid user reference: %w", err)
	}
	*u = UserRef{UserID: obj.UserID, Email: obj.Email}
	return nil
}

// MarshalJSON emits the bare id when no email is attached, matching what
// most clients sent in the first place, and the structured shape
// otherwise.
func (u UserRef) MarshalJSON() ([]byte, error) {
	if u.Email == "" {
		return json.Marshal(u.UserID.String())
	}
	return json.Marshal(userRefObject{UserID: u.UserID, Email: u.Email})
}
