package ayla

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"culligan/internal/endpoint"
)

const pathUserProfile = "/users/get_user_profile.json"

// UserProfile is the account record held by the user service
type UserProfile struct {
	UUID      string     `json:"uuid"`
	Email     string     `json:"email"`
	FirstName string     `json:"firstname,omitempty"`
	LastName  string     `json:"lastname,omitempty"`
	Company   string     `json:"company,omitempty"`
	Country   string     `json:"country,omitempty"`
	City      string     `json:"city,omitempty"`
	Phone     string     `json:"phone,omitempty"`
	Approved  bool       `json:"approved"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

type userProfileFields UserProfile

// UnmarshalJSON accepts both {"user":{...}} and the bare object
func (u *UserProfile) UnmarshalJSON(data []byte) error {
	var wrapped struct {
		User *userProfileFields `json:"user"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return err
	}
	if wrapped.User != nil {
		*u = UserProfile(*wrapped.User)
		return nil
	}

	var flat userProfileFields
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}
	*u = UserProfile(flat)
	return nil
}

// DisplayName joins first and last name, falling back to the email
func (u UserProfile) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}

// GetUserProfile reads the profile of the account the token belongs to
func (c *Client) GetUserProfile(ctx context.Context, token AccessToken) (UserProfile, error) {
	var profile UserProfile
	resolved, err := c.getJSON(ctx, token, endpoint.SegmentUser, pathUserProfile, &profile)
	if err != nil {
		return UserProfile{}, err
	}

	if profile.Email == "" && profile.UUID == "" {
		return UserProfile{}, &DecodeError{
			Endpoint: resolved,
			Err:      errors.New("profile has neither email nor uuid"),
		}
	}

	return profile, nil
}
