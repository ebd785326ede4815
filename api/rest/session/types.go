package session

import (
	"time"

	"codeberg.org/newsdesk/web/internal/identity"
)

const (
	// time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// clients never send anything but control frames
	maxMessageSize = 512
)

type Deps struct {
	AllowedOrigins []string
	Production     bool
}

// session state as served to the page
type StateResponse struct {
	User    *UserResponse `json:"user"`
	Loading bool          `json:"loading"`
}

type UserResponse struct {
	UID           string `json:"uid"`
	DisplayName   string `json:"displayName,omitempty"`
	Email         string `json:"email,omitempty"`
	EmailVerified bool   `json:"emailVerified"`
	PhotoURL      string `json:"photoURL,omitempty"`
}

func userResponse(u *identity.User) *UserResponse {
	if u == nil {
		return nil
	}

	return &UserResponse{
		UID:           u.UID,
		DisplayName:   u.DisplayName,
		Email:         u.Email,
		EmailVerified: u.EmailVerified,
		PhotoURL:      u.PhotoURL,
	}
}
