package weird

import "time"

// SessionInfo is the auth server's view of a browser session.
type SessionInfo struct {
	ID        string    `json:"id"`
	CSRFToken string    `json:"csrf_token"`
	UserID    string    `json:"user_id"`
	Roles     string    `json:"roles"`
	Exp       time.Time `json:"exp"`
}

// UserInfo is the auth server's account record for a user.
type UserInfo struct {
	ID         string   `json:"id"`
	Email      string   `json:"email"`
	GivenName  string   `json:"given_name"`
	FamilyName string   `json:"family_name"`
	Roles      []string `json:"roles"`
	Enabled    bool     `json:"enabled"`
}

// Session bundles the resolved session and account of a request.
type Session struct {
	Info SessionInfo
	User UserInfo
}
