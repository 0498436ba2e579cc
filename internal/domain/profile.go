package domain

// Profile is the flat view over the components of one profile entity.
// Empty strings and a nil MastodonProfile mean the component is absent.
type Profile struct {
	Username        string           `json:"username,omitempty"`
	CustomDomain    string           `json:"custom_domain,omitempty"`
	DisplayName     string           `json:"display_name,omitempty"`
	Tags            []string         `json:"tags"`
	Bio             string           `json:"bio,omitempty"`
	Links           []WebLink        `json:"links"`
	MastodonProfile *MastodonProfile `json:"mastodon_profile,omitempty"`
	PubpageTheme    string           `json:"pubpage_theme,omitempty"`
}

type WebLink struct {
	Label string `json:"label,omitempty"`
	URL   string `json:"url"`
}

type MastodonProfile struct {
	Username string `json:"username"`
	Server   string `json:"server"`
}

// ProfileEvent is published after a write to a profile entity.
type ProfileEvent struct {
	Type string `json:"type"`
	Link string `json:"link"`
}

const (
	ProfileEventUpdated      = "profile.updated"
	ProfileEventCustomDomain = "profile.custom_domain"
	ProfileEventAvatar       = "profile.avatar"
)
