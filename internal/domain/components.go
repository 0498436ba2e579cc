package domain

import (
	"fmt"
	"net/url"

	"github.com/totegamma/weird/leaf"
	"github.com/totegamma/weird/schemas"
)

var (
	usernameSchema        = schemas.String
	tagsSchema            = schemas.Vec(schemas.String)
	webLinkSchema         = schemas.Struct(schemas.F("label", schemas.Option(schemas.String)), schemas.F("url", schemas.String))
	webLinksSchema        = schemas.Vec(webLinkSchema)
	mastodonProfileSchema = schemas.Struct(schemas.F("username", schemas.String), schemas.F("server", schemas.String))
	pubpageThemeSchema    = schemas.String
	customDomainSchema    = schemas.String
)

// Username is the fully qualified username (name@domain) of the user
// represented by an entity.
type Username struct {
	Value string
}

func NewUsername(s string) (Username, error) {
	if s == "" {
		return Username{}, leaf.ValidationError{Component: "Username", Reason: "username is empty"}
	}
	return Username{Value: s}, nil
}

func (Username) ComponentName() string    { return "Username" }
func (Username) Schema() schemas.Schema   { return usernameSchema }
func (u Username) Encode() ([]byte, error) { return schemas.Encode(usernameSchema, u.Value) }

var UsernameType = leaf.ComponentType{
	Name:          "Username",
	Schema:        usernameSchema,
	Specification: "The username of the user represented by this entity.",
	Decode: func(data []byte) (leaf.Component, error) {
		s, err := leaf.DecodeString(usernameSchema, data)
		if err != nil {
			return nil, err
		}
		return Username{Value: s}, nil
	},
}

// Tags is an ordered list of free-form tags.
type Tags struct {
	Value []string
}

func NewTags(tags []string) Tags {
	return Tags{Value: append([]string{}, tags...)}
}

func (Tags) ComponentName() string  { return "Tags" }
func (Tags) Schema() schemas.Schema { return tagsSchema }
func (t Tags) Encode() ([]byte, error) {
	items := make([]any, 0, len(t.Value))
	for _, tag := range t.Value {
		items = append(items, tag)
	}
	return schemas.Encode(tagsSchema, items)
}

var TagsType = leaf.ComponentType{
	Name:   "Tags",
	Schema: tagsSchema,
	Specification: `A list of string tags associated to the entity.

There is no restriction on the format of the tag. Any valid UTF-8 is accepted.

An example use would be hashtags or some equivalent.`,
	Decode: func(data []byte) (leaf.Component, error) {
		v, err := schemas.Decode(tagsSchema, data)
		if err != nil {
			return nil, err
		}
		items := v.([]any)
		tags := make([]string, 0, len(items))
		for _, item := range items {
			tags = append(tags, item.(string))
		}
		return Tags{Value: tags}, nil
	},
}

// WebLinks is an ordered list of labelled links.
type WebLinks struct {
	Value []WebLink
}

func NewWebLinks(links []WebLink) (WebLinks, error) {
	for _, l := range links {
		u, err := url.Parse(l.URL)
		if err != nil || u.Scheme == "" {
			return WebLinks{}, leaf.ValidationError{Component: "WebLinks", Reason: fmt.Sprintf("%q is not a valid URL", l.URL)}
		}
	}
	return WebLinks{Value: append([]WebLink{}, links...)}, nil
}

func (WebLinks) ComponentName() string  { return "WebLinks" }
func (WebLinks) Schema() schemas.Schema { return webLinksSchema }
func (w WebLinks) Encode() ([]byte, error) {
	items := make([]any, 0, len(w.Value))
	for _, l := range w.Value {
		var label any
		if l.Label != "" {
			label = l.Label
		}
		items = append(items, map[string]any{"label": label, "url": l.URL})
	}
	return schemas.Encode(webLinksSchema, items)
}

var WebLinksType = leaf.ComponentType{
	Name:   "WebLinks",
	Schema: webLinksSchema,
	Specification: `A list of web links associated to the entity.

Each link has an optional label and a URL, which must be a valid URL`,
	Decode: func(data []byte) (leaf.Component, error) {
		v, err := schemas.Decode(webLinksSchema, data)
		if err != nil {
			return nil, err
		}
		items := v.([]any)
		links := make([]WebLink, 0, len(items))
		for _, item := range items {
			fields := item.(map[string]any)
			link := WebLink{URL: fields["url"].(string)}
			if label, ok := fields["label"].(string); ok {
				link.Label = label
			}
			links = append(links, link)
		}
		return WebLinks{Value: links}, nil
	},
}

// MastodonProfileComponent links an entity to a mastodon account.
type MastodonProfileComponent struct {
	Value MastodonProfile
}

func NewMastodonProfile(p MastodonProfile) (MastodonProfileComponent, error) {
	if p.Username == "" {
		return MastodonProfileComponent{}, leaf.ValidationError{Component: "MastodonProfile", Reason: "username is required"}
	}
	if p.Server == "" {
		return MastodonProfileComponent{}, leaf.ValidationError{Component: "MastodonProfile", Reason: "server is required"}
	}
	return MastodonProfileComponent{Value: p}, nil
}

func (MastodonProfileComponent) ComponentName() string  { return "MastodonProfile" }
func (MastodonProfileComponent) Schema() schemas.Schema { return mastodonProfileSchema }
func (m MastodonProfileComponent) Encode() ([]byte, error) {
	return schemas.Encode(mastodonProfileSchema, map[string]any{
		"username": m.Value.Username,
		"server":   m.Value.Server,
	})
}

var MastodonProfileType = leaf.ComponentType{
	Name:          "MastodonProfile",
	Schema:        mastodonProfileSchema,
	Specification: "The username and server URL of the mastodon profile associated to this entity.",
	Decode: func(data []byte) (leaf.Component, error) {
		v, err := schemas.Decode(mastodonProfileSchema, data)
		if err != nil {
			return nil, err
		}
		fields := v.(map[string]any)
		return MastodonProfileComponent{Value: MastodonProfile{
			Username: fields["username"].(string),
			Server:   fields["server"].(string),
		}}, nil
	},
}

// WeirdPubpageTheme names the theme of the user's public page.
type WeirdPubpageTheme struct {
	Value string
}

func NewWeirdPubpageTheme(s string) WeirdPubpageTheme { return WeirdPubpageTheme{Value: s} }

func (WeirdPubpageTheme) ComponentName() string    { return "WeirdPubpageTheme" }
func (WeirdPubpageTheme) Schema() schemas.Schema   { return pubpageThemeSchema }
func (w WeirdPubpageTheme) Encode() ([]byte, error) { return schemas.Encode(pubpageThemeSchema, w.Value) }

var WeirdPubpageThemeType = leaf.ComponentType{
	Name:          "WeirdPubpageTheme",
	Schema:        pubpageThemeSchema,
	Specification: "The name of the theme selected by a user for their main Weird pubpage.",
	Decode: func(data []byte) (leaf.Component, error) {
		s, err := leaf.DecodeString(pubpageThemeSchema, data)
		if err != nil {
			return nil, err
		}
		return WeirdPubpageTheme{Value: s}, nil
	},
}

// WeirdCustomDomain is the verified custom domain of the user's pubpage.
type WeirdCustomDomain struct {
	Value string
}

func NewWeirdCustomDomain(s string) (WeirdCustomDomain, error) {
	if s == "" {
		return WeirdCustomDomain{}, leaf.ValidationError{Component: "WeirdCustomDomain", Reason: "domain is empty"}
	}
	return WeirdCustomDomain{Value: s}, nil
}

func (WeirdCustomDomain) ComponentName() string    { return "WeirdCustomDomain" }
func (WeirdCustomDomain) Schema() schemas.Schema   { return customDomainSchema }
func (w WeirdCustomDomain) Encode() ([]byte, error) { return schemas.Encode(customDomainSchema, w.Value) }

var WeirdCustomDomainType = leaf.ComponentType{
	Name:          "WeirdCustomDomain",
	Schema:        customDomainSchema,
	Specification: "An optional custom domain for the user's pubpage.",
	Decode: func(data []byte) (leaf.Component, error) {
		s, err := leaf.DecodeString(customDomainSchema, data)
		if err != nil {
			return nil, err
		}
		return WeirdCustomDomain{Value: s}, nil
	},
}

// ProfileComponents lists the component types read to build a Profile.
var ProfileComponents = []leaf.ComponentType{
	leaf.NameType,
	leaf.DescriptionType,
	UsernameType,
	TagsType,
	WeirdCustomDomainType,
	MastodonProfileType,
	WeirdPubpageThemeType,
	WebLinksType,
}
