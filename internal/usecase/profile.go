package usecase

import (
	"context"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/totegamma/weird/internal/domain"
	"github.com/totegamma/weird/leaf"
)

var tracer = otel.Tracer("usecase")

// ProfilePrefix is the collection segment holding every profile entity.
const ProfilePrefix leaf.PathSegment = "profiles"

type ProfileUsecase struct {
	store  leaf.Store
	config domain.Config
	links  LinkCache
	events ProfileEventPublisher
}

// NewProfileUsecase builds the profile layer. links and events may be nil.
func NewProfileUsecase(store leaf.Store, config domain.Config, links LinkCache, events ProfileEventPublisher) *ProfileUsecase {
	return &ProfileUsecase{
		store:  store,
		config: config,
		links:  links,
		events: events,
	}
}

func (uc *ProfileUsecase) profilesLink() leaf.Link {
	return leaf.NewLink(uc.config.Namespace, ProfilePrefix)
}

func (uc *ProfileUsecase) ProfileLinkByID(userID string) leaf.Link {
	return uc.profilesLink().Join(leaf.PathSegment(userID))
}

// ProfileLinkByUsername scans every profile entity and returns the first
// whose Username component equals username.
func (uc *ProfileUsecase) ProfileLinkByUsername(ctx context.Context, username string) (leaf.Link, error) {
	ctx, span := tracer.Start(ctx, "Profile.Usecase.ProfileLinkByUsername")
	defer span.End()

	if !strings.HasSuffix(username, "@"+uc.config.PublicDomain) {
		return leaf.Link{}, domain.ErrUnsupportedFederation
	}

	if uc.links != nil {
		if link, ok := uc.links.Get(ctx, username); ok {
			match, err := uc.hasUsername(ctx, link, username)
			if err != nil {
				span.RecordError(err)
				return leaf.Link{}, err
			}
			if match {
				return link, nil
			}
			uc.links.Delete(ctx, username)
		}
	}

	entities, err := uc.store.ListEntities(ctx, uc.profilesLink())
	if err != nil {
		span.RecordError(err)
		return leaf.Link{}, domain.StoreError{Op: "list_entities", Err: err}
	}
	span.SetAttributes(attribute.Int("entities", len(entities)))

	for _, link := range entities {
		match, err := uc.hasUsername(ctx, link, username)
		if err != nil {
			span.RecordError(err)
			return leaf.Link{}, err
		}
		if match {
			if uc.links != nil {
				uc.links.Set(ctx, username, link)
			}
			return link, nil
		}
	}

	return leaf.Link{}, domain.NotFoundError{Resource: "username"}
}

func (uc *ProfileUsecase) hasUsername(ctx context.Context, link leaf.Link, username string) (bool, error) {
	ent, err := uc.store.GetComponents(ctx, link, []leaf.ComponentType{domain.UsernameType})
	if err != nil {
		return false, domain.StoreError{Op: "get_components", Err: err}
	}
	u, ok := leaf.Get[domain.Username](ent, domain.UsernameType)
	return ok && u.Value == username, nil
}

// GetProfile materializes the profile stored at link.
func (uc *ProfileUsecase) GetProfile(ctx context.Context, link leaf.Link) (*domain.Profile, error) {
	ctx, span := tracer.Start(ctx, "Profile.Usecase.GetProfile")
	defer span.End()

	ent, err := uc.store.GetComponents(ctx, link, domain.ProfileComponents)
	if err != nil {
		span.RecordError(err)
		return nil, domain.StoreError{Op: "get_components", Err: err}
	}
	if ent == nil {
		return nil, domain.NotFoundError{Resource: "profile"}
	}

	profile := &domain.Profile{
		Tags:  []string{},
		Links: []domain.WebLink{},
	}
	if c, ok := leaf.Get[leaf.Name](ent, leaf.NameType); ok {
		profile.DisplayName = c.Value
	}
	if c, ok := leaf.Get[leaf.Description](ent, leaf.DescriptionType); ok {
		profile.Bio = c.Value
	}
	if c, ok := leaf.Get[domain.Username](ent, domain.UsernameType); ok {
		profile.Username = c.Value
	}
	if c, ok := leaf.Get[domain.Tags](ent, domain.TagsType); ok {
		profile.Tags = append(profile.Tags, c.Value...)
	}
	if c, ok := leaf.Get[domain.WeirdCustomDomain](ent, domain.WeirdCustomDomainType); ok {
		profile.CustomDomain = c.Value
	}
	if c, ok := leaf.Get[domain.WebLinks](ent, domain.WebLinksType); ok {
		profile.Links = append(profile.Links, c.Value...)
	}
	if c, ok := leaf.Get[domain.MastodonProfileComponent](ent, domain.MastodonProfileType); ok {
		mastodon := c.Value
		profile.MastodonProfile = &mastodon
	}
	if c, ok := leaf.Get[domain.WeirdPubpageTheme](ent, domain.WeirdPubpageThemeType); ok {
		profile.PubpageTheme = c.Value
	}

	return profile, nil
}

// SetProfile writes profile to link. Every optional field either adds its
// component or deletes it. Deletes are issued before adds because the store
// cannot mix both in one batch.
func (uc *ProfileUsecase) SetProfile(ctx context.Context, link leaf.Link, profile domain.Profile) error {
	ctx, span := tracer.Start(ctx, "Profile.Usecase.SetProfile")
	defer span.End()

	adds, dels, err := stageProfile(profile)
	if err != nil {
		span.RecordError(err)
		return err
	}

	// TODO: issue deletes and adds in one request once the store accepts mixed batches.
	if len(dels) > 0 {
		err = uc.store.DelComponents(ctx, link, dels)
		if err != nil {
			span.RecordError(err)
			return domain.StoreError{Op: "del_components", Err: err}
		}
	}
	err = uc.store.AddComponents(ctx, link, adds)
	if err != nil {
		span.RecordError(err)
		return domain.StoreError{Op: "add_components", Err: err}
	}

	uc.publish(ctx, domain.ProfileEventUpdated, link)
	return nil
}

func stageProfile(profile domain.Profile) ([]leaf.Component, []leaf.ComponentType, error) {
	var adds []leaf.Component
	var dels []leaf.ComponentType

	if strings.TrimSpace(profile.DisplayName) != "" {
		adds = append(adds, leaf.NewName(profile.DisplayName))
	} else {
		dels = append(dels, leaf.NameType)
	}

	if strings.TrimSpace(profile.Bio) != "" {
		adds = append(adds, leaf.NewDescription(profile.Bio))
	} else {
		dels = append(dels, leaf.DescriptionType)
	}

	if username := strings.TrimSpace(profile.Username); username != "" {
		c, err := domain.NewUsername(username)
		if err != nil {
			return nil, nil, err
		}
		adds = append(adds, c)
	} else {
		dels = append(dels, domain.UsernameType)
	}

	if customDomain := domain.NormalizeDomain(profile.CustomDomain); customDomain != "" {
		c, err := domain.NewWeirdCustomDomain(customDomain)
		if err != nil {
			return nil, nil, err
		}
		adds = append(adds, c)
	} else {
		dels = append(dels, domain.WeirdCustomDomainType)
	}

	if m := profile.MastodonProfile; m != nil && (m.Username != "" || m.Server != "") {
		c, err := domain.NewMastodonProfile(*m)
		if err != nil {
			return nil, nil, err
		}
		adds = append(adds, c)
	} else {
		dels = append(dels, domain.MastodonProfileType)
	}

	if strings.TrimSpace(profile.PubpageTheme) != "" {
		adds = append(adds, domain.NewWeirdPubpageTheme(profile.PubpageTheme))
	} else {
		dels = append(dels, domain.WeirdPubpageThemeType)
	}

	links, err := domain.NewWebLinks(profile.Links)
	if err != nil {
		return nil, nil, err
	}
	adds = append(adds, links, domain.NewTags(profile.Tags))

	return adds, dels, nil
}

func (uc *ProfileUsecase) GetProfileByID(ctx context.Context, userID string) (*domain.Profile, error) {
	return uc.GetProfile(ctx, uc.ProfileLinkByID(userID))
}

func (uc *ProfileUsecase) GetProfileByUsername(ctx context.Context, username string) (*domain.Profile, error) {
	link, err := uc.ProfileLinkByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return uc.GetProfile(ctx, link)
}

func (uc *ProfileUsecase) SetProfileByID(ctx context.Context, userID string, profile domain.Profile) error {
	return uc.SetProfile(ctx, uc.ProfileLinkByID(userID), profile)
}

func (uc *ProfileUsecase) SetProfileByUsername(ctx context.Context, username string, profile domain.Profile) error {
	link, err := uc.ProfileLinkByUsername(ctx, username)
	if err != nil {
		return err
	}
	return uc.SetProfile(ctx, link, profile)
}

// GetProfiles materializes every profile entity. Entities that cannot be
// read are skipped.
func (uc *ProfileUsecase) GetProfiles(ctx context.Context) ([]domain.Profile, error) {
	ctx, span := tracer.Start(ctx, "Profile.Usecase.GetProfiles")
	defer span.End()

	entities, err := uc.store.ListEntities(ctx, uc.profilesLink())
	if err != nil {
		span.RecordError(err)
		return nil, domain.StoreError{Op: "list_entities", Err: err}
	}

	profiles := make([]domain.Profile, 0, len(entities))
	for _, link := range entities {
		profile, err := uc.GetProfile(ctx, link)
		if err != nil {
			slog.DebugContext(
				ctx, "skipping unreadable profile",
				slog.String("link", link.String()),
				slog.String("error", err.Error()),
				slog.String("module", "profile"),
			)
			continue
		}
		profiles = append(profiles, *profile)
	}
	return profiles, nil
}

// GetCustomDomain returns the stored custom domain of a user, or "" when
// none is set.
func (uc *ProfileUsecase) GetCustomDomain(ctx context.Context, userID string) (string, error) {
	ent, err := uc.store.GetComponents(ctx, uc.ProfileLinkByID(userID), []leaf.ComponentType{domain.WeirdCustomDomainType})
	if err != nil {
		return "", domain.StoreError{Op: "get_components", Err: err}
	}
	if ent == nil {
		return "", domain.NotFoundError{Resource: "profile"}
	}
	c, _ := leaf.Get[domain.WeirdCustomDomain](ent, domain.WeirdCustomDomainType)
	return c.Value, nil
}

// SetCustomDomain stores customDomain for the user, or removes the
// component when customDomain is blank. It performs no verification.
func (uc *ProfileUsecase) SetCustomDomain(ctx context.Context, userID string, customDomain string) error {
	ctx, span := tracer.Start(ctx, "Profile.Usecase.SetCustomDomain")
	defer span.End()

	link := uc.ProfileLinkByID(userID)
	customDomain = domain.NormalizeDomain(customDomain)

	if customDomain == "" {
		err := uc.store.DelComponents(ctx, link, []leaf.ComponentType{domain.WeirdCustomDomainType})
		if err != nil {
			span.RecordError(err)
			return domain.StoreError{Op: "del_components", Err: err}
		}
	} else {
		c, err := domain.NewWeirdCustomDomain(customDomain)
		if err != nil {
			return err
		}
		err = uc.store.AddComponents(ctx, link, []leaf.Component{c})
		if err != nil {
			span.RecordError(err)
			return domain.StoreError{Op: "add_components", Err: err}
		}
	}

	uc.publish(ctx, domain.ProfileEventCustomDomain, link)
	return nil
}

func (uc *ProfileUsecase) GetAvatar(ctx context.Context, link leaf.Link) (leaf.RawImage, error) {
	ent, err := uc.store.GetComponents(ctx, link, []leaf.ComponentType{leaf.RawImageType})
	if err != nil {
		return leaf.RawImage{}, domain.StoreError{Op: "get_components", Err: err}
	}
	avatar, ok := leaf.Get[leaf.RawImage](ent, leaf.RawImageType)
	if !ok {
		return leaf.RawImage{}, domain.NotFoundError{Resource: "avatar"}
	}
	return avatar, nil
}

func (uc *ProfileUsecase) SetAvatar(ctx context.Context, link leaf.Link, avatar leaf.RawImage) error {
	err := uc.store.AddComponents(ctx, link, []leaf.Component{avatar})
	if err != nil {
		return domain.StoreError{Op: "add_components", Err: err}
	}
	uc.publish(ctx, domain.ProfileEventAvatar, link)
	return nil
}

func (uc *ProfileUsecase) GetAvatarByID(ctx context.Context, userID string) (leaf.RawImage, error) {
	return uc.GetAvatar(ctx, uc.ProfileLinkByID(userID))
}

func (uc *ProfileUsecase) SetAvatarByID(ctx context.Context, userID string, avatar leaf.RawImage) error {
	return uc.SetAvatar(ctx, uc.ProfileLinkByID(userID), avatar)
}

func (uc *ProfileUsecase) GetAvatarByUsername(ctx context.Context, username string) (leaf.RawImage, error) {
	link, err := uc.ProfileLinkByUsername(ctx, username)
	if err != nil {
		return leaf.RawImage{}, err
	}
	return uc.GetAvatar(ctx, link)
}

func (uc *ProfileUsecase) SetAvatarByUsername(ctx context.Context, username string, avatar leaf.RawImage) error {
	link, err := uc.ProfileLinkByUsername(ctx, username)
	if err != nil {
		return err
	}
	return uc.SetAvatar(ctx, link, avatar)
}

func (uc *ProfileUsecase) publish(ctx context.Context, eventType string, link leaf.Link) {
	if uc.events == nil {
		return
	}
	err := uc.events.PublishProfileEvent(ctx, domain.ProfileEvent{Type: eventType, Link: link.String()})
	if err != nil {
		slog.WarnContext(
			ctx, "failed to publish profile event",
			slog.String("type", eventType),
			slog.String("error", err.Error()),
			slog.String("module", "profile"),
		)
	}
}
