package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/totegamma/weird/internal/domain"
	"github.com/totegamma/weird/leaf"
)

func TestProfileLinkByID(t *testing.T) {
	uc := NewProfileUsecase(newRecordingStore(), testConfig, nil, nil)

	link := uc.ProfileLinkByID("u1")
	assert.Equal(t, leaf.NewLink("weird-test", "profiles", "u1"), link)
	assert.True(t, link.Equal(uc.ProfileLinkByID("u1")))
}

func TestSetProfileFreshEntity(t *testing.T) {
	ctx := context.Background()
	uc := NewProfileUsecase(newRecordingStore(), testConfig, nil, nil)
	link := uc.ProfileLinkByID("u1")

	require.NoError(t, uc.SetProfile(ctx, link, domain.Profile{Tags: []string{"a", "b"}, Links: []domain.WebLink{}}))

	got, err := uc.GetProfile(ctx, link)
	require.NoError(t, err)
	assert.Equal(t, &domain.Profile{Tags: []string{"a", "b"}, Links: []domain.WebLink{}}, got)
}

func TestSetProfileOmittedFieldDeletesComponent(t *testing.T) {
	ctx := context.Background()
	uc := NewProfileUsecase(newRecordingStore(), testConfig, nil, nil)
	link := uc.ProfileLinkByID("u1")

	require.NoError(t, uc.SetProfile(ctx, link, domain.Profile{DisplayName: "Ann", Tags: []string{}, Links: []domain.WebLink{}}))
	got, err := uc.GetProfile(ctx, link)
	require.NoError(t, err)
	assert.Equal(t, "Ann", got.DisplayName)

	require.NoError(t, uc.SetProfile(ctx, link, domain.Profile{Tags: []string{}, Links: []domain.WebLink{}}))
	got, err = uc.GetProfile(ctx, link)
	require.NoError(t, err)
	assert.Equal(t, "", got.DisplayName)
}

func TestSetProfileRoundTripAndIdempotence(t *testing.T) {
	ctx := context.Background()
	uc := NewProfileUsecase(newRecordingStore(), testConfig, nil, nil)
	link := uc.ProfileLinkByID("u1")

	profile := domain.Profile{
		Username:        "ann@weird.one",
		CustomDomain:    "ann.example",
		DisplayName:     "Ann",
		Tags:            []string{"music", "rust"},
		Bio:             "hello",
		Links:           []domain.WebLink{{Label: "blog", URL: "https://ann.example/blog"}, {URL: "https://example.org"}},
		MastodonProfile: &domain.MastodonProfile{Username: "ann", Server: "mastodon.social"},
		PubpageTheme:    "dark",
	}

	require.NoError(t, uc.SetProfile(ctx, link, profile))
	first, err := uc.GetProfile(ctx, link)
	require.NoError(t, err)
	assert.Equal(t, &profile, first)

	require.NoError(t, uc.SetProfile(ctx, link, profile))
	second, err := uc.GetProfile(ctx, link)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSetProfileEmptyStringsCollapseToAbsent(t *testing.T) {
	ctx := context.Background()
	uc := NewProfileUsecase(newRecordingStore(), testConfig, nil, nil)
	link := uc.ProfileLinkByID("u1")

	require.NoError(t, uc.SetProfile(ctx, link, domain.Profile{
		DisplayName:     "  ",
		Bio:             "",
		MastodonProfile: &domain.MastodonProfile{},
	}))

	got, err := uc.GetProfile(ctx, link)
	require.NoError(t, err)
	assert.Equal(t, &domain.Profile{Tags: []string{}, Links: []domain.WebLink{}}, got)
}

func TestSetProfileDeletesBeforeAdds(t *testing.T) {
	ctx := context.Background()
	store := newRecordingStore()
	uc := NewProfileUsecase(store, testConfig, nil, nil)
	link := uc.ProfileLinkByID("u1")

	require.NoError(t, uc.SetProfile(ctx, link, domain.Profile{DisplayName: "Ann"}))

	require.Equal(t, []string{"del", "add"}, store.ops())
	del, add := store.calls[0], store.calls[1]
	assert.ElementsMatch(t, []string{"Description", "Username", "WeirdCustomDomain", "MastodonProfile", "WeirdPubpageTheme"}, del.names)
	assert.ElementsMatch(t, []string{"Name", "WebLinks", "Tags"}, add.names)
}

func TestSetProfileEachOptionalFieldStagedExactlyOnce(t *testing.T) {
	optional := []string{"Name", "Description", "Username", "WeirdCustomDomain", "MastodonProfile", "WeirdPubpageTheme"}

	for _, profile := range []domain.Profile{
		{},
		{DisplayName: "a", Bio: "b", Username: "c@weird.one", CustomDomain: "d.example", MastodonProfile: &domain.MastodonProfile{Username: "e", Server: "f"}, PubpageTheme: "g"},
		{Bio: "b", CustomDomain: "d.example", PubpageTheme: "g"},
	} {
		adds, dels, err := stageProfile(profile)
		require.NoError(t, err)

		seen := map[string]int{}
		for _, c := range adds {
			seen[c.ComponentName()]++
		}
		for _, d := range dels {
			seen[d.Name]++
		}
		for _, name := range optional {
			assert.Equal(t, 1, seen[name], name)
		}
		assert.Equal(t, 1, seen["Tags"])
		assert.Equal(t, 1, seen["WebLinks"])
	}
}

func TestSetProfileSkipsEmptyDeleteBatch(t *testing.T) {
	ctx := context.Background()
	store := newRecordingStore()
	uc := NewProfileUsecase(store, testConfig, nil, nil)

	require.NoError(t, uc.SetProfile(ctx, uc.ProfileLinkByID("u1"), domain.Profile{
		DisplayName:     "a",
		Bio:             "b",
		Username:        "c@weird.one",
		CustomDomain:    "d.example",
		MastodonProfile: &domain.MastodonProfile{Username: "e", Server: "f"},
		PubpageTheme:    "g",
	}))

	assert.Equal(t, []string{"add"}, store.ops())
}

func TestSetProfileValidationFailsBeforeAnyWrite(t *testing.T) {
	ctx := context.Background()
	store := newRecordingStore()
	uc := NewProfileUsecase(store, testConfig, nil, nil)

	err := uc.SetProfile(ctx, uc.ProfileLinkByID("u1"), domain.Profile{
		DisplayName:     "Ann",
		MastodonProfile: &domain.MastodonProfile{Username: "ann"},
	})
	assert.True(t, errors.Is(err, domain.ErrValidation))
	assert.Empty(t, store.calls)
}

func TestSetProfileStoreFailure(t *testing.T) {
	store := newRecordingStore()
	store.failAll = errors.New("connection reset")
	uc := NewProfileUsecase(store, testConfig, nil, nil)

	err := uc.SetProfile(context.Background(), uc.ProfileLinkByID("u1"), domain.Profile{})
	assert.True(t, errors.Is(err, domain.ErrStoreUnavailable))
}

func TestSetProfilePublishesEvent(t *testing.T) {
	pub := &mockPublisher{err: errors.New("redis down")}
	uc := NewProfileUsecase(newRecordingStore(), testConfig, nil, pub)
	link := uc.ProfileLinkByID("u1")

	require.NoError(t, uc.SetProfile(context.Background(), link, domain.Profile{}))
	require.Len(t, pub.events, 1)
	assert.Equal(t, domain.ProfileEvent{Type: domain.ProfileEventUpdated, Link: link.String()}, pub.events[0])
}

func TestGetProfileMissingEntity(t *testing.T) {
	store := newRecordingStore()
	uc := NewProfileUsecase(store, testConfig, nil, nil)

	_, err := uc.GetProfileByID(context.Background(), "nobody")
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	require.Len(t, store.calls, 1)
	assert.Len(t, store.calls[0].names, 8)
}

func seedUsers(t *testing.T, uc *ProfileUsecase, users map[string]string) {
	t.Helper()
	for id, username := range users {
		require.NoError(t, uc.SetProfileByID(context.Background(), id, domain.Profile{Username: username}))
	}
}

func TestProfileLinkByUsername(t *testing.T) {
	ctx := context.Background()
	uc := NewProfileUsecase(newRecordingStore(), testConfig, nil, nil)
	seedUsers(t, uc, map[string]string{"u1": "ann@weird.one", "u2": "bob@weird.one"})

	link, err := uc.ProfileLinkByUsername(ctx, "bob@weird.one")
	require.NoError(t, err)
	assert.True(t, link.Equal(uc.ProfileLinkByID("u2")))

	_, err = uc.ProfileLinkByUsername(ctx, "carol@weird.one")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestProfileLinkByUsernameRejectsForeignDomain(t *testing.T) {
	store := newRecordingStore()
	uc := NewProfileUsecase(store, testConfig, nil, nil)

	_, err := uc.ProfileLinkByUsername(context.Background(), "ann@elsewhere.example")
	assert.ErrorIs(t, err, domain.ErrUnsupportedFederation)
	assert.Empty(t, store.calls)
}

func TestProfileLinkByUsernameDuplicateReturnsOneMatch(t *testing.T) {
	uc := NewProfileUsecase(newRecordingStore(), testConfig, nil, nil)
	seedUsers(t, uc, map[string]string{"u1": "ann@weird.one", "u2": "ann@weird.one"})

	link, err := uc.ProfileLinkByUsername(context.Background(), "ann@weird.one")
	require.NoError(t, err)
	assert.True(t, link.Equal(uc.ProfileLinkByID("u1")) || link.Equal(uc.ProfileLinkByID("u2")))
}

func TestProfileLinkByUsernameUsesCache(t *testing.T) {
	ctx := context.Background()
	store := newRecordingStore()
	cache := newMockLinkCache()
	uc := NewProfileUsecase(store, testConfig, cache, nil)
	seedUsers(t, uc, map[string]string{"u1": "ann@weird.one", "u2": "bob@weird.one"})

	_, err := uc.ProfileLinkByUsername(ctx, "ann@weird.one")
	require.NoError(t, err)
	_, ok := cache.Get(ctx, "ann@weird.one")
	require.True(t, ok)

	store.reset()
	link, err := uc.ProfileLinkByUsername(ctx, "ann@weird.one")
	require.NoError(t, err)
	assert.True(t, link.Equal(uc.ProfileLinkByID("u1")))
	assert.Equal(t, []string{"get"}, store.ops())
}

func TestProfileLinkByUsernameEvictsStaleCacheEntry(t *testing.T) {
	ctx := context.Background()
	store := newRecordingStore()
	cache := newMockLinkCache()
	uc := NewProfileUsecase(store, testConfig, cache, nil)
	seedUsers(t, uc, map[string]string{"u1": "ann@weird.one"})

	cache.Set(ctx, "ann@weird.one", uc.ProfileLinkByID("u1"))
	require.NoError(t, uc.SetProfileByID(ctx, "u1", domain.Profile{Username: "anne@weird.one"}))

	_, err := uc.ProfileLinkByUsername(ctx, "ann@weird.one")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.Equal(t, []string{"ann@weird.one"}, cache.deleted)
}

func TestGetProfilesSkipsUnreadableEntities(t *testing.T) {
	ctx := context.Background()
	store := newRecordingStore()
	uc := NewProfileUsecase(store, testConfig, nil, nil)
	seedUsers(t, uc, map[string]string{"u1": "a@weird.one", "u2": "b@weird.one", "u3": "c@weird.one"})

	store.failGet[uc.ProfileLinkByID("u2").String()] = true

	profiles, err := uc.GetProfiles(ctx)
	require.NoError(t, err)
	require.Len(t, profiles, 2)

	usernames := []string{profiles[0].Username, profiles[1].Username}
	assert.ElementsMatch(t, []string{"a@weird.one", "c@weird.one"}, usernames)
}

func TestCustomDomainSetAndClear(t *testing.T) {
	ctx := context.Background()
	store := newRecordingStore()
	uc := NewProfileUsecase(store, testConfig, nil, nil)
	seedUsers(t, uc, map[string]string{"u1": "ann@weird.one"})

	require.NoError(t, uc.SetCustomDomain(ctx, "u1", "Ann.Example"))
	d, err := uc.GetCustomDomain(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "ann.example", d)

	require.NoError(t, uc.SetCustomDomain(ctx, "u1", ""))
	d, err = uc.GetCustomDomain(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "", d)

	profile, err := uc.GetProfileByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "ann@weird.one", profile.Username)
}

func TestAvatarIsIndependentOfProfile(t *testing.T) {
	ctx := context.Background()
	uc := NewProfileUsecase(newRecordingStore(), testConfig, nil, nil)
	seedUsers(t, uc, map[string]string{"u1": "ann@weird.one"})

	_, err := uc.GetAvatarByID(ctx, "u1")
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	img, err := leaf.NewRawImage("image/png", []byte{1, 2, 3})
	require.NoError(t, err)
	require.NoError(t, uc.SetAvatarByUsername(ctx, "ann@weird.one", img))

	got, err := uc.GetAvatarByUsername(ctx, "ann@weird.one")
	require.NoError(t, err)
	assert.Equal(t, img, got)

	require.NoError(t, uc.SetProfileByID(ctx, "u1", domain.Profile{Username: "ann@weird.one"}))
	got, err = uc.GetAvatarByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, img, got)
}
