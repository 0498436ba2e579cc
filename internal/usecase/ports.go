package usecase

import (
	"context"

	"github.com/totegamma/weird/internal/domain"
	"github.com/totegamma/weird/leaf"
)

// LinkCache remembers which link last matched a username. Entries may be
// stale; callers re-validate them against the store.
type LinkCache interface {
	Get(ctx context.Context, username string) (leaf.Link, bool)
	Set(ctx context.Context, username string, link leaf.Link)
	Delete(ctx context.Context, username string)
}

// ProfileEventPublisher announces writes to profile entities.
type ProfileEventPublisher interface {
	PublishProfileEvent(ctx context.Context, event domain.ProfileEvent) error
}

// ChallengeIssuer derives the domain ownership challenge for a user.
type ChallengeIssuer interface {
	CreateChallenge(userID string) (string, error)
}

// DomainVerifier checks that a candidate domain echoes a challenge.
type DomainVerifier interface {
	VerifyChallenge(ctx context.Context, domain, challenge, userID string) error
}
