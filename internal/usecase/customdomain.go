package usecase

import (
	"context"
	"crypto/subtle"

	"github.com/pkg/errors"

	"github.com/totegamma/weird/internal/domain"
)

type CustomDomainUsecase struct {
	profiles   *ProfileUsecase
	challenges ChallengeIssuer
	verifier   DomainVerifier
}

func NewCustomDomainUsecase(profiles *ProfileUsecase, challenges ChallengeIssuer, verifier DomainVerifier) *CustomDomainUsecase {
	return &CustomDomainUsecase{
		profiles:   profiles,
		challenges: challenges,
		verifier:   verifier,
	}
}

// CustomDomainPage is what the custom domain settings view shows.
type CustomDomainPage struct {
	Profile      *domain.Profile `json:"profile"`
	DNSChallenge string          `json:"dnsChallenge"`
}

// Load derives the user's challenge and reads their profile. The challenge
// is derived on every call; nothing is persisted.
func (uc *CustomDomainUsecase) Load(ctx context.Context, userID string) (CustomDomainPage, error) {
	ctx, span := tracer.Start(ctx, "CustomDomain.Usecase.Load")
	defer span.End()

	challenge, err := uc.challenges.CreateChallenge(userID)
	if err != nil {
		span.RecordError(err)
		return CustomDomainPage{}, errors.Wrap(err, "failed to create challenge")
	}

	profile, err := uc.profiles.GetProfileByID(ctx, userID)
	if err != nil {
		return CustomDomainPage{}, err
	}

	return CustomDomainPage{Profile: profile, DNSChallenge: challenge}, nil
}

// Submit sets the user's custom domain after the candidate proves it
// serves the user's challenge. A blank candidate removes the custom domain
// without any verification.
func (uc *CustomDomainUsecase) Submit(ctx context.Context, userID, candidate string) error {
	ctx, span := tracer.Start(ctx, "CustomDomain.Usecase.Submit")
	defer span.End()

	customDomain := domain.NormalizeDomain(candidate)
	if customDomain == "" {
		return uc.profiles.SetCustomDomain(ctx, userID, "")
	}

	err := domain.ValidateDomain(customDomain)
	if err != nil {
		return err
	}

	challenge, err := uc.challenges.CreateChallenge(userID)
	if err != nil {
		span.RecordError(err)
		return errors.Wrap(err, "failed to create challenge")
	}

	err = uc.verifier.VerifyChallenge(ctx, customDomain, challenge, userID)
	if err != nil {
		span.RecordError(err)
		return errors.Wrap(domain.ErrVerificationFailed, err.Error())
	}

	return uc.profiles.SetCustomDomain(ctx, userID, customDomain)
}

// Answer reports whether challenge is the current challenge of userID. It
// lets this instance answer verification requests for domains that point
// at it.
func (uc *CustomDomainUsecase) Answer(userID, challenge string) (bool, error) {
	expected, err := uc.challenges.CreateChallenge(userID)
	if err != nil {
		return false, errors.Wrap(err, "failed to create challenge")
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(challenge)) == 1, nil
}
