package service

import (
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

const challengeLength = 32

// ChallengeService derives domain ownership challenges. A challenge is a
// pure function of the user id and the instance secret, so the value shown
// to the user and the value checked on submission match without storage.
type ChallengeService struct {
	secret []byte
}

func NewChallengeService(secret string) (*ChallengeService, error) {
	if secret == "" {
		return nil, fmt.Errorf("challenge secret is empty")
	}
	key := blake2b.Sum256([]byte(secret))
	return &ChallengeService{secret: key[:]}, nil
}

func (s *ChallengeService) CreateChallenge(userID string) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("user id is empty")
	}
	h, err := blake2b.New256(s.secret)
	if err != nil {
		return "", err
	}
	h.Write([]byte(userID))
	return hex.EncodeToString(h.Sum(nil))[:challengeLength], nil
}
