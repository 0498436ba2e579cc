package gateway

import (
	"context"

	"github.com/pkg/errors"

	"github.com/totegamma/weird/client"
	"github.com/totegamma/weird/internal/usecase"
)

// DomainGateway verifies candidate custom domains over HTTP.
type DomainGateway struct {
	client *client.Client
}

func NewDomainGateway(cl *client.Client) *DomainGateway {
	return &DomainGateway{client: cl}
}

func (g *DomainGateway) VerifyChallenge(ctx context.Context, domainName, challenge, userID string) error {
	err := g.client.VerifyChallenge(ctx, domainName, challenge, userID)
	if err != nil {
		return errors.Wrapf(err, "challenge request to %s", domainName)
	}
	return nil
}

var _ usecase.DomainVerifier = (*DomainGateway)(nil)
