package session

import (
	"context"

	"github.com/dmitrijs2005/gophnotes/internal/client/client"
)

// AccountAPI is the part of the gRPC client used by RemoteProvider.
type AccountAPI interface {
	SignUp(ctx context.Context, email, password string) (*client.Account, error)
	SignIn(ctx context.Context, email, password string) (*client.Account, error)
	SignOut(ctx context.Context) error
}

// RemoteProvider authenticates against the notes server. Auth failures
// arrive as *common.AuthError from the client.
type RemoteProvider struct {
	api AccountAPI
}

func NewRemoteProvider(api AccountAPI) *RemoteProvider {
	return &RemoteProvider{api: api}
}

func (p *RemoteProvider) SignUp(ctx context.Context, email, password string) (*Identity, error) {
	acc, err := p.api.SignUp(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return &Identity{ID: acc.UserID, Email: acc.Email}, nil
}

func (p *RemoteProvider) SignIn(ctx context.Context, email, password string) (*Identity, error) {
	acc, err := p.api.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return &Identity{ID: acc.UserID, Email: acc.Email}, nil
}

func (p *RemoteProvider) SignOut(ctx context.Context) error {
	return p.api.SignOut(ctx)
}
