package session

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/cryptox"
	"github.com/google/uuid"
)

type localAccount struct {
	id   string
	hash string
}

// LocalProvider keeps accounts in process memory. It applies the same
// validation and error codes as the notes server.
type LocalProvider struct {
	mu       sync.Mutex
	accounts map[string]localAccount
}

func NewLocalProvider() *LocalProvider {
	return &LocalProvider{accounts: make(map[string]localAccount)}
}

func (p *LocalProvider) SignUp(_ context.Context, email, password string) (*Identity, error) {
	email, err := common.NormalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if err := common.CheckPassword(password); err != nil {
		return nil, err
	}

	hash, err := cryptox.HashPassword([]byte(password))
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.accounts[email]; ok {
		return nil, common.NewAuthError(common.AuthCodeEmailAlreadyInUse)
	}
	acc := localAccount{id: uuid.NewString(), hash: hash}
	p.accounts[email] = acc

	return &Identity{ID: acc.id, Email: email}, nil
}

func (p *LocalProvider) SignIn(_ context.Context, email, password string) (*Identity, error) {
	email, err := common.NormalizeEmail(email)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	acc, ok := p.accounts[email]
	p.mu.Unlock()
	if !ok {
		return nil, common.NewAuthError(common.AuthCodeUserNotFound)
	}

	match, err := cryptox.VerifyPassword(acc.hash, []byte(password))
	if err != nil {
		return nil, err
	}
	if !match {
		return nil, common.NewAuthError(common.AuthCodeWrongPassword)
	}
	return &Identity{ID: acc.id, Email: email}, nil
}

func (p *LocalProvider) SignOut(context.Context) error {
	return nil
}
