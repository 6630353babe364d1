package cli

import (
	"context"

	"github.com/dmitrijs2005/gophnotes/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

func (a *App) credentials() (string, string, error) {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return "", "", err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return "", "", err
	}
	defer common.WipeByteArray(password)

	return email, string(password), nil
}

// Register prompts for an email and password and creates an account. The
// new account is signed in right away.
func (a *App) Register(ctx context.Context) error {
	email, password, err := a.credentials()
	if err != nil {
		return err
	}

	if msg := a.controller.SignUp(ctx, email, password); msg != "" {
		a.println(msg)
		return nil
	}
	a.println("Success!")
	return nil
}

func (a *App) Login(ctx context.Context) error {
	email, password, err := a.credentials()
	if err != nil {
		return err
	}

	if msg := a.controller.SignIn(ctx, email, password); msg != "" {
		a.println(msg)
		return nil
	}
	a.println("Signed in.")
	return nil
}

// Logout ends the session. The card list is cleared before it returns.
func (a *App) Logout(ctx context.Context) error {
	a.controller.SignOut(ctx)

	a.mu.Lock()
	a.lastListed = ""
	a.mu.Unlock()

	a.println("Signed out.")
	return nil
}
