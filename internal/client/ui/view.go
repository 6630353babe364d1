package ui

import (
	"github.com/dmitrijs2005/gophnotes/internal/client/session"
	"github.com/dmitrijs2005/gophnotes/internal/notes"
)

type SessionState int

const (
	SessionLoading SessionState = iota
	SessionAuthenticated
	SessionUnauthenticated
)

func (s SessionState) String() string {
	switch s {
	case SessionAuthenticated:
		return "authenticated"
	case SessionUnauthenticated:
		return "unauthenticated"
	default:
		return "loading"
	}
}

type MenuState int

const (
	MenuClosed MenuState = iota
	MenuOpen
	MenuColorPicker
)

// DraftAction says what saving a draft does: NewNote or EditNote.
type DraftAction interface {
	isDraftAction()
}

type NewNote struct{}

type EditNote struct {
	ID string
}

func (NewNote) isDraftAction()  {}
func (EditNote) isDraftAction() {}

// Draft is the unsaved editor content. It is never written to storage
// until Save.
type Draft struct {
	Action DraftAction
	Fields notes.Fields
}

// View is an immutable copy of everything the presentation layer draws.
type View struct {
	Session SessionState
	User    *session.Identity
	Notes   []notes.Note

	// Editor is nil while the editor is closed.
	Editor    *Draft
	Assisting bool

	Menu       MenuState
	MenuNoteID string
}
