package rpc

import (
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/notes"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// Credentials is the payload of SignUp and SignIn.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse is returned by SignUp, SignIn and RefreshToken.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	UserID       string `json:"user_id"`
	Email        string `json:"email"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type SignOutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type PingResponse struct {
	Status string `json:"status"`
}

// NoteMessage is a note on the wire. A nil timestamp means the write has not
// been confirmed by the server yet.
type NoteMessage struct {
	ID        string                 `json:"id"`
	OwnerID   string                 `json:"owner_id"`
	Title     string                 `json:"title"`
	Content   string                 `json:"content"`
	Color     string                 `json:"color"`
	CreatedAt *timestamppb.Timestamp `json:"created_at,omitempty"`
	UpdatedAt *timestamppb.Timestamp `json:"updated_at,omitempty"`
}

// CreateNoteRequest may carry a client-generated ID; the server assigns one
// when it is empty.
type CreateNoteRequest struct {
	ID      string `json:"id,omitempty"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Color   string `json:"color"`
}

// UpdateNoteRequest merges the non-nil fields into the stored note.
type UpdateNoteRequest struct {
	ID    string      `json:"id"`
	Patch notes.Patch `json:"patch"`
}

type DeleteNoteRequest struct {
	ID string `json:"id"`
}

type NoteResponse struct {
	Note *NoteMessage `json:"note"`
}

type BackupResponse struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

type WatchRequest struct{}

// Snapshot is the complete, ordered collection of the caller's notes.
type Snapshot struct {
	Notes []*NoteMessage `json:"notes"`
}

// FromNote converts a stored note to its wire form.
func FromNote(n notes.Note) *NoteMessage {
	return &NoteMessage{
		ID:        n.ID,
		OwnerID:   n.OwnerID,
		Title:     n.Title,
		Content:   n.Content,
		Color:     n.Color,
		CreatedAt: timestampOrNil(n.CreatedAt),
		UpdatedAt: timestampOrNil(n.UpdatedAt),
	}
}

// Fields returns the editable part of m.
func (m *NoteMessage) Fields() notes.Fields {
	return notes.Fields{Title: m.Title, Content: m.Content, Color: m.Color}
}

// Timestamps returns the server timestamps, nil while pending.
func (m *NoteMessage) Timestamps() (created, updated *time.Time) {
	return timeOrNil(m.CreatedAt), timeOrNil(m.UpdatedAt)
}

func timestampOrNil(t time.Time) *timestamppb.Timestamp {
	if t.IsZero() {
		return nil
	}
	return timestamppb.New(t)
}

func timeOrNil(ts *timestamppb.Timestamp) *time.Time {
	if ts == nil {
		return nil
	}
	t := ts.AsTime()
	return &t
}
