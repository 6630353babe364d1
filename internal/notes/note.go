// Package notes holds the note domain types shared by the client and server:
// the Note record, editable field sets, and the fixed color palette.
package notes

import (
	"sort"
	"time"
)

// Note is a single owner-scoped note as delivered in a snapshot.
//
// CreatedAt and UpdatedAt are always assigned by the storage layer; the
// client never supplies its own values.
type Note struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Fields is the editable part of a note.
type Fields struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Color   string `json:"color"`
}

// IsBlank reports whether both title and content are empty.
func (f Fields) IsBlank() bool {
	return f.Title == "" && f.Content == ""
}

// Patch is a partial field merge. Nil members are left unchanged.
type Patch struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
	Color   *string `json:"color,omitempty"`
}

// FullPatch builds a patch that overwrites every editable field.
func FullPatch(f Fields) Patch {
	return Patch{Title: &f.Title, Content: &f.Content, Color: &f.Color}
}

// ColorPatch builds a patch that only touches the color.
func ColorPatch(color string) Patch {
	return Patch{Color: &color}
}

// Apply merges the patch into f and returns the result.
func (p Patch) Apply(f Fields) Fields {
	if p.Title != nil {
		f.Title = *p.Title
	}
	if p.Content != nil {
		f.Content = *p.Content
	}
	if p.Color != nil {
		f.Color = *p.Color
	}
	return f
}

// Fields returns the editable part of n.
func (n Note) Fields() Fields {
	return Fields{Title: n.Title, Content: n.Content, Color: n.Color}
}

// SortByUpdatedDesc orders notes newest-modified first. Equal timestamps
// fall back to id order so repeated snapshots are stable.
func SortByUpdatedDesc(list []Note) {
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].UpdatedAt.Equal(list[j].UpdatedAt) {
			return list[i].UpdatedAt.After(list[j].UpdatedAt)
		}
		return list[i].ID < list[j].ID
	})
}
