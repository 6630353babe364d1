package notes

import (
	"encoding/json"
	"fmt"
	"time"
)

// Backup is the exported form of one owner's collection.
type Backup struct {
	OwnerID    string    `json:"owner_id"`
	ExportedAt time.Time `json:"exported_at"`
	Notes      []Note    `json:"notes"`
}

// NewBackup stamps the export in UTC.
func NewBackup(ownerID string, list []Note, at time.Time) Backup {
	if list == nil {
		list = []Note{}
	}
	return Backup{OwnerID: ownerID, ExportedAt: at.UTC(), Notes: list}
}

// Key is the relative object path of the backup, e.g.
// "notes/u1/20250101T120000Z.json".
func (b Backup) Key() string {
	return fmt.Sprintf("notes/%s/%s.json", b.OwnerID, b.ExportedAt.Format("20060102T150405Z"))
}

func (b Backup) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode backup: %w", err)
	}
	return data, nil
}
