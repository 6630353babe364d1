package cli

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/client/ui"
	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/filex"
	"github.com/dmitrijs2005/gophnotes/internal/notes"
)

// FileBackup is the local-mode Backuper: it writes the rendered collection
// as a JSON file under a directory in the working directory.
type FileBackup struct {
	dir  string
	view func() ui.View
	now  func() time.Time
}

func NewFileBackup(dir string, ctrl *ui.Controller) *FileBackup {
	return &FileBackup{dir: dir, view: ctrl.View, now: time.Now}
}

func (b *FileBackup) BackupNotes(_ context.Context) (string, int, error) {
	v := b.view()
	if v.User == nil {
		return "", 0, common.ErrIdentityRequired
	}

	root, err := filex.EnsureSubdDir(b.dir)
	if err != nil {
		return "", 0, err
	}

	doc := notes.NewBackup(v.User.ID, v.Notes, b.now())
	data, err := doc.Encode()
	if err != nil {
		return "", 0, err
	}

	path, err := filex.WriteUnder(root, doc.Key(), data)
	if err != nil {
		return "", 0, err
	}
	return path, len(v.Notes), nil
}
