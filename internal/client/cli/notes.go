package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/gophnotes/internal/client/ui"
	"github.com/dmitrijs2005/gophnotes/internal/notes"
)

var errBadIndex = errors.New("bad note number")

func (a *App) printNotes(v ui.View) {
	if len(v.Notes) == 0 {
		a.println("No notes yet. Type 'new' to add one.")
		return
	}
	for i, n := range v.Notes {
		title := n.Title
		if title == "" {
			title = "(untitled)"
		}
		a.println(fmt.Sprintf("[%d] %s  <%s>  %s", i+1, title, notes.ColorName(n.Color), n.UpdatedAt.Local().Format("2006-01-02 15:04")))
		if n.Content != "" {
			first, _, more := strings.Cut(n.Content, "\n")
			if more {
				first += " ..."
			}
			a.println("    " + first)
		}
	}
}

func (a *App) List(_ context.Context) error {
	a.printNotes(a.controller.View())
	return nil
}

// noteAt resolves a 1-based card number from the current list.
func (a *App) noteAt(arg string) (notes.Note, error) {
	list := a.controller.View().Notes
	i, err := strconv.Atoi(arg)
	if err != nil || i < 1 || i > len(list) {
		return notes.Note{}, errBadIndex
	}
	return list[i-1], nil
}

func (a *App) New(ctx context.Context) error {
	a.controller.OpenNew()
	return a.runEditor(ctx)
}

func (a *App) Edit(ctx context.Context, arg string) error {
	n, err := a.noteAt(arg)
	if err != nil {
		a.println("Usage: edit <n>")
		return err
	}
	if err := a.controller.OpenEdit(n.ID); err != nil {
		a.println("That note is gone.")
		return err
	}
	return a.runEditor(ctx)
}

// Color recolors card n, asking for the color when it is not given.
func (a *App) Color(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.println("Usage: color <n> [color]")
		return errBadIndex
	}
	n, err := a.noteAt(args[0])
	if err != nil {
		a.println("Usage: color <n> [color]")
		return err
	}
	if err := a.controller.OpenMenu(n.ID); err != nil {
		return err
	}
	if err := a.controller.OpenColorPicker(); err != nil {
		return err
	}

	choice := ""
	if len(args) > 1 {
		choice = args[1]
	} else {
		_ = a.Colors(ctx)
		choice, err = getSimpleText(a.reader, "Pick a color (empty to cancel)", a.out)
		if err != nil {
			a.controller.DismissMenu()
			return err
		}
	}

	color, ok := notes.ResolveColor(choice)
	if !ok {
		a.controller.DismissMenu()
		if choice != "" {
			a.println("Unknown color:", choice)
		}
		return nil
	}
	return a.controller.PickColor(ctx, color)
}

func (a *App) Delete(ctx context.Context, arg string) error {
	n, err := a.noteAt(arg)
	if err != nil {
		a.println("Usage: delete <n>")
		return err
	}
	if err := a.controller.OpenMenu(n.ID); err != nil {
		return err
	}
	return a.controller.DeleteFromMenu(ctx)
}

func (a *App) Colors(_ context.Context) error {
	names := make([]string, 0, len(notes.Palette))
	for _, c := range notes.Palette {
		names = append(names, notes.ColorName(c))
	}
	a.println("Colors:", strings.Join(names, ", "))
	return nil
}

func (a *App) Backup(ctx context.Context) error {
	if a.backups == nil {
		a.println("Backups need a server connection.")
		return nil
	}
	key, count, err := a.backups.BackupNotes(ctx)
	if err != nil {
		a.println("Backup failed:", err)
		return err
	}
	a.println(fmt.Sprintf("Backed up %d notes to %s", count, key))
	return nil
}
