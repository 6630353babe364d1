package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/gophnotes/internal/notes"
)

const editorHelp = "Editor commands: title <text>, content [text], color <name>, ai <prompt>, show, save, close"

// runEditor is the nested prompt for the open draft. It returns once the
// draft is saved or closed, or input ends.
func (a *App) runEditor(ctx context.Context) error {
	a.println(editorHelp)
	a.showDraft()

	for {
		_, _ = fmt.Fprint(a.out, "note> ")
		line, err := readLine(a.reader)
		if err != nil {
			a.controller.Close()
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		cmd, rest, _ := strings.Cut(line, " ")
		rest = strings.TrimSpace(rest)

		switch cmd {
		case "":
			continue

		case "title":
			_ = a.controller.SetTitle(rest)

		case "content":
			if rest == "" {
				rest, err = GetMultiline(a.reader, "Enter content", a.out)
				if err != nil {
					return err
				}
			}
			_ = a.controller.SetContent(rest)

		case "color":
			color, ok := notes.ResolveColor(rest)
			if !ok {
				a.println("Unknown color:", rest)
				_ = a.Colors(ctx)
				continue
			}
			_ = a.controller.SetColor(color)

		case "ai":
			if rest == "" {
				a.println("Usage: ai <prompt>")
				continue
			}
			a.println("Generating...")
			_ = a.controller.Assist(ctx, rest)
			a.showDraft()

		case "show":
			a.showDraft()

		case "save":
			_ = a.controller.Save(ctx)
			a.afterEditor()
			return nil

		case "close", "cancel":
			a.controller.Close()
			a.afterEditor()
			return nil

		case "help":
			a.println(editorHelp)

		default:
			a.println("Unknown editor command:", cmd)
		}
	}
}

func (a *App) showDraft() {
	v := a.controller.View()
	if v.Editor == nil {
		return
	}
	f := v.Editor.Fields
	a.println("Title:  " + f.Title)
	a.println("Color:  " + notes.ColorName(f.Color))
	a.println("Content:")
	if f.Content != "" {
		a.println(f.Content)
	}
}

// afterEditor forces the next snapshot to be printed, since renders were
// suppressed while the editor was open.
func (a *App) afterEditor() {
	a.mu.Lock()
	a.lastListed = ""
	a.mu.Unlock()
}
