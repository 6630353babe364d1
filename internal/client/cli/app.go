package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/client/config"
	"github.com/dmitrijs2005/gophnotes/internal/client/ui"
)

type Mode string

const (
	ModeLocal   Mode = "local"
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// Pinger reports server reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Backuper exports the signed-in user's notes.
type Backuper interface {
	BackupNotes(ctx context.Context) (key string, count int, err error)
}

type App struct {
	config     *config.Config
	controller *ui.Controller
	pinger     Pinger
	backups    Backuper
	reader     *bufio.Reader
	out        io.Writer

	mu         sync.Mutex
	Mode       Mode
	lastListed string
}

// NewApp builds the CLI. pinger and backups are nil in local mode.
func NewApp(c *config.Config, ctrl *ui.Controller, pinger Pinger, backups Backuper, in io.Reader, out io.Writer) *App {
	a := &App{
		config:     c,
		controller: ctrl,
		pinger:     pinger,
		backups:    backups,
		reader:     bufio.NewReader(in),
		out:        out,
		Mode:       ModeLocal,
	}
	if pinger != nil {
		a.Mode = ModeOnline
	}
	return a
}

func (a *App) println(args ...any) {
	_, _ = fmt.Fprintln(a.out, args...)
}

func (a *App) setMode(mode Mode) (prev Mode) {
	a.mu.Lock()
	prev = a.Mode
	a.Mode = mode
	a.mu.Unlock()

	if prev != mode {
		a.println(fmt.Sprintf("Switched to %s mode", mode))
	}
	return prev
}

// Run starts the session, the connectivity watcher and the REPL, and tears
// everything down when the user exits.
func (a *App) Run(ctx context.Context) error {
	a.controller.OnRender(a.render)
	if err := a.controller.Start(); err != nil {
		return err
	}
	defer a.controller.Stop()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if a.pinger != nil {
		go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)
	}

	a.println("Welcome to GophNotes (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader)
	return nil
}

func (a *App) isLoggedIn() bool {
	return a.controller.View().Session == ui.SessionAuthenticated
}

func (a *App) getStatus() string {
	v := a.controller.View()

	a.mu.Lock()
	mode := a.Mode
	a.mu.Unlock()

	s := ""
	if v.User != nil {
		s = v.User.Email + " "
	}
	s += string(mode)
	return fmt.Sprintf("(%s)", s)
}

// StartOnlineStatusWatcher pings the server every interval until ctx ends.
// Coming back online restarts the live list of the signed-in user.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err := a.pinger.Ping(pctx)
			cancel()

			if err != nil {
				a.setMode(ModeOffline)
				continue
			}
			// A watch stream lost while offline ended with an empty list.
			if a.setMode(ModeOnline) == ModeOffline && a.isLoggedIn() {
				a.controller.Resubscribe()
			}

		case <-ctx.Done():
			return
		}
	}
}

// render redraws the card list when a new snapshot changes it. Nothing is
// printed while the editor is open.
func (a *App) render(v ui.View) {
	if v.Session != ui.SessionAuthenticated || v.Editor != nil {
		return
	}

	key := fingerprint(v)

	a.mu.Lock()
	if key == a.lastListed {
		a.mu.Unlock()
		return
	}
	a.lastListed = key
	a.mu.Unlock()

	a.printNotes(v)
}

func fingerprint(v ui.View) string {
	var b strings.Builder
	for _, n := range v.Notes {
		b.WriteString(n.ID)
		b.WriteByte('@')
		b.WriteString(n.UpdatedAt.Format(time.RFC3339Nano))
		b.WriteByte(';')
	}
	return b.String()
}
