// Package ui holds the state behind the notes screen: session gating, the
// card list, the editor draft and the per-card menu. The presentation layer
// drives it through methods and redraws from the View passed to OnRender.
package ui

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrijs2005/gophnotes/internal/client/session"
	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/logging"
	"github.com/dmitrijs2005/gophnotes/internal/notes"
)

var (
	ErrEditorClosed = errors.New("editor is not open")
	ErrMenuClosed   = errors.New("menu is not open")
)

type Sessions interface {
	OnChange(cb func(*session.Identity)) (func(), error)
	Start()
	SignUp(ctx context.Context, email, password string) error
	SignIn(ctx context.Context, email, password string) error
	SignOut(ctx context.Context) error
}

type Subscriptions interface {
	Subscribe(ownerID string, onSnapshot func([]notes.Note)) func()
}

type Mutations interface {
	Create(ctx context.Context, ownerID string, f notes.Fields) (string, error)
	Update(ctx context.Context, ownerID, id string, f notes.Fields) error
	UpdateColor(ctx context.Context, ownerID, id, color string) error
	Delete(ctx context.Context, ownerID, id string) error
}

type Suggester interface {
	Generate(ctx context.Context, request, existing string) string
}

type Controller struct {
	sessions  Sessions
	subs      Subscriptions
	mutations Mutations
	suggest   Suggester
	logger    logging.Logger

	mu          sync.Mutex
	state       SessionState
	user        *session.Identity
	list        []notes.Note
	editor      *Draft
	assisting   bool
	menu        MenuState
	menuNoteID  string
	generation  uint64
	unsubscribe func()
	stopSession func()
	render      func(View)

	// renders are serialized and always draw the state current at draw time
	renderMu sync.Mutex

	background sync.WaitGroup
}

func New(s Sessions, subs Subscriptions, m Mutations, g Suggester, l logging.Logger) *Controller {
	return &Controller{
		sessions:  s,
		subs:      subs,
		mutations: m,
		suggest:   g,
		logger:    l.With("module", "ui"),
		state:     SessionLoading,
	}
}

// OnRender sets the redraw hook. It is called after every state change and
// must not call back into the Controller's session methods.
func (c *Controller) OnRender(fn func(View)) {
	c.mu.Lock()
	c.render = fn
	c.mu.Unlock()
}

// Start begins observing the session.
func (c *Controller) Start() error {
	stop, err := c.sessions.OnChange(c.onIdentity)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.stopSession = stop
	c.mu.Unlock()

	c.sessions.Start()
	return nil
}

// Stop releases the session observer and the collection subscription, then
// waits for background mutations to settle.
func (c *Controller) Stop() {
	c.mu.Lock()
	stopSession, unsubscribe := c.stopSession, c.unsubscribe
	c.stopSession, c.unsubscribe = nil, nil
	c.generation++
	c.mu.Unlock()

	if stopSession != nil {
		stopSession()
	}
	if unsubscribe != nil {
		unsubscribe()
	}
	c.Wait()
}

// Wait blocks until dispatched mutations have finished.
func (c *Controller) Wait() {
	c.background.Wait()
}

func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

func (c *Controller) viewLocked() View {
	v := View{
		Session:    c.state,
		Notes:      append([]notes.Note(nil), c.list...),
		Assisting:  c.assisting,
		Menu:       c.menu,
		MenuNoteID: c.menuNoteID,
	}
	if c.user != nil {
		u := *c.user
		v.User = &u
	}
	if c.editor != nil {
		d := *c.editor
		v.Editor = &d
	}
	return v
}

func (c *Controller) redraw() {
	c.renderMu.Lock()
	defer c.renderMu.Unlock()

	c.mu.Lock()
	fn := c.render
	v := c.viewLocked()
	c.mu.Unlock()

	if fn != nil {
		fn(v)
	}
}

// onIdentity keys the collection subscription to the newest identity.
// Unsubscribe runs outside c.mu because a delivery in progress holds the
// subscription lock while waiting for c.mu.
func (c *Controller) onIdentity(id *session.Identity) {
	c.mu.Lock()

	if id != nil && c.user != nil && c.user.ID == id.ID && c.unsubscribe != nil {
		c.user = id
		c.state = SessionAuthenticated
		c.mu.Unlock()
		c.redraw()
		return
	}

	c.generation++
	gen := c.generation
	old := c.unsubscribe
	c.unsubscribe = nil
	c.list = nil
	c.editor = nil
	c.assisting = false
	c.menu, c.menuNoteID = MenuClosed, ""
	c.user = id
	if id == nil {
		c.state = SessionUnauthenticated
	} else {
		c.state = SessionAuthenticated
	}
	c.mu.Unlock()

	if old != nil {
		old()
	}
	c.redraw()

	if id == nil {
		return
	}
	c.subscribe(gen, id.ID)
}

// Resubscribe restarts the live list of the signed-in user, e.g. after a
// dropped connection came back. The shown list, editor and menu are kept
// until the first new snapshot arrives.
func (c *Controller) Resubscribe() {
	c.mu.Lock()
	if c.user == nil {
		c.mu.Unlock()
		return
	}
	c.generation++
	gen := c.generation
	owner := c.user.ID
	old := c.unsubscribe
	c.unsubscribe = nil
	c.mu.Unlock()

	if old != nil {
		old()
	}
	c.subscribe(gen, owner)
}

func (c *Controller) subscribe(gen uint64, ownerID string) {
	unsubscribe := c.subs.Subscribe(ownerID, func(list []notes.Note) {
		c.onSnapshot(gen, list)
	})

	c.mu.Lock()
	if c.generation != gen {
		c.mu.Unlock()
		unsubscribe()
		return
	}
	c.unsubscribe = unsubscribe
	c.mu.Unlock()
}

func (c *Controller) onSnapshot(gen uint64, list []notes.Note) {
	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return
	}
	c.list = list
	if c.menu != MenuClosed && !contains(list, c.menuNoteID) {
		c.menu, c.menuNoteID = MenuClosed, ""
	}
	c.mu.Unlock()

	c.redraw()
}

func contains(list []notes.Note, id string) bool {
	for _, n := range list {
		if n.ID == id {
			return true
		}
	}
	return false
}

func (c *Controller) find(id string) (notes.Note, bool) {
	for _, n := range c.list {
		if n.ID == id {
			return n, true
		}
	}
	return notes.Note{}, false
}

// SignIn returns the message to show under the form, empty on success.
func (c *Controller) SignIn(ctx context.Context, email, password string) string {
	return session.Message(c.sessions.SignIn(ctx, email, password))
}

func (c *Controller) SignUp(ctx context.Context, email, password string) string {
	return session.Message(c.sessions.SignUp(ctx, email, password))
}

// SignOut ends the session. When it returns the list is already cleared
// and the subscription released.
func (c *Controller) SignOut(ctx context.Context) {
	if err := c.sessions.SignOut(ctx); err != nil {
		c.logger.Error(ctx, "sign out", "error", err)
	}
}

func (c *Controller) OpenNew() {
	c.mu.Lock()
	c.editor = &Draft{Action: NewNote{}, Fields: notes.Fields{Color: notes.DefaultColor}}
	c.menu, c.menuNoteID = MenuClosed, ""
	c.mu.Unlock()
	c.redraw()
}

func (c *Controller) OpenEdit(id string) error {
	c.mu.Lock()
	n, ok := c.find(id)
	if !ok {
		c.mu.Unlock()
		return common.ErrorNotFound
	}
	c.editor = &Draft{Action: EditNote{ID: id}, Fields: n.Fields()}
	c.menu, c.menuNoteID = MenuClosed, ""
	c.mu.Unlock()
	c.redraw()
	return nil
}

func (c *Controller) edit(fn func(*notes.Fields)) error {
	c.mu.Lock()
	if c.editor == nil {
		c.mu.Unlock()
		return ErrEditorClosed
	}
	fn(&c.editor.Fields)
	c.mu.Unlock()
	c.redraw()
	return nil
}

func (c *Controller) SetTitle(s string) error {
	return c.edit(func(f *notes.Fields) { f.Title = s })
}

func (c *Controller) SetContent(s string) error {
	return c.edit(func(f *notes.Fields) { f.Content = s })
}

func (c *Controller) SetColor(s string) error {
	return c.edit(func(f *notes.Fields) { f.Color = s })
}

// Assist asks the suggestion client for text and splices it into the draft
// content. The result is dropped if the draft was closed meanwhile.
func (c *Controller) Assist(ctx context.Context, request string) error {
	c.mu.Lock()
	draft := c.editor
	if draft == nil {
		c.mu.Unlock()
		return ErrEditorClosed
	}
	existing := draft.Fields.Content
	c.assisting = true
	c.mu.Unlock()
	c.redraw()

	text := c.suggest.Generate(ctx, request, existing)

	c.mu.Lock()
	c.assisting = false
	if c.editor == draft {
		if draft.Fields.Content == "" {
			draft.Fields.Content = text
		} else {
			draft.Fields.Content += "\n\n" + text
		}
	}
	c.mu.Unlock()
	c.redraw()
	return nil
}

// Save closes the editor and hands the draft to the gateway in the
// background. A draft with neither title nor content is discarded.
func (c *Controller) Save(ctx context.Context) error {
	c.mu.Lock()
	draft := c.editor
	if draft == nil {
		c.mu.Unlock()
		return ErrEditorClosed
	}
	c.editor = nil
	owner := c.ownerLocked()
	c.mu.Unlock()
	c.redraw()

	if draft.Fields.IsBlank() {
		return nil
	}

	f := draft.Fields
	switch a := draft.Action.(type) {
	case NewNote:
		c.dispatch(ctx, "create note", func(ctx context.Context) error {
			_, err := c.mutations.Create(ctx, owner, f)
			return err
		})
	case EditNote:
		c.dispatch(ctx, "update note", func(ctx context.Context) error {
			return c.mutations.Update(ctx, owner, a.ID, f)
		})
	}
	return nil
}

func (c *Controller) Close() {
	c.mu.Lock()
	c.editor = nil
	c.mu.Unlock()
	c.redraw()
}

func (c *Controller) OpenMenu(id string) error {
	c.mu.Lock()
	if _, ok := c.find(id); !ok {
		c.mu.Unlock()
		return common.ErrorNotFound
	}
	c.menu, c.menuNoteID = MenuOpen, id
	c.mu.Unlock()
	c.redraw()
	return nil
}

func (c *Controller) OpenColorPicker() error {
	c.mu.Lock()
	if c.menu == MenuClosed {
		c.mu.Unlock()
		return ErrMenuClosed
	}
	c.menu = MenuColorPicker
	c.mu.Unlock()
	c.redraw()
	return nil
}

func (c *Controller) PickColor(ctx context.Context, color string) error {
	id, owner, err := c.takeMenu()
	if err != nil {
		return err
	}
	c.dispatch(ctx, "update note color", func(ctx context.Context) error {
		return c.mutations.UpdateColor(ctx, owner, id, color)
	})
	return nil
}

func (c *Controller) DeleteFromMenu(ctx context.Context) error {
	id, owner, err := c.takeMenu()
	if err != nil {
		return err
	}
	c.dispatch(ctx, "delete note", func(ctx context.Context) error {
		return c.mutations.Delete(ctx, owner, id)
	})
	return nil
}

func (c *Controller) DismissMenu() {
	c.mu.Lock()
	c.menu, c.menuNoteID = MenuClosed, ""
	c.mu.Unlock()
	c.redraw()
}

// takeMenu closes the menu and returns the note it was open for.
func (c *Controller) takeMenu() (id, owner string, err error) {
	c.mu.Lock()
	if c.menu == MenuClosed {
		c.mu.Unlock()
		return "", "", ErrMenuClosed
	}
	id = c.menuNoteID
	owner = c.ownerLocked()
	c.menu, c.menuNoteID = MenuClosed, ""
	c.mu.Unlock()
	c.redraw()
	return id, owner, nil
}

func (c *Controller) ownerLocked() string {
	if c.user == nil {
		return ""
	}
	return c.user.ID
}

// dispatch runs a mutation in the background. Its outcome shows up in the
// next snapshot; failures are only logged.
func (c *Controller) dispatch(ctx context.Context, what string, fn func(context.Context) error) {
	ctx = context.WithoutCancel(ctx)
	c.background.Add(1)
	go func() {
		defer c.background.Done()
		if err := fn(ctx); err != nil {
			c.logger.Error(ctx, what+" failed", "error", err)
		}
	}()
}
