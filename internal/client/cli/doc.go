// Package cli provides the interactive GophNotes command-line client.
//
// App drives a ui.Controller from a line-oriented REPL: account commands,
// the card list, a nested editor prompt with AI assist, per-card color and
// delete actions, and server backups. Live snapshots redraw the list as they
// arrive. In remote mode a background watcher pings the server and shows
// online/offline in the prompt.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
