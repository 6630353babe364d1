// Package client contains the GophNotes gRPC client.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface): account
//     calls, note mutations, backups and the live Watch stream.
//  2. A concrete gRPC implementation (see GRPCClient) that manages a
//     connection, injects an access token via unary and stream
//     interceptors, transparently refreshes expired tokens, and maps gRPC
//     status codes to sentinel errors.
//
// # Error Handling
//
// Provider-coded authentication failures come back as *common.AuthError so
// the session layer can map them to user-facing text. Other conditions are
// exposed as sentinel errors matched with errors.Is: ErrUnavailable,
// ErrUnauthorized, ErrNotSignedIn and common.ErrorNotFound.
//
// # Concurrency
//
// GRPCClient is safe for concurrent use. Tokens are guarded by a mutex and
// replaced atomically on refresh.
package client
