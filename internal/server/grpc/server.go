// Package grpc exposes the note services over gRPC: account calls, note
// mutations, backups and the per-owner Watch stream.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/gophnotes/internal/logging"
	"github.com/dmitrijs2005/gophnotes/internal/notes"
	"github.com/dmitrijs2005/gophnotes/internal/rpc"
	"github.com/dmitrijs2005/gophnotes/internal/server/services"
	"google.golang.org/grpc"
)

// UserService is the account surface used by the handlers.
type UserService interface {
	SignUp(ctx context.Context, email, password string) (*services.Session, error)
	SignIn(ctx context.Context, email, password string) (*services.Session, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.Session, error)
	SignOut(ctx context.Context, refreshToken string) error
}

// NoteService is the note surface used by the handlers.
type NoteService interface {
	Create(ctx context.Context, ownerID, id string, f notes.Fields) (*notes.Note, error)
	Update(ctx context.Context, ownerID, id string, patch notes.Patch) (*notes.Note, error)
	Delete(ctx context.Context, ownerID, id string) error
	List(ctx context.Context, ownerID string) ([]notes.Note, error)
}

// BackupService exports an owner's notes.
type BackupService interface {
	Backup(ctx context.Context, ownerID string) (string, int, error)
}

// Watcher hands out change notifications per owner.
type Watcher interface {
	Subscribe(ownerID string) (<-chan struct{}, func())
}

type GRPCServer struct {
	address   string
	users     UserService
	notes     NoteService
	backups   BackupService
	watcher   Watcher
	logger    logging.Logger
	jwtSecret []byte
}

func NewGRPCServer(a string, l logging.Logger, us UserService, ns NoteService, bs BackupService, w Watcher, secretKey string) *GRPCServer {
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		users:     us,
		notes:     ns,
		backups:   bs,
		watcher:   w,
		jwtSecret: []byte(secretKey),
	}
}

// NewServer builds a grpc.Server with the auth interceptors and the Notes
// service registered.
func (s *GRPCServer) NewServer(opts ...grpc.ServerOption) *grpc.Server {
	opts = append([]grpc.ServerOption{
		grpc.ChainUnaryInterceptor(s.accessTokenInterceptor),
		grpc.ChainStreamInterceptor(s.streamAccessTokenInterceptor),
	}, opts...)

	srv := grpc.NewServer(opts...)
	rpc.RegisterNotesServer(srv, s)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := s.NewServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", s.address)

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
