package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/notes"
	"github.com/dmitrijs2005/gophnotes/internal/rpc"
	"github.com/dmitrijs2005/gophnotes/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
)

// toStatus maps service errors to gRPC statuses. Auth codes travel as the
// bare status message so the client can recover them.
func toStatus(err error) error {
	if code, ok := common.AuthCode(err); ok {
		switch code {
		case common.AuthCodeEmailAlreadyInUse:
			return status.Error(codes.AlreadyExists, code)
		case common.AuthCodeWeakPassword, common.AuthCodeInvalidEmail:
			return status.Error(codes.InvalidArgument, code)
		default:
			return status.Error(codes.Unauthenticated, code)
		}
	}

	switch {
	case errors.Is(err, common.ErrIdentityRequired):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, common.ErrorAlreadyExists):
		return status.Error(codes.AlreadyExists, "already exists")
	case errors.Is(err, common.ErrorValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrorUnauthorized):
		return status.Error(codes.Unauthenticated, "unauthorized")
	case errors.Is(err, common.ErrRefreshTokenExpired):
		return status.Error(codes.Unauthenticated, common.ErrRefreshTokenExpired.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "canceled")
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "deadline exceeded")
	}
	return status.Error(codes.Internal, "internal error")
}

func tokenResponse(s *services.Session) *rpc.TokenResponse {
	return &rpc.TokenResponse{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		UserID:       s.UserID,
		Email:        s.Email,
	}
}

func (s *GRPCServer) SignUp(ctx context.Context, req *rpc.Credentials) (*rpc.TokenResponse, error) {
	session, err := s.users.SignUp(ctx, req.Email, req.Password)
	if err != nil {
		s.logger.Warn(ctx, "sign up failed", "error", err)
		return nil, toStatus(err)
	}

	s.logger.Info(ctx, "Registered", "user", session.UserID)
	return tokenResponse(session), nil
}

func (s *GRPCServer) SignIn(ctx context.Context, req *rpc.Credentials) (*rpc.TokenResponse, error) {
	session, err := s.users.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		return nil, toStatus(err)
	}
	return tokenResponse(session), nil
}

func (s *GRPCServer) RefreshToken(ctx context.Context, req *rpc.RefreshTokenRequest) (*rpc.TokenResponse, error) {
	session, err := s.users.RefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return nil, toStatus(err)
	}
	return tokenResponse(session), nil
}

func (s *GRPCServer) SignOut(ctx context.Context, req *rpc.SignOutRequest) (*emptypb.Empty, error) {
	if err := s.users.SignOut(ctx, req.RefreshToken); err != nil {
		s.logger.Error(ctx, "sign out failed", "error", err)
		return nil, toStatus(err)
	}
	return &emptypb.Empty{}, nil
}

func (s *GRPCServer) Ping(ctx context.Context, _ *emptypb.Empty) (*rpc.PingResponse, error) {
	return &rpc.PingResponse{Status: "OK"}, nil
}

func (s *GRPCServer) CreateNote(ctx context.Context, req *rpc.CreateNoteRequest) (*rpc.NoteResponse, error) {
	owner, _ := UserIDFromContext(ctx)

	n, err := s.notes.Create(ctx, owner, req.ID, notes.Fields{Title: req.Title, Content: req.Content, Color: req.Color})
	if err != nil {
		s.logger.Error(ctx, "create note failed", "owner", owner, "error", err)
		return nil, toStatus(err)
	}
	return &rpc.NoteResponse{Note: rpc.FromNote(*n)}, nil
}

func (s *GRPCServer) UpdateNote(ctx context.Context, req *rpc.UpdateNoteRequest) (*rpc.NoteResponse, error) {
	owner, _ := UserIDFromContext(ctx)

	n, err := s.notes.Update(ctx, owner, req.ID, req.Patch)
	if err != nil {
		s.logger.Error(ctx, "update note failed", "owner", owner, "id", req.ID, "error", err)
		return nil, toStatus(err)
	}
	return &rpc.NoteResponse{Note: rpc.FromNote(*n)}, nil
}

func (s *GRPCServer) DeleteNote(ctx context.Context, req *rpc.DeleteNoteRequest) (*emptypb.Empty, error) {
	owner, _ := UserIDFromContext(ctx)

	if err := s.notes.Delete(ctx, owner, req.ID); err != nil {
		s.logger.Error(ctx, "delete note failed", "owner", owner, "id", req.ID, "error", err)
		return nil, toStatus(err)
	}
	return &emptypb.Empty{}, nil
}

func (s *GRPCServer) BackupNotes(ctx context.Context, _ *emptypb.Empty) (*rpc.BackupResponse, error) {
	owner, _ := UserIDFromContext(ctx)
	if s.backups == nil {
		return nil, status.Error(codes.Unimplemented, "backups are not configured")
	}

	key, count, err := s.backups.Backup(ctx, owner)
	if err != nil {
		s.logger.Error(ctx, "backup failed", "owner", owner, "error", err)
		return nil, toStatus(err)
	}

	s.logger.Info(ctx, "Backup written", "owner", owner, "key", key, "count", count)
	return &rpc.BackupResponse{Key: key, Count: count}, nil
}
