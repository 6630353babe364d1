package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/notes"
	"github.com/dmitrijs2005/gophnotes/internal/rpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
)

// notesAPI is the subset of *rpc.NotesClient used here.
type notesAPI interface {
	SignUp(ctx context.Context, in *rpc.Credentials, opts ...grpc.CallOption) (*rpc.TokenResponse, error)
	SignIn(ctx context.Context, in *rpc.Credentials, opts ...grpc.CallOption) (*rpc.TokenResponse, error)
	RefreshToken(ctx context.Context, in *rpc.RefreshTokenRequest, opts ...grpc.CallOption) (*rpc.TokenResponse, error)
	SignOut(ctx context.Context, in *rpc.SignOutRequest, opts ...grpc.CallOption) (*emptypb.Empty, error)
	Ping(ctx context.Context, opts ...grpc.CallOption) (*rpc.PingResponse, error)
	CreateNote(ctx context.Context, in *rpc.CreateNoteRequest, opts ...grpc.CallOption) (*rpc.NoteResponse, error)
	UpdateNote(ctx context.Context, in *rpc.UpdateNoteRequest, opts ...grpc.CallOption) (*rpc.NoteResponse, error)
	DeleteNote(ctx context.Context, in *rpc.DeleteNoteRequest, opts ...grpc.CallOption) (*emptypb.Empty, error)
	BackupNotes(ctx context.Context, opts ...grpc.CallOption) (*rpc.BackupResponse, error)
	Watch(ctx context.Context, in *rpc.WatchRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[rpc.Snapshot], error)
}

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      notesAPI

	mu           sync.RWMutex
	accessToken  string
	refreshToken string
	account      *Account
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func isTokenExpired(err error) bool {
	st, ok := status.FromError(err)
	return ok && st.Code() == codes.Unauthenticated && st.Message() == common.ErrTokenExpired.Error()
}

func (s *GRPCClient) tokens() (string, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken, s.refreshToken
}

func (s *GRPCClient) setSession(resp *rpc.TokenResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = resp.AccessToken
	s.refreshToken = resp.RefreshToken
	if resp.UserID != "" {
		s.account = &Account{UserID: resp.UserID, Email: resp.Email}
	}
}

func (s *GRPCClient) clearSession() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken, s.refreshToken, s.account = "", "", nil
}

// refresh trades the refresh token for a new pair. It is a no-op returning
// false when no refresh token is held.
func (s *GRPCClient) refresh(ctx context.Context) (bool, error) {
	_, refreshToken := s.tokens()
	if refreshToken == "" {
		return false, nil
	}

	resp, err := s.client.RefreshToken(ctx, &rpc.RefreshTokenRequest{RefreshToken: refreshToken})
	if err != nil {
		return false, err
	}

	s.setSession(resp)
	return true, nil
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {

	accessToken, _ := s.tokens()
	err := invoker(withAccessToken(ctx, accessToken), method, req, reply, cc, opts...)
	if err == nil || !isTokenExpired(err) {
		return err
	}

	ok, rerr := s.refresh(ctx)
	if rerr != nil {
		return rerr
	}
	if !ok {
		return err
	}

	// tokens refreshed, retry with the new access token
	accessToken, _ = s.tokens()
	return invoker(withAccessToken(ctx, accessToken), method, req, reply, cc, opts...)
}

func (s *GRPCClient) streamAccessTokenInterceptor(
	ctx context.Context,
	desc *grpc.StreamDesc,
	cc *grpc.ClientConn,
	method string,
	streamer grpc.Streamer,
	opts ...grpc.CallOption,
) (grpc.ClientStream, error) {
	accessToken, _ := s.tokens()
	return streamer(withAccessToken(ctx, accessToken), desc, cc, method, opts...)
}

// NewGophNotesClient dials endpointURL. Extra dial options are appended to
// the defaults, which is how tests plug in an in-memory listener.
func NewGophNotesClient(endpointURL string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}
	err := c.InitGRPCClient(opts...)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient(opts ...grpc.DialOption) error {

	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor),
		grpc.WithStreamInterceptor(s.streamAccessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(s.endpointURL, opts...)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = rpc.NewNotesClient(conn)
	return nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

// Account returns the signed-in account or nil.
func (s *GRPCClient) Account() *Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.account == nil {
		return nil
	}
	a := *s.account
	return &a
}

func (s *GRPCClient) SignUp(ctx context.Context, email, password string) (*Account, error) {
	resp, err := s.client.SignUp(ctx, &rpc.Credentials{Email: email, Password: password})
	if err != nil {
		return nil, s.mapError(err)
	}
	s.setSession(resp)
	return &Account{UserID: resp.UserID, Email: resp.Email}, nil
}

func (s *GRPCClient) SignIn(ctx context.Context, email, password string) (*Account, error) {
	resp, err := s.client.SignIn(ctx, &rpc.Credentials{Email: email, Password: password})
	if err != nil {
		return nil, s.mapError(err)
	}
	s.setSession(resp)
	return &Account{UserID: resp.UserID, Email: resp.Email}, nil
}

// SignOut revokes the refresh token on the server. Local tokens are dropped
// even when the call fails.
func (s *GRPCClient) SignOut(ctx context.Context) error {
	_, refreshToken := s.tokens()
	s.clearSession()

	if refreshToken == "" {
		return nil
	}
	if _, err := s.client.SignOut(ctx, &rpc.SignOutRequest{RefreshToken: refreshToken}); err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *GRPCClient) Ping(ctx context.Context) error {

	resp, err := s.client.Ping(ctx)
	if err != nil {
		return s.mapError(err)
	}

	if resp.Status != "OK" {
		return ErrUnavailable
	}

	return nil

}

func (s *GRPCClient) CreateNote(ctx context.Context, id string, f notes.Fields) (*rpc.NoteMessage, error) {
	req := &rpc.CreateNoteRequest{ID: id, Title: f.Title, Content: f.Content, Color: f.Color}

	resp, err := s.client.CreateNote(ctx, req)
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Note, nil
}

func (s *GRPCClient) UpdateNote(ctx context.Context, id string, patch notes.Patch) (*rpc.NoteMessage, error) {
	resp, err := s.client.UpdateNote(ctx, &rpc.UpdateNoteRequest{ID: id, Patch: patch})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Note, nil
}

func (s *GRPCClient) DeleteNote(ctx context.Context, id string) error {
	if _, err := s.client.DeleteNote(ctx, &rpc.DeleteNoteRequest{ID: id}); err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *GRPCClient) BackupNotes(ctx context.Context) (string, int, error) {
	resp, err := s.client.BackupNotes(ctx)
	if err != nil {
		return "", 0, s.mapError(err)
	}
	return resp.Key, resp.Count, nil
}

// Watch opens the snapshot stream. An expired access token is refreshed
// once, on the first receive, and the stream reopened.
func (s *GRPCClient) Watch(ctx context.Context) (SnapshotStream, error) {
	if a, _ := s.tokens(); a == "" {
		return nil, ErrNotSignedIn
	}

	stream, err := s.client.Watch(ctx, &rpc.WatchRequest{})
	if err != nil {
		return nil, s.mapError(err)
	}
	return &watchStream{c: s, ctx: ctx, cur: stream}, nil
}

type watchStream struct {
	c        *GRPCClient
	ctx      context.Context
	cur      grpc.ServerStreamingClient[rpc.Snapshot]
	received bool
}

func (w *watchStream) Recv() (*rpc.Snapshot, error) {
	snap, err := w.cur.Recv()
	if err != nil && !w.received && isTokenExpired(err) {
		ok, rerr := w.c.refresh(w.ctx)
		if rerr != nil {
			return nil, w.c.mapError(rerr)
		}
		if ok {
			w.cur, err = w.c.client.Watch(w.ctx, &rpc.WatchRequest{})
			if err != nil {
				return nil, w.c.mapError(err)
			}
			snap, err = w.cur.Recv()
		}
	}
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, err
		}
		return nil, w.c.mapError(err)
	}
	w.received = true
	return snap, nil
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	if ae, ok := common.ParseAuthCode(st.Message()); ok {
		return ae
	}
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return ErrUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	case codes.NotFound:
		return common.ErrorNotFound
	case codes.Canceled:
		return context.Canceled
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
