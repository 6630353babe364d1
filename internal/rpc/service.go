package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "gophnotes.Notes"

// FullMethod returns "/gophnotes.Notes/<method>".
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// NotesServer is implemented by the GophNotes gRPC server.
type NotesServer interface {
	SignUp(context.Context, *Credentials) (*TokenResponse, error)
	SignIn(context.Context, *Credentials) (*TokenResponse, error)
	RefreshToken(context.Context, *RefreshTokenRequest) (*TokenResponse, error)
	SignOut(context.Context, *SignOutRequest) (*emptypb.Empty, error)
	Ping(context.Context, *emptypb.Empty) (*PingResponse, error)
	CreateNote(context.Context, *CreateNoteRequest) (*NoteResponse, error)
	UpdateNote(context.Context, *UpdateNoteRequest) (*NoteResponse, error)
	DeleteNote(context.Context, *DeleteNoteRequest) (*emptypb.Empty, error)
	BackupNotes(context.Context, *emptypb.Empty) (*BackupResponse, error)
	Watch(*WatchRequest, grpc.ServerStreamingServer[Snapshot]) error
}

// Methods that do not need an access token.
var PublicMethods = map[string]struct{}{
	FullMethod("SignUp"):       {},
	FullMethod("SignIn"):       {},
	FullMethod("RefreshToken"): {},
	FullMethod("SignOut"):      {},
	FullMethod("Ping"):         {},
}

func unary[Req, Res any](method string, call func(NotesServer, context.Context, *Req) (*Res, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(NotesServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(method)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(NotesServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

func watchHandler(srv any, stream grpc.ServerStream) error {
	in := new(WatchRequest)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(NotesServer).Watch(in, &grpc.GenericServerStream[WatchRequest, Snapshot]{ServerStream: stream})
}

// NotesServiceDesc describes the service for grpc.Server.RegisterService.
var NotesServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*NotesServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("SignUp", NotesServer.SignUp),
		unary("SignIn", NotesServer.SignIn),
		unary("RefreshToken", NotesServer.RefreshToken),
		unary("SignOut", NotesServer.SignOut),
		unary("Ping", NotesServer.Ping),
		unary("CreateNote", NotesServer.CreateNote),
		unary("UpdateNote", NotesServer.UpdateNote),
		unary("DeleteNote", NotesServer.DeleteNote),
		unary("BackupNotes", NotesServer.BackupNotes),
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "Watch", Handler: watchHandler, ServerStreams: true},
	},
	Metadata: "gophnotes/notes",
}

// RegisterNotesServer registers srv on s.
func RegisterNotesServer(s grpc.ServiceRegistrar, srv NotesServer) {
	s.RegisterService(&NotesServiceDesc, srv)
}
