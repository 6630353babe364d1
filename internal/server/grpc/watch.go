package grpc

import (
	"github.com/dmitrijs2005/gophnotes/internal/rpc"
	"google.golang.org/grpc"
)

// Watch sends the caller's full ordered collection immediately and again
// after every change until the client goes away. The subscription is taken
// before the first read so no change between the two is missed.
func (s *GRPCServer) Watch(_ *rpc.WatchRequest, stream grpc.ServerStreamingServer[rpc.Snapshot]) error {
	ctx := stream.Context()
	owner, _ := UserIDFromContext(ctx)

	changed, cancel := s.watcher.Subscribe(owner)
	defer cancel()

	s.logger.Debug(ctx, "watch opened", "owner", owner)
	defer s.logger.Debug(ctx, "watch closed", "owner", owner)

	for {
		list, err := s.notes.List(ctx, owner)
		if err != nil {
			s.logger.Error(ctx, "watch list failed", "owner", owner, "error", err)
			return toStatus(err)
		}

		snap := &rpc.Snapshot{Notes: make([]*rpc.NoteMessage, 0, len(list))}
		for _, n := range list {
			snap.Notes = append(snap.Notes, rpc.FromNote(n))
		}
		if err := stream.Send(snap); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return nil
		case <-changed:
		}
	}
}
