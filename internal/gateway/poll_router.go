package gateway

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hilthontt/quorum/internal/domain"
	"github.com/hilthontt/quorum/internal/infrastructure/metrics"
	"github.com/hilthontt/quorum/internal/service"
)

// PollRouter maps poll commands onto the poll service. Privileged commands
// pass the admin guard first: the room is fetched fresh and the caller's
// identity compared against adminID, so a stale token never grants control
// over a recycled room code.
type PollRouter struct {
	hub     *Hub
	service *service.PollService
	metrics *metrics.Metrics
	log     *zap.SugaredLogger
}

func NewPollRouter(hub *Hub, svc *service.PollService, m *metrics.Metrics, log *zap.SugaredLogger) *PollRouter {
	return &PollRouter{
		hub:     hub,
		service: svc,
		metrics: m,
		log:     log,
	}
}

// Connected registers the socket with the hub and admits the caller as a
// participant. When admission fails (full or expired room) the client is
// detached from the hub again so a rejected joiner cannot keep a live socket.
func (rt *PollRouter) Connected(ctx context.Context, c *Client) error {
	rt.hub.Add(pollRoom(c.RoomID), c)

	var joinErr error
	rt.hub.Serialize(pollRoom(c.RoomID), func() {
		poll, err := rt.service.AddParticipant(ctx, c.RoomID, c.UserID, c.Name)
		if err != nil {
			joinErr = err
			return
		}
		rt.broadcast(c.RoomID, NewPollUpdated(poll))
	})
	if joinErr != nil {
		c.Send(NewException(joinErr))
		rt.hub.Remove(c)
		return joinErr
	}
	return nil
}

// Disconnected drops the participant if the poll still allows it. A missing
// room is normal here; it expired or was cancelled while the socket was up.
func (rt *PollRouter) Disconnected(ctx context.Context, c *Client) {
	rt.hub.Serialize(pollRoom(c.RoomID), func() {
		poll, err := rt.service.RemoveParticipant(ctx, c.RoomID, c.UserID)
		if err != nil {
			if domain.KindOf(err) != domain.KindNotFound {
				rt.log.Warnw("remove participant on disconnect", "pollID", c.RoomID, "userID", c.UserID, "error", err)
			}
			return
		}
		if poll != nil {
			rt.broadcast(c.RoomID, NewPollUpdated(poll))
		}
	})
}

func (rt *PollRouter) Handle(ctx context.Context, c *Client, cmd Command) {
	rt.metrics.Commands.WithLabelValues("poll", cmd.Event).Inc()

	rt.hub.Serialize(pollRoom(c.RoomID), func() {
		poll, err := rt.dispatch(ctx, c, cmd)
		if err != nil {
			rt.metrics.CommandErrors.WithLabelValues("poll", string(domain.KindOf(err))).Inc()
			c.Send(NewException(err))
			return
		}
		if poll != nil {
			rt.broadcast(c.RoomID, NewPollUpdated(poll))
		}
	})
}

// dispatch runs one command and returns the snapshot to broadcast, or nil
// when there is nothing to announce (silent no-ops, cancel).
func (rt *PollRouter) dispatch(ctx context.Context, c *Client, cmd Command) (*domain.Poll, error) {
	switch cmd.Event {
	case EventNominate:
		var data struct {
			Text string `json:"text"`
		}
		if err := decodePayload(cmd.Data, &data); err != nil {
			return nil, err
		}
		return rt.service.AddNomination(ctx, c.RoomID, c.UserID, data.Text)

	case EventRemoveNomination:
		var data struct {
			ID string `json:"id"`
		}
		if err := decodePayload(cmd.Data, &data); err != nil {
			return nil, err
		}
		if err := rt.requireAdmin(ctx, c); err != nil {
			return nil, err
		}
		return rt.service.RemoveNomination(ctx, c.RoomID, data.ID)

	case EventSubmitRankings:
		var data struct {
			Rankings []string `json:"rankings"`
		}
		if err := decodePayload(cmd.Data, &data); err != nil {
			return nil, err
		}
		poll, err := rt.service.SubmitRankings(ctx, c.RoomID, c.UserID, data.Rankings)
		if err != nil {
			return nil, err
		}
		if poll.EveryoneRanked() {
			rt.log.Infow("all ballots in", "pollID", c.RoomID)
		}
		return poll, nil

	case EventChat:
		var data struct {
			Message string `json:"message"`
		}
		if err := decodePayload(cmd.Data, &data); err != nil {
			return nil, err
		}
		if err := validateChat(data.Message); err != nil {
			return nil, err
		}
		return rt.service.AddChat(ctx, c.RoomID, c.UserID, c.Name, data.Message)

	case EventRemoveParticipant:
		var data struct {
			ID string `json:"id"`
		}
		if err := decodePayload(cmd.Data, &data); err != nil {
			return nil, err
		}
		if err := rt.requireAdmin(ctx, c); err != nil {
			return nil, err
		}
		return rt.service.RemoveParticipant(ctx, c.RoomID, data.ID)

	case EventStartPoll:
		if err := rt.requireAdmin(ctx, c); err != nil {
			return nil, err
		}
		return rt.service.StartPoll(ctx, c.RoomID)

	case EventClosePoll:
		if err := rt.requireAdmin(ctx, c); err != nil {
			return nil, err
		}
		return rt.service.ComputeResults(ctx, c.RoomID)

	case EventCancelPoll:
		if err := rt.requireAdmin(ctx, c); err != nil {
			return nil, err
		}
		if err := rt.service.CancelPoll(ctx, c.RoomID); err != nil {
			return nil, err
		}
		rt.hub.CloseRoom(pollRoom(c.RoomID), NewPollCancelled())
		return nil, nil

	default:
		return nil, fmt.Errorf("%w: unknown event %q", domain.ErrInvalidInput, cmd.Event)
	}
}

func (rt *PollRouter) requireAdmin(ctx context.Context, c *Client) error {
	poll, err := rt.service.GetPoll(ctx, c.RoomID)
	if err != nil {
		return err
	}
	return requireAdmin(poll, c.UserID)
}

func (rt *PollRouter) broadcast(pollID string, msg *Message) {
	rt.metrics.Broadcasts.WithLabelValues("poll").Inc()
	rt.hub.Broadcast(pollRoom(pollID), msg)
}
