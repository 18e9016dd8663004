// Package service enforces the business rules on top of the repositories:
// phase guards, capacity limits, membership checks on contribution paths,
// result computation and credential issuance. Admin authorization is
// deliberately NOT enforced here; the gateway's admin guard gates privileged
// operations before a service method is ever invoked, which keeps the
// services testable without an auth context.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hilthontt/quorum/internal/domain"
	"github.com/hilthontt/quorum/internal/infrastructure/token"
	"github.com/hilthontt/quorum/internal/repository"
	"github.com/hilthontt/quorum/internal/results"
)

// createRetries bounds the room-code collision loop: generate a code,
// attempt the create, regenerate on collision.
const createRetries = 5

// PollAccess pairs a poll snapshot with the credential minted for a caller.
type PollAccess struct {
	Poll        *domain.Poll `json:"poll"`
	AccessToken string       `json:"accessToken"`
}

type CreatePollFields struct {
	Topic         string
	VotesPerVoter int
	Name          string
}

type PollService struct {
	repo        *repository.PollRepository
	issuer      *token.Issuer
	lockOnStart bool
	log         *zap.SugaredLogger
}

// NewPollService builds a poll service. lockOnStart controls whether new
// participants may still join once the poll has started; polls lock by
// default.
func NewPollService(repo *repository.PollRepository, issuer *token.Issuer, lockOnStart bool, log *zap.SugaredLogger) *PollService {
	return &PollService{
		repo:        repo,
		issuer:      issuer,
		lockOnStart: lockOnStart,
		log:         log,
	}
}

func (s *PollService) CreatePoll(ctx context.Context, fields CreatePollFields) (*PollAccess, error) {
	userID := domain.NewUserID()

	var poll *domain.Poll
	for attempt := 0; attempt < createRetries; attempt++ {
		pollID, err := domain.NewRoomCode()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrStore, err)
		}

		poll, err = s.repo.CreatePoll(ctx, repository.CreatePollData{
			PollID:        pollID,
			UserID:        userID,
			Name:          fields.Name,
			Topic:         fields.Topic,
			VotesPerVoter: fields.VotesPerVoter,
		})
		if errors.Is(err, domain.ErrRoomExists) {
			s.log.Warnw("room code collision, regenerating", "pollID", pollID)
			continue
		}
		if err != nil {
			return nil, err
		}
		break
	}
	if poll == nil {
		return nil, fmt.Errorf("%w: exhausted room code retries", domain.ErrStore)
	}

	accessToken, err := s.issuer.Sign(poll.ID, userID, fields.Name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStore, err)
	}

	s.log.Infow("poll created", "pollID", poll.ID, "adminID", userID)

	return &PollAccess{Poll: poll, AccessToken: accessToken}, nil
}

// JoinPoll issues a credential for a new participant. Join is two-phase: the
// participant is only added to the room when the websocket actually connects.
func (s *PollService) JoinPoll(ctx context.Context, pollID, name string) (*PollAccess, error) {
	poll, err := s.repo.GetPoll(ctx, pollID)
	if err != nil {
		return nil, err
	}

	if s.lockOnStart && poll.HasStarted {
		return nil, domain.ErrRoomStarted
	}

	userID := domain.NewUserID()
	accessToken, err := s.issuer.Sign(poll.ID, userID, name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStore, err)
	}

	return &PollAccess{Poll: poll, AccessToken: accessToken}, nil
}

// RejoinPoll re-adds a participant whose identity was decoded from an
// existing credential.
func (s *PollService) RejoinPoll(ctx context.Context, pollID, userID, name string) (*domain.Poll, error) {
	return s.repo.AddParticipant(ctx, pollID, userID, name)
}

func (s *PollService) GetPoll(ctx context.Context, pollID string) (*domain.Poll, error) {
	return s.repo.GetPoll(ctx, pollID)
}

// AddParticipant is idempotent: re-adding an existing participant rewrites
// the same field with the same value.
func (s *PollService) AddParticipant(ctx context.Context, pollID, userID, name string) (*domain.Poll, error) {
	return s.repo.AddParticipant(ctx, pollID, userID, name)
}

// RemoveParticipant removes a participant from a poll that has not started.
// After start (and for the admin, always) it is a silent no-op; the nil
// snapshot tells the caller there is nothing to broadcast.
func (s *PollService) RemoveParticipant(ctx context.Context, pollID, userID string) (*domain.Poll, error) {
	poll, err := s.repo.GetPoll(ctx, pollID)
	if err != nil {
		return nil, err
	}

	if poll.HasStarted || userID == poll.AdminID {
		return nil, nil
	}

	return s.repo.RemoveParticipant(ctx, pollID, userID)
}

func (s *PollService) AddNomination(ctx context.Context, pollID, userID, text string) (*domain.Poll, error) {
	poll, err := s.repo.GetPoll(ctx, pollID)
	if err != nil {
		return nil, err
	}
	if poll.HasStarted {
		return nil, domain.ErrRoomStarted
	}
	if !poll.HasParticipant(userID) {
		return nil, domain.ErrNotParticipant
	}

	return s.repo.AddNomination(ctx, pollID, domain.NewItemID(), domain.Nomination{
		UserID: userID,
		Text:   text,
	})
}

func (s *PollService) RemoveNomination(ctx context.Context, pollID, nominationID string) (*domain.Poll, error) {
	poll, err := s.repo.GetPoll(ctx, pollID)
	if err != nil {
		return nil, err
	}
	if poll.HasStarted {
		return nil, domain.ErrRoomStarted
	}

	return s.repo.RemoveNomination(ctx, pollID, nominationID)
}

// StartPoll flips hasStarted. Idempotent; starting a started poll is fine.
func (s *PollService) StartPoll(ctx context.Context, pollID string) (*domain.Poll, error) {
	return s.repo.StartPoll(ctx, pollID)
}

// SubmitRankings records a participant's full ranked ballot. A resubmission
// replaces the previous ballot. Ballots are validated against the current
// nomination set and the per-voter limit before anything is written.
func (s *PollService) SubmitRankings(ctx context.Context, pollID, userID string, rankings []string) (*domain.Poll, error) {
	poll, err := s.repo.GetPoll(ctx, pollID)
	if err != nil {
		return nil, err
	}
	if !poll.HasStarted {
		return nil, domain.ErrRoomNotStarted
	}
	if !poll.HasParticipant(userID) {
		return nil, domain.ErrNotParticipant
	}

	if len(rankings) == 0 || len(rankings) > poll.VotesPerVoter {
		return nil, fmt.Errorf("%w: ranking must list between 1 and %d nominations", domain.ErrInvalidInput, poll.VotesPerVoter)
	}
	seen := make(map[string]struct{}, len(rankings))
	for _, nominationID := range rankings {
		if !poll.HasNomination(nominationID) {
			return nil, fmt.Errorf("%w: unknown nomination %q", domain.ErrInvalidInput, nominationID)
		}
		if _, dup := seen[nominationID]; dup {
			return nil, fmt.Errorf("%w: nomination %q ranked twice", domain.ErrInvalidInput, nominationID)
		}
		seen[nominationID] = struct{}{}
	}

	return s.repo.AddRankings(ctx, pollID, userID, rankings)
}

// AddChat appends a chat entry. Only current participants may write; a
// credential for a room the holder never joined (or was removed from) does
// not grant a voice in it.
func (s *PollService) AddChat(ctx context.Context, pollID, userID, name, text string) (*domain.Poll, error) {
	poll, err := s.repo.GetPoll(ctx, pollID)
	if err != nil {
		return nil, err
	}
	if !poll.HasParticipant(userID) {
		return nil, domain.ErrNotParticipant
	}

	return s.repo.AddChat(ctx, pollID, domain.NewItemID(), domain.ChatMessage{
		UserID:    userID,
		Name:      name,
		Text:      text,
		Timestamp: time.Now().UnixMilli(),
	})
}

// ComputeResults aggregates the current ballots and persists the leaderboard.
func (s *PollService) ComputeResults(ctx context.Context, pollID string) (*domain.Poll, error) {
	poll, err := s.repo.GetPoll(ctx, pollID)
	if err != nil {
		return nil, err
	}

	computed := results.ComputePoll(poll.Rankings, poll.Nominations)
	s.log.Debugw("computed poll results", "pollID", pollID, "rows", len(computed))

	return s.repo.AddResults(ctx, pollID, computed)
}

func (s *PollService) CancelPoll(ctx context.Context, pollID string) error {
	return s.repo.DeletePoll(ctx, pollID)
}
