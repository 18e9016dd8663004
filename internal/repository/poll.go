// Package repository translates domain operations into field-path mutations
// against the document store and re-reads the full document after every
// mutation, so callers always hold the authoritative state.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hilthontt/quorum/internal/domain"
	"github.com/hilthontt/quorum/internal/infrastructure/store"
)

const pollKeyPrefix = "polls:"

type PollRepository struct {
	store store.DocumentStore
	ttl   time.Duration
	log   *zap.SugaredLogger
}

func NewPollRepository(s store.DocumentStore, ttl time.Duration, log *zap.SugaredLogger) *PollRepository {
	return &PollRepository{store: s, ttl: ttl, log: log}
}

type CreatePollData struct {
	PollID        string
	UserID        string
	Name          string
	Topic         string
	VotesPerVoter int
}

func pollKey(pollID string) string {
	return pollKeyPrefix + pollID
}

// translateErr maps store failures onto the domain taxonomy. Anything that is
// not a missing or duplicate key is an infrastructure failure.
func translateErr(err error) error {
	switch {
	case errors.Is(err, store.ErrKeyNotFound):
		return domain.ErrRoomNotFound
	case errors.Is(err, store.ErrKeyExists):
		return domain.ErrRoomExists
	default:
		return fmt.Errorf("%w: %v", domain.ErrStore, err)
	}
}

func (r *PollRepository) CreatePoll(ctx context.Context, data CreatePollData) (*domain.Poll, error) {
	poll := &domain.Poll{
		ID:            data.PollID,
		Topic:         data.Topic,
		VotesPerVoter: data.VotesPerVoter,
		AdminID:       data.UserID,
		Participants:  domain.Participants{data.UserID: data.Name},
		Nominations:   map[string]domain.Nomination{},
		Rankings:      map[string][]string{},
		Chats:         map[string]domain.ChatMessage{},
		Results:       []domain.Result{},
	}

	r.log.Debugw("creating poll", "pollID", data.PollID, "ttl", r.ttl)

	if err := r.store.Create(ctx, pollKey(data.PollID), poll, r.ttl); err != nil {
		return nil, translateErr(err)
	}
	return poll, nil
}

func (r *PollRepository) GetPoll(ctx context.Context, pollID string) (*domain.Poll, error) {
	var poll domain.Poll
	if err := r.store.Get(ctx, pollKey(pollID), &poll); err != nil {
		return nil, translateErr(err)
	}
	return &poll, nil
}

func (r *PollRepository) AddParticipant(ctx context.Context, pollID, userID, name string) (*domain.Poll, error) {
	path := "participants." + userID
	if err := r.store.SetPath(ctx, pollKey(pollID), path, name); err != nil {
		return nil, translateErr(err)
	}
	return r.GetPoll(ctx, pollID)
}

func (r *PollRepository) RemoveParticipant(ctx context.Context, pollID, userID string) (*domain.Poll, error) {
	path := "participants." + userID
	if err := r.store.DeletePath(ctx, pollKey(pollID), path); err != nil {
		return nil, translateErr(err)
	}
	return r.GetPoll(ctx, pollID)
}

func (r *PollRepository) AddNomination(ctx context.Context, pollID, nominationID string, nomination domain.Nomination) (*domain.Poll, error) {
	path := "nominations." + nominationID
	if err := r.store.SetPath(ctx, pollKey(pollID), path, nomination); err != nil {
		return nil, translateErr(err)
	}
	return r.GetPoll(ctx, pollID)
}

func (r *PollRepository) RemoveNomination(ctx context.Context, pollID, nominationID string) (*domain.Poll, error) {
	path := "nominations." + nominationID
	if err := r.store.DeletePath(ctx, pollKey(pollID), path); err != nil {
		return nil, translateErr(err)
	}
	return r.GetPoll(ctx, pollID)
}

func (r *PollRepository) StartPoll(ctx context.Context, pollID string) (*domain.Poll, error) {
	if err := r.store.SetPath(ctx, pollKey(pollID), "hasStarted", true); err != nil {
		return nil, translateErr(err)
	}
	return r.GetPoll(ctx, pollID)
}

func (r *PollRepository) AddRankings(ctx context.Context, pollID, userID string, rankings []string) (*domain.Poll, error) {
	path := "rankings." + userID
	if err := r.store.SetPath(ctx, pollKey(pollID), path, rankings); err != nil {
		return nil, translateErr(err)
	}
	return r.GetPoll(ctx, pollID)
}

func (r *PollRepository) AddChat(ctx context.Context, pollID, chatID string, chat domain.ChatMessage) (*domain.Poll, error) {
	path := "chats." + chatID
	if err := r.store.SetPath(ctx, pollKey(pollID), path, chat); err != nil {
		return nil, translateErr(err)
	}
	return r.GetPoll(ctx, pollID)
}

func (r *PollRepository) AddResults(ctx context.Context, pollID string, results []domain.Result) (*domain.Poll, error) {
	if err := r.store.SetPath(ctx, pollKey(pollID), "results", results); err != nil {
		return nil, translateErr(err)
	}
	return r.GetPoll(ctx, pollID)
}

func (r *PollRepository) DeletePoll(ctx context.Context, pollID string) error {
	if err := r.store.Delete(ctx, pollKey(pollID)); err != nil {
		return translateErr(err)
	}
	return nil
}
