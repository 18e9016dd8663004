package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hilthontt/quorum/internal/domain"
	"github.com/hilthontt/quorum/internal/infrastructure/logging"
	"github.com/hilthontt/quorum/internal/infrastructure/store"
)

func newTestPollRepository(t *testing.T) *PollRepository {
	t.Helper()

	s, err := store.Open(store.Options{InMemory: true}, logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return NewPollRepository(s, time.Hour, logging.NewNop())
}

func createTestPoll(t *testing.T, repo *PollRepository) *domain.Poll {
	t.Helper()

	poll, err := repo.CreatePoll(context.Background(), CreatePollData{
		PollID:        "ABC123",
		UserID:        "admin-1",
		Name:          "Alice",
		Topic:         "lunch",
		VotesPerVoter: 3,
	})
	require.NoError(t, err)
	return poll
}

func TestPollRepository_CreateSeedsAdminAsParticipant(t *testing.T) {
	req := require.New(t)
	repo := newTestPollRepository(t)

	poll := createTestPoll(t, repo)

	req.Equal("ABC123", poll.ID)
	req.Equal("admin-1", poll.AdminID)
	req.Equal("Alice", poll.Participants["admin-1"])
	req.False(poll.HasStarted)
	req.Empty(poll.Nominations)
	req.Empty(poll.Results)
}

func TestPollRepository_CreateDuplicateCode(t *testing.T) {
	req := require.New(t)
	repo := newTestPollRepository(t)

	createTestPoll(t, repo)

	_, err := repo.CreatePoll(context.Background(), CreatePollData{
		PollID: "ABC123",
		UserID: "other",
		Name:   "Bob",
	})
	req.ErrorIs(err, domain.ErrRoomExists)
}

func TestPollRepository_GetMissingPoll(t *testing.T) {
	repo := newTestPollRepository(t)

	_, err := repo.GetPoll(context.Background(), "NOPE42")
	require.ErrorIs(t, err, domain.ErrRoomNotFound)
}

func TestPollRepository_ParticipantLifecycle(t *testing.T) {
	req := require.New(t)
	repo := newTestPollRepository(t)
	ctx := context.Background()

	createTestPoll(t, repo)

	poll, err := repo.AddParticipant(ctx, "ABC123", "user-2", "Bob")
	req.NoError(err)
	req.Equal("Bob", poll.Participants["user-2"])
	req.Len(poll.Participants, 2)

	poll, err = repo.RemoveParticipant(ctx, "ABC123", "user-2")
	req.NoError(err)
	req.NotContains(poll.Participants, "user-2")
}

func TestPollRepository_NominationLifecycle(t *testing.T) {
	req := require.New(t)
	repo := newTestPollRepository(t)
	ctx := context.Background()

	createTestPoll(t, repo)

	poll, err := repo.AddNomination(ctx, "ABC123", "nom-1", domain.Nomination{UserID: "admin-1", Text: "pizza"})
	req.NoError(err)
	req.Equal("pizza", poll.Nominations["nom-1"].Text)

	poll, err = repo.RemoveNomination(ctx, "ABC123", "nom-1")
	req.NoError(err)
	req.NotContains(poll.Nominations, "nom-1")
}

func TestPollRepository_RankingsReplaceOnResubmit(t *testing.T) {
	req := require.New(t)
	repo := newTestPollRepository(t)
	ctx := context.Background()

	createTestPoll(t, repo)

	_, err := repo.AddRankings(ctx, "ABC123", "admin-1", []string{"n1", "n2"})
	req.NoError(err)

	poll, err := repo.AddRankings(ctx, "ABC123", "admin-1", []string{"n2"})
	req.NoError(err)
	req.Equal([]string{"n2"}, poll.Rankings["admin-1"])
}

func TestPollRepository_StartAndResults(t *testing.T) {
	req := require.New(t)
	repo := newTestPollRepository(t)
	ctx := context.Background()

	createTestPoll(t, repo)

	poll, err := repo.StartPoll(ctx, "ABC123")
	req.NoError(err)
	req.True(poll.HasStarted)

	poll, err = repo.AddResults(ctx, "ABC123", []domain.Result{{ID: "n1", Name: "pizza", Score: 5}})
	req.NoError(err)
	req.Len(poll.Results, 1)
	req.Equal("pizza", poll.Results[0].Name)
}

func TestPollRepository_DeletePoll(t *testing.T) {
	req := require.New(t)
	repo := newTestPollRepository(t)
	ctx := context.Background()

	createTestPoll(t, repo)
	req.NoError(repo.DeletePoll(ctx, "ABC123"))

	_, err := repo.GetPoll(ctx, "ABC123")
	req.ErrorIs(err, domain.ErrRoomNotFound)
}

func TestPollRepository_ChatIsKeyedAndTyped(t *testing.T) {
	req := require.New(t)
	repo := newTestPollRepository(t)
	ctx := context.Background()

	createTestPoll(t, repo)

	poll, err := repo.AddChat(ctx, "ABC123", "chat-1", domain.ChatMessage{
		UserID:    "admin-1",
		Name:      "Alice",
		Text:      "hello",
		Timestamp: 1700000000000,
	})
	req.NoError(err)
	req.Equal("hello", poll.Chats["chat-1"].Text)
	req.Equal(int64(1700000000000), poll.Chats["chat-1"].Timestamp)
}
