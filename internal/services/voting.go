package services

import (
	"context"
	"errors"
	"log"

	"agora/internal/models"
	"agora/internal/store"
)

// VoteStore is the slice of the persistent store the coordinator needs.
type VoteStore interface {
	InsertVote(ctx context.Context, topicID, userID string, option models.VoteOption) (models.Vote, error)
	ListVotes(ctx context.Context, topicID string) ([]models.Vote, error)
	HasVoted(ctx context.Context, topicID, userID string) (bool, error)
}

// VoteOutcome is what the caller sees after a submission. HasVoted is true
// both for a fresh insert and for a duplicate: the two cases must be
// indistinguishable to the user (both hide the voting panel and show
// results).
type VoteOutcome struct {
	Vote         models.Vote
	HasVoted     bool
	AlreadyVoted bool
}

// VotingService validates and submits a single vote per (user, topic).
// Deduplication lives in the store's unique index, not here: two tabs of the
// same user can race past any client-side check.
type VotingService struct {
	votes VoteStore
}

func NewVotingService(votes VoteStore) *VotingService {
	return &VotingService{votes: votes}
}

// Submit inserts exactly one vote attributed to the resolved user. A
// duplicate-key rejection is a non-fatal idempotent outcome; every other
// store failure propagates as retryable and the caller must re-invoke.
func (s *VotingService) Submit(ctx context.Context, user *models.User, topicID string, option models.VoteOption) (VoteOutcome, error) {
	if user == nil {
		return VoteOutcome{}, ErrAuthRequired
	}
	if !option.Valid() {
		return VoteOutcome{}, ErrInvalidOption
	}

	vote, err := s.votes.InsertVote(ctx, topicID, user.ID, option)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateVote) {
			log.Printf("voting: duplicate vote by %s on topic %s, treating as voted", user.ID, topicID)
			return VoteOutcome{HasVoted: true, AlreadyVoted: true}, nil
		}
		return VoteOutcome{}, err
	}
	return VoteOutcome{Vote: vote, HasVoted: true}, nil
}

// Stats recomputes the current tallies for a topic from the authoritative
// vote set.
func (s *VotingService) Stats(ctx context.Context, topicID string) (models.VoteStats, error) {
	votes, err := s.votes.ListVotes(ctx, topicID)
	if err != nil {
		return models.VoteStats{}, err
	}
	return ComputeStats(votes), nil
}

// HasVoted tells the presentation layer whether to offer the voting panel.
func (s *VotingService) HasVoted(ctx context.Context, topicID, userID string) (bool, error) {
	return s.votes.HasVoted(ctx, topicID, userID)
}
