package store

import (
	"context"
	"errors"
	"fmt"
	"log"

	"agora/internal/models"
	"agora/internal/realtime"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrDuplicateVote is returned when the (user, topic) unique index rejects a
// second vote. Callers treat it as a non-fatal, idempotent outcome.
var ErrDuplicateVote = errors.New("user already voted on this topic")

// ErrNotFound is returned when a referenced row does not exist.
var ErrNotFound = errors.New("record not found")

// Store is the durable side of the engine: topics, votes and comments in
// Postgres, with a change notification published on the bus after every
// committed mutation. Notifications carry no data; subscribers re-fetch.
type Store struct {
	db  *gorm.DB
	bus *realtime.Bus
}

func New(db *gorm.DB, bus *realtime.Bus) *Store {
	return &Store{db: db, bus: bus}
}

func (s *Store) notify(table, topicID string, action realtime.Action) {
	if err := s.bus.Publish(table, topicID, action); err != nil {
		// A lost notification only delays convergence until the next
		// one; readers keep their last known good state meanwhile.
		log.Printf("store: publish %s change for topic %s: %v", table, topicID, err)
	}
}

// InsertVote records a single vote. The DB unique index on (user_id,
// topic_id) is the source of truth for the one-vote invariant; a violation
// surfaces as ErrDuplicateVote.
func (s *Store) InsertVote(ctx context.Context, topicID, userID string, option models.VoteOption) (models.Vote, error) {
	vote := models.Vote{
		ID:      uuid.NewString(),
		Option:  option,
		UserID:  userID,
		TopicID: topicID,
	}
	if err := s.db.WithContext(ctx).Create(&vote).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.Vote{}, ErrDuplicateVote
		}
		return models.Vote{}, fmt.Errorf("insert vote: %w", err)
	}
	s.notify(realtime.TableVotes, topicID, realtime.ActionInsert)
	return vote, nil
}

// ListVotes returns the complete current vote set for a topic.
func (s *Store) ListVotes(ctx context.Context, topicID string) ([]models.Vote, error) {
	var votes []models.Vote
	if err := s.db.WithContext(ctx).Where("topic_id = ?", topicID).Find(&votes).Error; err != nil {
		return nil, fmt.Errorf("list votes: %w", err)
	}
	return votes, nil
}

// HasVoted reports whether the user already has a vote on the topic.
func (s *Store) HasVoted(ctx context.Context, topicID, userID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Vote{}).
		Where("topic_id = ? AND user_id = ?", topicID, userID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("count votes: %w", err)
	}
	return count > 0, nil
}

// InsertComment appends a comment and returns it with the author joined in.
func (s *Store) InsertComment(ctx context.Context, topicID, userID, content string) (models.Comment, error) {
	comment := models.Comment{
		ID:      uuid.NewString(),
		Content: content,
		UserID:  userID,
		TopicID: topicID,
	}
	if err := s.db.WithContext(ctx).Create(&comment).Error; err != nil {
		return models.Comment{}, fmt.Errorf("insert comment: %w", err)
	}
	if err := s.db.WithContext(ctx).Preload("User").First(&comment, "id = ?", comment.ID).Error; err != nil {
		return models.Comment{}, fmt.Errorf("reload comment: %w", err)
	}
	s.notify(realtime.TableComments, topicID, realtime.ActionInsert)
	return comment, nil
}

// ListComments returns all comments for a topic, newest first, with authors
// joined for display.
func (s *Store) ListComments(ctx context.Context, topicID string) ([]models.Comment, error) {
	var comments []models.Comment
	err := s.db.WithContext(ctx).Preload("User").
		Where("topic_id = ?", topicID).
		Order("created_at DESC").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}
