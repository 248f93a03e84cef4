package services

import (
	"context"
	"sync"
	"time"

	"agora/internal/models"
	"agora/internal/store"

	"github.com/google/uuid"
)

// fakeVoteStore enforces the same (user, topic) uniqueness the database
// would, so conflict and race behaviour can be tested without Postgres.
type fakeVoteStore struct {
	mu        sync.Mutex
	votes     map[string]models.Vote
	insertErr error
	listErr   error
	listCalls int
}

func newFakeVoteStore() *fakeVoteStore {
	return &fakeVoteStore{votes: make(map[string]models.Vote)}
}

func (f *fakeVoteStore) InsertVote(_ context.Context, topicID, userID string, option models.VoteOption) (models.Vote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return models.Vote{}, f.insertErr
	}
	key := userID + "|" + topicID
	if _, ok := f.votes[key]; ok {
		return models.Vote{}, store.ErrDuplicateVote
	}
	vote := models.Vote{
		ID:        uuid.NewString(),
		Option:    option,
		UserID:    userID,
		TopicID:   topicID,
		CreatedAt: time.Now(),
	}
	f.votes[key] = vote
	return vote, nil
}

func (f *fakeVoteStore) ListVotes(_ context.Context, topicID string) ([]models.Vote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	var votes []models.Vote
	for _, v := range f.votes {
		if v.TopicID == topicID {
			votes = append(votes, v)
		}
	}
	return votes, nil
}

func (f *fakeVoteStore) HasVoted(_ context.Context, topicID, userID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.votes[userID+"|"+topicID]
	return ok, nil
}

func (f *fakeVoteStore) listCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

func (f *fakeVoteStore) voteCount(topicID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, v := range f.votes {
		if v.TopicID == topicID {
			n++
		}
	}
	return n
}

// fakeCommentStore counts list calls and lets a test script individual
// responses through onList.
type fakeCommentStore struct {
	mu        sync.Mutex
	comments  []models.Comment
	listCalls int

	// When set, invoked with the 1-based call number instead of the
	// default "return everything" behaviour.
	onList func(call int) ([]models.Comment, error)
}

func newFakeCommentStore() *fakeCommentStore {
	return &fakeCommentStore{}
}

func (f *fakeCommentStore) InsertComment(_ context.Context, topicID, userID, content string) (models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	comment := models.Comment{
		ID:        uuid.NewString(),
		Content:   content,
		UserID:    userID,
		TopicID:   topicID,
		CreatedAt: time.Now(),
	}
	f.comments = append(f.comments, comment)
	return comment, nil
}

func (f *fakeCommentStore) ListComments(_ context.Context, topicID string) ([]models.Comment, error) {
	f.mu.Lock()
	f.listCalls++
	call := f.listCalls
	onList := f.onList
	f.mu.Unlock()

	if onList != nil {
		return onList(call)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Comment
	for _, c := range f.comments {
		if c.TopicID == topicID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCommentStore) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

func (f *fakeCommentStore) seed(comments ...models.Comment) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.comments = append(f.comments, comments...)
}

func comment(id, topicID string, at time.Time) models.Comment {
	return models.Comment{ID: id, Content: "c-" + id, UserID: "u1", TopicID: topicID, CreatedAt: at}
}
