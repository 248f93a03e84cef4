package handlers

import (
	"context"
	"sync"
	"time"

	"agora/internal/middleware"
	"agora/internal/models"
	"agora/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type fakeTopicStore struct {
	topics map[string]models.Topic
}

func newFakeTopicStore(topics ...models.Topic) *fakeTopicStore {
	f := &fakeTopicStore{topics: make(map[string]models.Topic)}
	for _, topic := range topics {
		f.topics[topic.ID] = topic
	}
	return f
}

func (f *fakeTopicStore) ListTopics(_ context.Context, filter store.TopicFilter) ([]models.Topic, error) {
	var out []models.Topic
	for _, topic := range f.topics {
		if filter.Category != "" && topic.Category != filter.Category {
			continue
		}
		out = append(out, topic)
	}
	return out, nil
}

func (f *fakeTopicStore) GetTopic(_ context.Context, id string) (models.Topic, error) {
	if topic, ok := f.topics[id]; ok {
		return topic, nil
	}
	return models.Topic{}, store.ErrNotFound
}

func (f *fakeTopicStore) ListCategories(context.Context) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, topic := range f.topics {
		if !seen[topic.Category] {
			seen[topic.Category] = true
			out = append(out, topic.Category)
		}
	}
	return out, nil
}

func (f *fakeTopicStore) CreateTopic(_ context.Context, category, title, description string) (models.Topic, error) {
	topic := models.Topic{ID: uuid.NewString(), Category: category, Title: title, Description: description}
	f.topics[topic.ID] = topic
	return topic, nil
}

func (f *fakeTopicStore) UpdateTopic(_ context.Context, id, category, title, description string) (models.Topic, error) {
	topic, ok := f.topics[id]
	if !ok {
		return models.Topic{}, store.ErrNotFound
	}
	topic.Category, topic.Title, topic.Description = category, title, description
	f.topics[id] = topic
	return topic, nil
}

func (f *fakeTopicStore) DeleteTopic(_ context.Context, id string) error {
	if _, ok := f.topics[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.topics, id)
	return nil
}

// fakeVoteStore mirrors the database's (user, topic) unique index.
type fakeVoteStore struct {
	mu    sync.Mutex
	votes map[string]models.Vote
}

func newFakeVoteStore() *fakeVoteStore {
	return &fakeVoteStore{votes: make(map[string]models.Vote)}
}

func (f *fakeVoteStore) InsertVote(_ context.Context, topicID, userID string, option models.VoteOption) (models.Vote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := userID + "|" + topicID
	if _, ok := f.votes[key]; ok {
		return models.Vote{}, store.ErrDuplicateVote
	}
	vote := models.Vote{ID: uuid.NewString(), Option: option, UserID: userID, TopicID: topicID, CreatedAt: time.Now()}
	f.votes[key] = vote
	return vote, nil
}

func (f *fakeVoteStore) ListVotes(_ context.Context, topicID string) ([]models.Vote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Vote
	for _, v := range f.votes {
		if v.TopicID == topicID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (f *fakeVoteStore) HasVoted(_ context.Context, topicID, userID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.votes[userID+"|"+topicID]
	return ok, nil
}

// fakeCommentStore counts list calls so lazy-load behaviour is observable.
type fakeCommentStore struct {
	mu        sync.Mutex
	comments  []models.Comment
	listCalls int
}

func (f *fakeCommentStore) InsertComment(_ context.Context, topicID, userID, content string) (models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	comment := models.Comment{
		ID:        uuid.NewString(),
		Content:   content,
		UserID:    userID,
		User:      models.User{ID: userID, Name: "Tester", Email: "tester@example.com"},
		TopicID:   topicID,
		CreatedAt: time.Now(),
	}
	f.comments = append(f.comments, comment)
	return comment, nil
}

func (f *fakeCommentStore) ListComments(_ context.Context, topicID string) ([]models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
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

// asUser injects a resolved identity the way middleware.LoadUser would.
func asUser(user *models.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		if user != nil {
			c.Set(middleware.CheckUserKey, user)
		}
		c.Next()
	}
}
