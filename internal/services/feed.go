package services

import (
	"context"
	"log"
	"sort"
	"strings"
	"sync"

	"agora/internal/models"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CommentStore is the slice of the persistent store the feed needs.
type CommentStore interface {
	InsertComment(ctx context.Context, topicID, userID, content string) (models.Comment, error)
	ListComments(ctx context.Context, topicID string) ([]models.Comment, error)
}

// FeedState tracks the per-topic lifecycle of the comment list.
type FeedState int

const (
	FeedNotLoaded FeedState = iota
	FeedLoading
	FeedLoaded
)

// feedCacheSize bounds how many topic feeds stay resident. An evicted feed
// simply bulk-loads again on its next read.
const feedCacheSize = 512

type topicFeed struct {
	mu       sync.Mutex
	state    FeedState
	comments []models.Comment

	// Monotonic fetch guard: a refetch that resolves after a newer one
	// has already been applied is discarded, so a stale bulk load can
	// never overwrite a push-confirmed refresh.
	nextSeq    uint64
	appliedSeq uint64
}

// CommentFeed keeps one ordered, deduplicated comment sequence per topic.
// History is loaded lazily, the first time anyone asks; push notifications
// replace the sequence wholesale from the store. Repeated reads of a loaded
// feed never refetch.
type CommentFeed struct {
	store CommentStore
	cache *lru.Cache[string, *topicFeed]
}

func NewCommentFeed(store CommentStore) *CommentFeed {
	cache, err := lru.New[string, *topicFeed](feedCacheSize)
	if err != nil {
		// Only reachable with a non-positive size constant.
		panic(err)
	}
	return &CommentFeed{store: store, cache: cache}
}

func (f *CommentFeed) feed(topicID string) *topicFeed {
	if tf, ok := f.cache.Get(topicID); ok {
		return tf
	}
	tf := &topicFeed{}
	if prev, ok, _ := f.cache.PeekOrAdd(topicID, tf); ok {
		return prev
	}
	return tf
}

// Get returns the comment list for a topic, bulk-loading it on first use.
// A feed already marked loaded (by an earlier read or by a push-driven
// refresh) is served from memory with no store call.
func (f *CommentFeed) Get(ctx context.Context, topicID string) ([]models.Comment, error) {
	tf := f.feed(topicID)

	tf.mu.Lock()
	if tf.state == FeedLoaded {
		out := snapshotOf(tf.comments)
		tf.mu.Unlock()
		return out, nil
	}
	if tf.state == FeedNotLoaded {
		tf.state = FeedLoading
	}
	tf.nextSeq++
	seq := tf.nextSeq
	tf.mu.Unlock()

	comments, err := f.store.ListComments(ctx, topicID)
	if err != nil {
		tf.mu.Lock()
		if tf.state == FeedLoading {
			tf.state = FeedNotLoaded
		}
		out := snapshotOf(tf.comments)
		tf.mu.Unlock()
		// Degrade to last known good state; the caller decides whether
		// the error is worth surfacing.
		return out, err
	}

	return tf.apply(seq, comments), nil
}

// RefreshFromPush refetches the authoritative comment list after a change
// notification and replaces the in-memory sequence wholesale. It also counts
// as the initial load: if it wins the race against a never-finished bulk
// load, no further bulk fetch will happen.
func (f *CommentFeed) RefreshFromPush(ctx context.Context, topicID string) ([]models.Comment, error) {
	tf := f.feed(topicID)

	tf.mu.Lock()
	tf.nextSeq++
	seq := tf.nextSeq
	tf.mu.Unlock()

	comments, err := f.store.ListComments(ctx, topicID)
	if err != nil {
		log.Printf("feed: background refresh for topic %s failed, keeping previous list: %v", topicID, err)
		tf.mu.Lock()
		out := snapshotOf(tf.comments)
		tf.mu.Unlock()
		return out, err
	}

	return tf.apply(seq, comments), nil
}

// Snapshot returns the in-memory list without touching the store. ok is
// false while the feed has never completed a load.
func (f *CommentFeed) Snapshot(topicID string) ([]models.Comment, bool) {
	tf := f.feed(topicID)
	tf.mu.Lock()
	defer tf.mu.Unlock()
	return snapshotOf(tf.comments), tf.state == FeedLoaded
}

// State exposes the per-topic load state.
func (f *CommentFeed) State(topicID string) FeedState {
	tf := f.feed(topicID)
	tf.mu.Lock()
	defer tf.mu.Unlock()
	return tf.state
}

// Add validates and appends a comment, then immediately refreshes the feed
// from the store. The refresh, not the submission, is what marks the feed
// loaded: the transition happens only once a store-confirmed list is in
// hand, so a stale bulk load can never clobber it afterwards.
func (f *CommentFeed) Add(ctx context.Context, user *models.User, topicID, content string) (models.Comment, error) {
	if user == nil {
		return models.Comment{}, ErrAuthRequired
	}
	if strings.TrimSpace(content) == "" {
		return models.Comment{}, ErrEmptyComment
	}

	comment, err := f.store.InsertComment(ctx, topicID, user.ID, content)
	if err != nil {
		return models.Comment{}, err
	}
	if _, err := f.RefreshFromPush(ctx, topicID); err != nil {
		// The comment is committed; subscribers will converge on the
		// next notification.
		log.Printf("feed: post-insert refresh for topic %s: %v", topicID, err)
	}
	return comment, nil
}

// apply installs a fetched list unless a newer fetch already did.
func (tf *topicFeed) apply(seq uint64, comments []models.Comment) []models.Comment {
	tf.mu.Lock()
	defer tf.mu.Unlock()
	if seq <= tf.appliedSeq {
		return snapshotOf(tf.comments)
	}
	tf.appliedSeq = seq
	tf.comments = normalize(comments)
	tf.state = FeedLoaded
	return snapshotOf(tf.comments)
}

// normalize deduplicates by id and orders by created_at descending, newest
// first, with the id as a stable tie-break.
func normalize(comments []models.Comment) []models.Comment {
	seen := make(map[string]struct{}, len(comments))
	out := make([]models.Comment, 0, len(comments))
	for _, c := range comments {
		if _, ok := seen[c.ID]; ok {
			continue
		}
		seen[c.ID] = struct{}{}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func snapshotOf(comments []models.Comment) []models.Comment {
	out := make([]models.Comment, len(comments))
	copy(out, comments)
	return out
}
