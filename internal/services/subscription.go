package services

import (
	"context"
	"log"
	"sync"
	"sync/atomic"

	"agora/internal/models"
	"agora/internal/realtime"

	"github.com/google/uuid"
)

// WatchState is the lifecycle of one topic subscription. A watch only ever
// moves forward: Unsubscribed -> Subscribing -> Active -> Closed.
type WatchState int32

const (
	WatchUnsubscribed WatchState = iota
	WatchSubscribing
	WatchActive
	WatchClosed
)

// Update is one push to a connected viewer. Only the changed parts are set.
type Update struct {
	TopicID  string            `json:"topic_id"`
	Stats    *models.VoteStats `json:"stats,omitempty"`
	Comments []models.Comment  `json:"comments,omitempty"`
}

// SubscriptionManager opens and supervises the live channels behind every
// visible topic. One watch per (viewer, topic); each watch holds two
// independent change channels (votes, comments) against the store's bus and
// re-fetches the authoritative data set on every notification.
type SubscriptionManager struct {
	bus   *realtime.Bus
	votes VoteStore
	feed  *CommentFeed

	mu      sync.Mutex
	watches map[string]*TopicWatch
}

func NewSubscriptionManager(bus *realtime.Bus, votes VoteStore, feed *CommentFeed) *SubscriptionManager {
	return &SubscriptionManager{
		bus:     bus,
		votes:   votes,
		feed:    feed,
		watches: make(map[string]*TopicWatch),
	}
}

// TopicWatch is one live view of one topic. Updates() delivers fresh stats
// and comment snapshots until Close. Both underlying channels are released
// on every exit path: they are bound to the watch context, which Close (and
// nothing else) cancels.
type TopicWatch struct {
	ID      string
	TopicID string

	manager *SubscriptionManager
	ctx     context.Context
	cancel  context.CancelFunc
	state   atomic.Int32
	updates chan Update

	// Guard so a fetch that resolves late never overwrites the result of
	// a newer one.
	fetchSeq   atomic.Uint64
	appliedMu  sync.Mutex
	appliedSeq uint64
}

// OnTopicVisible opens a watch: both change channels are acquired before the
// watch goes active, so no notification can be lost between "visible" and
// "subscribed". The returned watch must be closed when the topic leaves
// visibility.
func (m *SubscriptionManager) OnTopicVisible(topicID string) (*TopicWatch, error) {
	ctx, cancel := context.WithCancel(context.Background())
	w := &TopicWatch{
		ID:      uuid.NewString(),
		TopicID: topicID,
		manager: m,
		ctx:     ctx,
		cancel:  cancel,
		updates: make(chan Update, 8),
	}
	w.state.Store(int32(WatchSubscribing))

	voteCh, err := m.bus.Subscribe(ctx, realtime.TableVotes, topicID)
	if err != nil {
		cancel()
		w.state.Store(int32(WatchClosed))
		return nil, err
	}
	commentCh, err := m.bus.Subscribe(ctx, realtime.TableComments, topicID)
	if err != nil {
		// Releases the vote channel too.
		cancel()
		w.state.Store(int32(WatchClosed))
		return nil, err
	}

	w.state.Store(int32(WatchActive))
	m.mu.Lock()
	m.watches[w.ID] = w
	m.mu.Unlock()

	go w.run(voteCh, commentCh)
	return w, nil
}

// OnTopicHidden closes a watch by id. Idempotent.
func (m *SubscriptionManager) OnTopicHidden(watchID string) {
	m.mu.Lock()
	w := m.watches[watchID]
	m.mu.Unlock()
	if w != nil {
		w.Close()
	}
}

// WatchCount reports the number of open watches; closing every topic view
// must bring it back to zero.
func (m *SubscriptionManager) WatchCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.watches)
}

func (m *SubscriptionManager) remove(watchID string) {
	m.mu.Lock()
	delete(m.watches, watchID)
	m.mu.Unlock()
}

// Updates delivers stats and comment refreshes. Closed when the watch ends.
func (w *TopicWatch) Updates() <-chan Update {
	return w.updates
}

// State returns the current lifecycle state.
func (w *TopicWatch) State() WatchState {
	return WatchState(w.state.Load())
}

// Close releases both change channels and ends the update stream. Safe to
// call multiple times and from any goroutine; defer it on every path that
// opened the watch.
func (w *TopicWatch) Close() {
	if w.state.Swap(int32(WatchClosed)) == int32(WatchClosed) {
		return
	}
	w.cancel()
	w.manager.remove(w.ID)
}

func (w *TopicWatch) run(voteCh, commentCh <-chan realtime.ChangeEvent) {
	defer close(w.updates)
	defer w.Close()

	// Initial snapshot so a viewer never stares at an empty panel while
	// waiting for the first change.
	w.refreshStats()
	if comments, ok := w.manager.feed.Snapshot(w.TopicID); ok {
		w.emit(Update{TopicID: w.TopicID, Comments: comments})
	}

	for {
		select {
		case <-w.ctx.Done():
			return
		case _, ok := <-voteCh:
			if !ok {
				return
			}
			w.refreshStats()
		case _, ok := <-commentCh:
			if !ok {
				return
			}
			w.refreshComments()
		}
	}
}

// refreshStats pulls the full vote set and recomputes the tallies. The
// result replaces the previous stats atomically or not at all: if the watch
// closed, or a newer fetch already applied, the result is discarded.
func (w *TopicWatch) refreshStats() {
	seq := w.fetchSeq.Add(1)

	votes, err := w.manager.votes.ListVotes(w.ctx, w.TopicID)
	if err != nil {
		// Keep the last known good stats on screen.
		log.Printf("subscription: stats refresh for topic %s: %v", w.TopicID, err)
		return
	}
	stats := ComputeStats(votes)

	w.appliedMu.Lock()
	if seq <= w.appliedSeq || w.State() == WatchClosed {
		w.appliedMu.Unlock()
		return
	}
	w.appliedSeq = seq
	w.appliedMu.Unlock()

	w.emit(Update{TopicID: w.TopicID, Stats: &stats})
}

// refreshComments is a background refresh: it must never flip a loading
// indicator, so it goes through the push path of the feed, which replaces
// the sequence silently.
func (w *TopicWatch) refreshComments() {
	comments, err := w.manager.feed.RefreshFromPush(w.ctx, w.TopicID)
	if err != nil {
		return
	}
	if w.State() == WatchClosed {
		return
	}
	w.emit(Update{TopicID: w.TopicID, Comments: comments})
}

// emit pushes an update without ever blocking the watch loop. When the
// consumer lags, the oldest pending update is dropped in favour of the new
// one; every update is a full snapshot, so skipping one loses nothing.
func (w *TopicWatch) emit(u Update) {
	for {
		select {
		case w.updates <- u:
			return
		default:
		}
		select {
		case <-w.updates:
		default:
		}
	}
}
