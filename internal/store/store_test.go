package store

import (
	"context"
	"path/filepath"
	"testing"

	"agora/internal/models"
	"agora/internal/realtime"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// openTestStore runs the store against an embedded database file so the
// queries and the transactional paths are exercised for real.
func openTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "store.db")
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&models.User{},
		&models.Topic{},
		&models.Vote{},
		&models.Comment{},
	))
	bus := realtime.NewBus()
	t.Cleanup(func() { bus.Close() })
	return New(conn, bus)
}

func TestDeleteTopicRemovesVotesAndComments(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	user, err := st.CreateUser(ctx, "alice@example.com", "Alice", "hash")
	require.NoError(t, err)
	topic, err := st.CreateTopic(ctx, "policy", "Remote work", "")
	require.NoError(t, err)
	other, err := st.CreateTopic(ctx, "policy", "Four-day week", "")
	require.NoError(t, err)

	_, err = st.InsertVote(ctx, topic.ID, user.ID, models.OptionAgree)
	require.NoError(t, err)
	_, err = st.InsertComment(ctx, topic.ID, user.ID, "first")
	require.NoError(t, err)
	_, err = st.InsertVote(ctx, other.ID, user.ID, models.OptionNeutral)
	require.NoError(t, err)

	require.NoError(t, st.DeleteTopic(ctx, topic.ID))

	// No orphaned rows: a watch refreshing after the delete must see an
	// empty set, not stale tallies.
	votes, err := st.ListVotes(ctx, topic.ID)
	require.NoError(t, err)
	assert.Empty(t, votes)
	comments, err := st.ListComments(ctx, topic.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)
	_, err = st.GetTopic(ctx, topic.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// The neighbouring topic is untouched.
	votes, err = st.ListVotes(ctx, other.ID)
	require.NoError(t, err)
	assert.Len(t, votes, 1)
}

func TestDeleteTopicMissing(t *testing.T) {
	st := openTestStore(t)
	err := st.DeleteTopic(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInsertVoteDuplicateMapsToSentinel(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	user, err := st.CreateUser(ctx, "bob@example.com", "Bob", "hash")
	require.NoError(t, err)
	topic, err := st.CreateTopic(ctx, "policy", "Remote work", "")
	require.NoError(t, err)

	_, err = st.InsertVote(ctx, topic.ID, user.ID, models.OptionAgree)
	require.NoError(t, err)
	_, err = st.InsertVote(ctx, topic.ID, user.ID, models.OptionDisagree)
	assert.ErrorIs(t, err, ErrDuplicateVote)

	votes, err := st.ListVotes(ctx, topic.ID)
	require.NoError(t, err)
	assert.Len(t, votes, 1, "the unique index admits exactly one row")
}
