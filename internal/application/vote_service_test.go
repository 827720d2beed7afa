package application

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faizi-7/graveyard-back/internal/domain/entity"
	"github.com/faizi-7/graveyard-back/internal/domain/errs"
)

func TestVote_FlipAndRepeat(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.contributor(t, "alice", "a@x.com")
	idea := f.idea(t, author.ID, "rainwater nets")
	voter := f.register(t, "bob", "b@x.com")

	res, err := f.votes.Vote(ctx, idea.ID, voter.ID, entity.Upvote)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Votes)

	_, err = f.votes.Vote(ctx, idea.ID, voter.ID, entity.Upvote)
	assert.True(t, errs.Is(err, errs.KindForbidden))

	res, err = f.votes.Vote(ctx, idea.ID, voter.ID, entity.Downvote)
	require.NoError(t, err)
	assert.Equal(t, -1, res.Votes)
	assert.Equal(t, "downvote", res.Direction)

	stored, err := f.store.Ideas().GetByID(ctx, idea.ID)
	require.NoError(t, err)
	require.Len(t, stored.Voters, 1)
	assert.Equal(t, entity.Downvote, stored.Voters[0].Direction)
	assert.Equal(t, stored.Tally(), stored.Votes)
}

func TestVote_UnknownIdea(t *testing.T) {
	f := newFixture(t)
	_, err := f.votes.Vote(context.Background(), "missing", "u", entity.Upvote)
	assert.True(t, errs.Is(err, errs.KindNotFound))
}

func TestVote_SequentialVotesKeepAggregate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.contributor(t, "alice", "a@x.com")
	idea := f.idea(t, author.ID, "bike lanes")

	for i := 0; i < 20; i++ {
		dir := entity.Upvote
		if i%3 == 0 {
			dir = entity.Downvote
		}
		_, err := f.votes.Vote(ctx, idea.ID, fmt.Sprintf("user-%d", i), dir)
		require.NoError(t, err)
	}
	stored, err := f.store.Ideas().GetByID(ctx, idea.ID)
	require.NoError(t, err)
	assert.Equal(t, stored.Tally(), stored.Votes)
	assert.Equal(t, 6, stored.Votes) // 13 up, 7 down
}

// Concurrent voters race on the read-modify-write of the aggregate. Every
// voter record lands, but the aggregate can lose updates: last write wins.
func TestVote_ConcurrentVotesMayLoseAggregateUpdates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.contributor(t, "alice", "a@x.com")
	idea := f.idea(t, author.ID, "shared tools")

	const n = 50
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			_, err := f.votes.Vote(ctx, idea.ID, fmt.Sprintf("user-%d", i), entity.Upvote)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	stored, err := f.store.Ideas().GetByID(ctx, idea.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Voters, n)
	assert.Equal(t, n, stored.Tally())
	assert.GreaterOrEqual(t, stored.Votes, 1)
	assert.LessOrEqual(t, stored.Votes, n)
}

func TestAddFavorite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.contributor(t, "alice", "a@x.com")
	idea := f.idea(t, author.ID, "seed library")
	fan := f.register(t, "bob", "b@x.com")

	favs, err := f.votes.AddFavorite(ctx, fan.ID, idea.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{idea.ID}, favs)

	_, err = f.votes.AddFavorite(ctx, fan.ID, idea.ID)
	assert.True(t, errs.Is(err, errs.KindBadRequest))

	_, err = f.votes.AddFavorite(ctx, fan.ID, "missing")
	assert.True(t, errs.Is(err, errs.KindNotFound))

	_, err = f.votes.AddFavorite(ctx, "ghost", idea.ID)
	assert.True(t, errs.Is(err, errs.KindNotFound))
}
