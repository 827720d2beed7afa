package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faizi-7/graveyard-back/internal/domain/entity"
	"github.com/faizi-7/graveyard-back/internal/domain/errs"
)

func TestUserRepository_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	users := NewStore().Users()

	require.NoError(t, users.Create(ctx, &entity.User{ID: "1", Email: "a@x.com"}))
	err := users.Create(ctx, &entity.User{ID: "2", Email: "a@x.com"})
	assert.True(t, errs.Is(err, errs.KindConflict))

	_, err = users.GetByEmail(ctx, "b@x.com")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestUserRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	users := NewStore().Users()
	require.NoError(t, users.Create(ctx, &entity.User{ID: "1", Email: "a@x.com"}))

	u, err := users.GetByID(ctx, "1")
	require.NoError(t, err)
	u.Favorites = append(u.Favorites, "idea")

	again, err := users.GetByID(ctx, "1")
	require.NoError(t, err)
	assert.Empty(t, again.Favorites)
}

func TestUserRepository_StaleProfileWriteKeepsCredential(t *testing.T) {
	ctx := context.Background()
	users := NewStore().Users()
	require.NoError(t, users.Create(ctx, &entity.User{ID: "1", Email: "a@x.com", Password: "old"}))

	stale, err := users.GetByID(ctx, "1")
	require.NoError(t, err)

	at := time.Now().UTC()
	require.NoError(t, users.SetPassword(ctx, "1", "new", at))
	require.NoError(t, users.SetEmailVerified(ctx, "1", at))
	favs, added, err := users.AddFavorite(ctx, "1", "idea", at)
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, []string{"idea"}, favs)

	stale.Fullname = "Alice A"
	require.NoError(t, users.UpdateProfile(ctx, stale))

	got, err := users.GetByID(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "new", got.Password)
	assert.True(t, got.EmailVerified)
	assert.Equal(t, []string{"idea"}, got.Favorites)
	assert.Equal(t, "Alice A", got.Fullname)

	_, added, err = users.AddFavorite(ctx, "1", "idea", at)
	require.NoError(t, err)
	assert.False(t, added)
	assert.ErrorIs(t, users.SetPassword(ctx, "2", "x", at), errs.ErrNotFound)
}

func TestCommentRepository_ReplyLinkage(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	comments := s.Comments()

	require.NoError(t, comments.Create(ctx, &entity.Comment{ID: "p", IdeaID: "i"}))
	require.NoError(t, comments.CreateReply(ctx, &entity.Comment{ID: "c1", IdeaID: "i", ParentID: "p"}))
	require.NoError(t, comments.CreateReply(ctx, &entity.Comment{ID: "c2", IdeaID: "i", ParentID: "p"}))

	parent, err := comments.GetByID(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, []string{"c1", "c2"}, parent.Replies)

	err = comments.CreateReply(ctx, &entity.Comment{ID: "x", IdeaID: "i", ParentID: "missing"})
	assert.ErrorIs(t, err, errs.ErrNotFound)
	_, err = comments.GetByID(ctx, "x")
	assert.ErrorIs(t, err, errs.ErrNotFound, "no orphan is left behind")

	views, err := comments.ListByIdea(ctx, "i")
	require.NoError(t, err)
	require.Len(t, views, 1)
	require.Len(t, views[0].Replies, 2)
	assert.Equal(t, "c2", views[0].Replies[0].ID, "replies newest first")
}

func TestIdeaRepository_UpdateKeepsVotes(t *testing.T) {
	ctx := context.Background()
	ideas := NewStore().Ideas()
	require.NoError(t, ideas.Create(ctx, &entity.Idea{ID: "i", Title: "t"}))
	require.NoError(t, ideas.SaveVote(ctx, "i", 1, entity.Voter{UserID: "u", Direction: entity.Upvote}))

	stale := &entity.Idea{ID: "i", Title: "new", Implemented: true}
	require.NoError(t, ideas.Update(ctx, stale))

	got, err := ideas.GetByID(ctx, "i")
	require.NoError(t, err)
	assert.Equal(t, "new", got.Title)
	assert.Equal(t, 1, got.Votes)
	assert.Len(t, got.Voters, 1)
}

func TestIdeaRepository_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.Ideas().Create(ctx, &entity.Idea{ID: "i"}))
	require.NoError(t, s.Comments().Create(ctx, &entity.Comment{ID: "c", IdeaID: "i"}))

	require.NoError(t, s.Ideas().Delete(ctx, "i"))
	_, err := s.Comments().GetByID(ctx, "c")
	assert.ErrorIs(t, err, errs.ErrNotFound)
	assert.ErrorIs(t, s.Ideas().Delete(ctx, "i"), errs.ErrNotFound)
}

func TestIdeaRepository_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.Users().Create(ctx, &entity.User{ID: "u", Email: "u@x.com", Username: "u"}))
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, s.Ideas().Create(ctx, &entity.Idea{ID: id, CreatorID: "u"}))
	}

	views, err := s.Ideas().ListViews(ctx)
	require.NoError(t, err)
	require.Len(t, views, 3)
	assert.Equal(t, "c", views[0].ID)
	assert.Equal(t, "u", views[0].Creator.Username)

	byIDs, err := s.Ideas().ListViewsByIDs(ctx, []string{"b", "gone", "a"})
	require.NoError(t, err)
	require.Len(t, byIDs, 2)
	assert.Equal(t, "b", byIDs[0].ID)
}
