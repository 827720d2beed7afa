package application

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faizi-7/graveyard-back/internal/domain/errs"
)

func TestIdeaCreate_RequiresContributor(t *testing.T) {
	f := newFixture(t)
	u := f.register(t, "bob", "b@x.com")

	_, err := f.ideas.Create(context.Background(), u.ID, IdeaInput{Title: "t", Description: "d", Tags: []string{"science"}, IsOriginal: true})
	assert.True(t, errs.Is(err, errs.KindForbidden))
}

func TestIdeaCreate_ValidatesAndIndexes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.contributor(t, "alice", "a@x.com")

	_, err := f.ideas.Create(ctx, author.ID, IdeaInput{Title: "t", Description: "d", Tags: []string{"astrology"}, IsOriginal: true})
	assert.True(t, errs.Is(err, errs.KindBadRequest))

	_, err = f.ideas.Create(ctx, author.ID, IdeaInput{Title: "t", Description: "d", Tags: []string{"science"}})
	assert.True(t, errs.Is(err, errs.KindBadRequest), "source description required when not original")

	v, err := f.ideas.Create(ctx, author.ID, IdeaInput{
		Title:             "repair cafe",
		Description:       "fix things together",
		Tags:              []string{"Social", "social", "environment"},
		SourceDescription: "seen in Amsterdam",
		DonationQR:        &Image{Filename: "qr.png", ContentType: "image/png", Body: strings.NewReader("qr")},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"social", "environment"}, v.Tags)
	assert.Equal(t, "alice", v.Creator.Username)
	assert.Equal(t, "https://cdn.test/ideas/"+v.ID+"/donation.png", v.DonationQRURL)
	assert.Contains(t, f.indexer.docs, v.ID)

	got, err := f.ideas.Get(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, v.Title, got.Title)
}

func TestIdeaUpdateAndDelete_CreatorOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.contributor(t, "alice", "a@x.com")
	other := f.contributor(t, "bob", "b@x.com")
	idea := f.idea(t, author.ID, "tool library")

	done := true
	_, err := f.ideas.Update(ctx, idea.ID, other.ID, IdeaUpdate{Implemented: &done})
	assert.True(t, errs.Is(err, errs.KindForbidden))

	v, err := f.ideas.Update(ctx, idea.ID, author.ID, IdeaUpdate{Implemented: &done})
	require.NoError(t, err)
	assert.True(t, v.Implemented)

	assert.True(t, errs.Is(f.ideas.Delete(ctx, idea.ID, other.ID), errs.KindForbidden))
	require.NoError(t, f.ideas.Delete(ctx, idea.ID, author.ID))
	assert.NotContains(t, f.indexer.docs, idea.ID)

	_, err = f.ideas.Get(ctx, idea.ID)
	assert.True(t, errs.Is(err, errs.KindNotFound))
}

func TestIdeaListAndSearch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.contributor(t, "alice", "a@x.com")
	f.idea(t, author.ID, "solar oven")
	f.idea(t, author.ID, "wind map")

	all, err := f.ideas.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "wind map", all[0].Title)

	found, err := f.ideas.Search(ctx, "solar", 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "solar oven", found[0].Title)

	_, err = f.ideas.Search(ctx, " ", 10)
	assert.True(t, errs.Is(err, errs.KindBadRequest))

	f.ideas.Indexer = nil
	found, err = f.ideas.Search(ctx, "solar", 10)
	require.NoError(t, err)
	assert.Empty(t, found)
}
