package application

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faizi-7/graveyard-back/internal/domain/entity"
	"github.com/faizi-7/graveyard-back/internal/domain/errs"
)

func TestRegisterAndLogin_Alice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.identity.Register(ctx, RegisterInput{Username: "alice", Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleUser, u.Role)
	assert.NotEqual(t, "secret1", u.Password)
	assert.Equal(t, "https://cdn.test/default.jpg", u.ProfileURL)

	res, err := f.identity.Login(ctx, "a@x.com", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "alice", res.User.Username)

	_, err = f.identity.Login(ctx, "a@x.com", "wrong")
	assert.True(t, errs.Is(err, errs.KindUnauthorized))

	_, err = f.identity.Login(ctx, "nobody@x.com", "secret1")
	assert.True(t, errs.Is(err, errs.KindUnauthorized))
}

func TestRegister_DuplicateEmail(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice", "a@x.com")

	_, err := f.identity.Register(context.Background(), RegisterInput{Username: "other", Email: " A@X.com ", Password: "secret1"})
	assert.True(t, errs.Is(err, errs.KindConflict))
}

func TestRegister_RejectsShortPassword(t *testing.T) {
	f := newFixture(t)
	_, err := f.identity.Register(context.Background(), RegisterInput{Username: "bob", Email: "b@x.com", Password: "12345"})
	assert.True(t, errs.Is(err, errs.KindBadRequest))
}

func TestRegister_ProfileExtrasKeepUserRole(t *testing.T) {
	f := newFixture(t)
	u, err := f.identity.Register(context.Background(), RegisterInput{
		Username: "carol",
		Email:    "c@x.com",
		Password: "secret1",
		Fullname: "Carol C",
		About:    "builder",
		Image:    &Image{Filename: "me.PNG", ContentType: "image/png", Body: strings.NewReader("png")},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleUser, u.Role)
	assert.True(t, strings.HasPrefix(u.ProfileURL, "https://cdn.test/profiles/"+u.ID+"/"))
	assert.True(t, strings.HasSuffix(u.ProfileURL, ".png"))
}

func TestUpgradeRole_OverwritesOnRepeat(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.register(t, "dave", "d@x.com")

	_, err := f.identity.UpgradeRole(ctx, u.ID, UpgradeInput{Fullname: "ab"})
	assert.True(t, errs.Is(err, errs.KindBadRequest))

	up, err := f.identity.UpgradeRole(ctx, u.ID, UpgradeInput{Fullname: "Dave One", About: "first"})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleContributor, up.Role)

	up, err = f.identity.UpgradeRole(ctx, u.ID, UpgradeInput{Fullname: "Dave Two"})
	require.NoError(t, err)
	assert.Equal(t, "Dave Two", up.Fullname)
	assert.Empty(t, up.About)

	_, err = f.identity.UpgradeRole(ctx, "missing", UpgradeInput{Fullname: "Nobody"})
	assert.True(t, errs.Is(err, errs.KindNotFound))
}

func TestResolveSession_UsesCacheAndSeesUpgrade(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.register(t, "erin", "e@x.com")
	res, err := f.identity.Login(ctx, "e@x.com", "secret1")
	require.NoError(t, err)

	id, err := f.identity.ResolveSession(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, id.UserID)
	assert.Equal(t, entity.RoleUser, id.Role)

	_, err = f.identity.ResolveSession(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, 1, f.cache.hits)

	_, err = f.identity.UpgradeRole(ctx, u.ID, UpgradeInput{Fullname: "Erin E"})
	require.NoError(t, err)

	id, err = f.identity.ResolveSession(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleContributor, id.Role, "upgrade invalidates the cached identity")
}

func TestResolveSession_RejectsOtherTokenClasses(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.register(t, "frank", "f@x.com")

	require.NoError(t, f.account.RequestEmailVerification(ctx, u.ID))
	verifyToken := tokenFrom(t, f.notifier.last(t).Link, "emailToken")

	_, err := f.identity.ResolveSession(ctx, verifyToken)
	assert.True(t, errs.Is(err, errs.KindUnauthorized))
	_, err = f.identity.ResolveSession(ctx, "garbage")
	assert.True(t, errs.Is(err, errs.KindUnauthorized))
}

func TestGetPublicProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.contributor(t, "gina", "g@x.com")
	idea := f.idea(t, author.ID, "solar kettles")
	fan := f.register(t, "hank", "h@x.com")
	_, err := f.votes.AddFavorite(ctx, fan.ID, idea.ID)
	require.NoError(t, err)

	p, err := f.identity.GetPublicProfile(ctx, fan.ID)
	require.NoError(t, err)
	assert.Equal(t, "hank", p.Username)
	require.Len(t, p.Favorites, 1)
	assert.Equal(t, "gina", p.Favorites[0].Creator.Username)

	_, err = f.identity.GetPublicProfile(ctx, "missing")
	assert.True(t, errs.Is(err, errs.KindNotFound))
}
