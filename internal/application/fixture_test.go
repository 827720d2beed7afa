package application

import (
	"context"
	"io"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/faizi-7/graveyard-back/config"
	"github.com/faizi-7/graveyard-back/internal/domain/entity"
	"github.com/faizi-7/graveyard-back/internal/infrastructure/memory"
	"github.com/faizi-7/graveyard-back/pkg/helpers"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type sentMail struct {
	Kind string
	To   string
	Link string
}

type fakeNotifier struct {
	mu      sync.Mutex
	sent    []sentMail
	contact []entity.ContactMessage
}

func (n *fakeNotifier) SendVerificationEmail(_ context.Context, to, _, link string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentMail{Kind: "verify", To: to, Link: link})
	return nil
}

func (n *fakeNotifier) SendPasswordResetEmail(_ context.Context, to, _, link string, _ time.Time) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentMail{Kind: "reset", To: to, Link: link})
	return nil
}

func (n *fakeNotifier) SendContactMessage(_ context.Context, msg entity.ContactMessage) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.contact = append(n.contact, msg)
	return nil
}

func (n *fakeNotifier) last(t *testing.T) sentMail {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	require.NotEmpty(t, n.sent, "no mail sent")
	return n.sent[len(n.sent)-1]
}

// tokenFrom pulls a query parameter out of a mailed link.
func tokenFrom(t *testing.T, link, key string) string {
	t.Helper()
	u, err := url.Parse(link)
	require.NoError(t, err)
	tok := u.Query().Get(key)
	require.NotEmpty(t, tok)
	return tok
}

type fakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (s *fakeStore) Upload(_ context.Context, objectPath, _ string, r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.objects == nil {
		s.objects = map[string][]byte{}
	}
	s.objects[objectPath] = b
	return "https://cdn.test/" + objectPath, nil
}

type fakeCache struct {
	mu   sync.Mutex
	ids  map[string]entity.Identity
	hits int
}

func (c *fakeCache) Get(_ context.Context, email string) (entity.Identity, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, ok := c.ids[email]
	if ok {
		c.hits++
	}
	return id, ok, nil
}

func (c *fakeCache) Set(_ context.Context, id entity.Identity) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ids == nil {
		c.ids = map[string]entity.Identity{}
	}
	c.ids[id.Email] = id
	return nil
}

func (c *fakeCache) Invalidate(_ context.Context, email string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.ids, email)
	return nil
}

type fakeIndexer struct {
	mu   sync.Mutex
	docs map[string]entity.IdeaView
}

func (x *fakeIndexer) Index(_ context.Context, v entity.IdeaView) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.docs == nil {
		x.docs = map[string]entity.IdeaView{}
	}
	x.docs[v.ID] = v
	return nil
}

func (x *fakeIndexer) Delete(_ context.Context, id string) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	delete(x.docs, id)
	return nil
}

// Search matches the query against titles only.
func (x *fakeIndexer) Search(_ context.Context, q string, _ int) ([]string, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	var ids []string
	for id, v := range x.docs {
		if strings.Contains(v.Title, q) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

type fixture struct {
	store    *memory.Store
	clock    *fakeClock
	notifier *fakeNotifier
	objects  *fakeStore
	cache    *fakeCache
	indexer  *fakeIndexer

	identity *IdentityService
	account  *AccountService
	votes    *VoteService
	comments *CommentService
	ideas    *IdeaService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:    memory.NewStore(),
		clock:    &fakeClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)},
		notifier: &fakeNotifier{},
		objects:  &fakeStore{},
		cache:    &fakeCache{},
		indexer:  &fakeIndexer{},
	}
	tokens := helpers.NewTokenAuthority(config.TokenConfig{
		SessionSecret: "session-secret",
		SessionTTL:    30 * 24 * time.Hour,
		ResetSecret:   "reset-secret",
		ResetTTL:      20 * time.Minute,
	}, helpers.WithClock(f.clock.Now))
	logger := helpers.NewDiscardLogger()

	users, ideas, comments := f.store.Users(), f.store.Ideas(), f.store.Comments()
	f.identity = NewIdentityService(users, ideas, tokens, f.objects, f.cache, logger, "https://cdn.test/default.jpg")
	f.account = NewAccountService(f.identity, tokens, f.notifier, logger, "https://app.test/verify", "https://app.test/reset")
	f.votes = NewVoteService(ideas, users, logger)
	f.comments = NewCommentService(comments, ideas, logger)
	f.ideas = NewIdeaService(ideas, users, f.indexer, f.objects, logger)
	return f
}

func (f *fixture) register(t *testing.T, username, email string) *entity.User {
	t.Helper()
	u, err := f.identity.Register(context.Background(), RegisterInput{Username: username, Email: email, Password: "secret1"})
	require.NoError(t, err)
	return u
}

func (f *fixture) contributor(t *testing.T, username, email string) *entity.User {
	t.Helper()
	u := f.register(t, username, email)
	u, err := f.identity.UpgradeRole(context.Background(), u.ID, UpgradeInput{Fullname: username + " full"})
	require.NoError(t, err)
	return u
}

func (f *fixture) idea(t *testing.T, creatorID, title string) *entity.IdeaView {
	t.Helper()
	v, err := f.ideas.Create(context.Background(), creatorID, IdeaInput{
		Title:       title,
		Description: "description of " + title,
		Tags:        []string{"technology"},
		IsOriginal:  true,
	})
	require.NoError(t, err)
	return v
}
