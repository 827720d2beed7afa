// Package memory keeps every repository in process memory behind one lock.
// It backs STORAGE_DRIVER=memory and the service tests.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/faizi-7/graveyard-back/internal/domain/entity"
	"github.com/faizi-7/graveyard-back/internal/domain/errs"
	"github.com/faizi-7/graveyard-back/internal/domain/repository"
)

type Store struct {
	mu       sync.RWMutex
	users    map[string]*entity.User
	emails   map[string]string // email -> user id
	ideas    map[string]*entity.Idea
	ideaSeq  []string // insertion order
	comments map[string]*entity.Comment
	comSeq   []string
}

func NewStore() *Store {
	return &Store{
		users:    map[string]*entity.User{},
		emails:   map[string]string{},
		ideas:    map[string]*entity.Idea{},
		comments: map[string]*entity.Comment{},
	}
}

func (s *Store) Users() *UserRepository       { return &UserRepository{s: s} }
func (s *Store) Ideas() *IdeaRepository       { return &IdeaRepository{s: s} }
func (s *Store) Comments() *CommentRepository { return &CommentRepository{s: s} }

func cloneUser(u *entity.User) *entity.User {
	c := *u
	c.Favorites = slices.Clone(u.Favorites)
	return &c
}

func cloneIdea(i *entity.Idea) *entity.Idea {
	c := *i
	c.Tags = slices.Clone(i.Tags)
	c.Voters = slices.Clone(i.Voters)
	return &c
}

func cloneComment(cm *entity.Comment) *entity.Comment {
	c := *cm
	c.Replies = slices.Clone(cm.Replies)
	return &c
}

// publicLocked must be called with s.mu held.
func (s *Store) publicLocked(userID string) entity.PublicUser {
	if u, ok := s.users[userID]; ok {
		return u.Public()
	}
	return entity.PublicUser{ID: userID}
}

// ---- users ----

type UserRepository struct{ s *Store }

func (r *UserRepository) Create(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, taken := r.s.emails[u.Email]; taken {
		return errs.Conflict("user already exists")
	}
	r.s.users[u.ID] = cloneUser(u)
	r.s.emails[u.Email] = u.ID
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return cloneUser(u), nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	id, ok := r.s.emails[email]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return cloneUser(r.s.users[id]), nil
}

func (r *UserRepository) UpdateProfile(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.users[u.ID]
	if !ok {
		return errs.ErrNotFound
	}
	cur.Role = u.Role
	cur.Fullname = u.Fullname
	cur.About = u.About
	cur.ProfileURL = u.ProfileURL
	cur.UpdatedAt = u.UpdatedAt
	return nil
}

func (r *UserRepository) SetPassword(_ context.Context, userID, hash string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.users[userID]
	if !ok {
		return errs.ErrNotFound
	}
	cur.Password = hash
	cur.UpdatedAt = at
	return nil
}

func (r *UserRepository) SetEmailVerified(_ context.Context, userID string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.users[userID]
	if !ok {
		return errs.ErrNotFound
	}
	cur.EmailVerified = true
	cur.UpdatedAt = at
	return nil
}

func (r *UserRepository) AddFavorite(_ context.Context, userID, ideaID string, at time.Time) ([]string, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.users[userID]
	if !ok {
		return nil, false, errs.ErrNotFound
	}
	if cur.HasFavorite(ideaID) {
		return slices.Clone(cur.Favorites), false, nil
	}
	cur.Favorites = append(cur.Favorites, ideaID)
	cur.UpdatedAt = at
	return slices.Clone(cur.Favorites), true, nil
}

// ---- ideas ----

type IdeaRepository struct{ s *Store }

func (r *IdeaRepository) Create(_ context.Context, i *entity.Idea) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.ideas[i.ID]; exists {
		return errs.Conflict("idea already exists")
	}
	r.s.ideas[i.ID] = cloneIdea(i)
	r.s.ideaSeq = append(r.s.ideaSeq, i.ID)
	return nil
}

func (r *IdeaRepository) GetByID(_ context.Context, id string) (*entity.Idea, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	i, ok := r.s.ideas[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return cloneIdea(i), nil
}

// Update writes the editable fields. Votes and voters only change through SaveVote.
func (r *IdeaRepository) Update(_ context.Context, i *entity.Idea) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.ideas[i.ID]
	if !ok {
		return errs.ErrNotFound
	}
	next := cloneIdea(i)
	next.Votes = cur.Votes
	next.Voters = cur.Voters
	r.s.ideas[i.ID] = next
	return nil
}

// Delete removes the idea along with its voters and comments.
func (r *IdeaRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.ideas[id]; !ok {
		return errs.ErrNotFound
	}
	delete(r.s.ideas, id)
	r.s.ideaSeq = slices.DeleteFunc(r.s.ideaSeq, func(x string) bool { return x == id })
	for cid, c := range r.s.comments {
		if c.IdeaID == id {
			delete(r.s.comments, cid)
		}
	}
	r.s.comSeq = slices.DeleteFunc(r.s.comSeq, func(x string) bool {
		_, ok := r.s.comments[x]
		return !ok
	})
	return nil
}

// SaveVote overwrites the aggregate with votes and upserts v.
func (r *IdeaRepository) SaveVote(_ context.Context, ideaID string, votes int, v entity.Voter) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i, ok := r.s.ideas[ideaID]
	if !ok {
		return errs.ErrNotFound
	}
	i.Votes = votes
	for idx := range i.Voters {
		if i.Voters[idx].UserID == v.UserID {
			i.Voters[idx] = v
			return nil
		}
	}
	i.Voters = append(i.Voters, v)
	return nil
}

func (r *IdeaRepository) GetView(_ context.Context, id string) (*entity.IdeaView, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	i, ok := r.s.ideas[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	v := entity.NewIdeaView(cloneIdea(i), r.s.publicLocked(i.CreatorID))
	return &v, nil
}

func (r *IdeaRepository) ListViews(_ context.Context) ([]entity.IdeaView, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]entity.IdeaView, 0, len(r.s.ideaSeq))
	for k := len(r.s.ideaSeq) - 1; k >= 0; k-- {
		i := r.s.ideas[r.s.ideaSeq[k]]
		out = append(out, entity.NewIdeaView(cloneIdea(i), r.s.publicLocked(i.CreatorID)))
	}
	return out, nil
}

// ListViewsByIDs skips ids that no longer exist and keeps the order of ids.
func (r *IdeaRepository) ListViewsByIDs(_ context.Context, ids []string) ([]entity.IdeaView, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]entity.IdeaView, 0, len(ids))
	for _, id := range ids {
		if i, ok := r.s.ideas[id]; ok {
			out = append(out, entity.NewIdeaView(cloneIdea(i), r.s.publicLocked(i.CreatorID)))
		}
	}
	return out, nil
}

// ---- comments ----

type CommentRepository struct{ s *Store }

func (r *CommentRepository) Create(_ context.Context, c *entity.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.comments[c.ID] = cloneComment(c)
	r.s.comSeq = append(r.s.comSeq, c.ID)
	return nil
}

// CreateReply stores the child and links it from the parent under one lock.
func (r *CommentRepository) CreateReply(_ context.Context, c *entity.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	parent, ok := r.s.comments[c.ParentID]
	if !ok || parent.IsReply() {
		return errs.ErrNotFound
	}
	r.s.comments[c.ID] = cloneComment(c)
	r.s.comSeq = append(r.s.comSeq, c.ID)
	parent.Replies = append(parent.Replies, c.ID)
	return nil
}

func (r *CommentRepository) GetByID(_ context.Context, id string) (*entity.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.comments[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return cloneComment(c), nil
}

func (r *CommentRepository) view(c *entity.Comment) entity.CommentView {
	return entity.CommentView{
		ID:        c.ID,
		Content:   c.Content,
		IdeaID:    c.IdeaID,
		ParentID:  c.ParentID,
		Creator:   r.s.publicLocked(c.CreatorID),
		CreatedAt: c.CreatedAt,
	}
}

func (r *CommentRepository) ListByIdea(_ context.Context, ideaID string) ([]entity.CommentView, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []entity.CommentView{}
	for k := len(r.s.comSeq) - 1; k >= 0; k-- {
		c := r.s.comments[r.s.comSeq[k]]
		if c.IdeaID != ideaID || c.IsReply() {
			continue
		}
		v := r.view(c)
		for j := len(c.Replies) - 1; j >= 0; j-- {
			if child, ok := r.s.comments[c.Replies[j]]; ok {
				v.Replies = append(v.Replies, r.view(child))
			}
		}
		out = append(out, v)
	}
	return out, nil
}

var (
	_ repository.UserRepository    = (*UserRepository)(nil)
	_ repository.IdeaRepository    = (*IdeaRepository)(nil)
	_ repository.CommentRepository = (*CommentRepository)(nil)
)
