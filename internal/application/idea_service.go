package application

import (
	"context"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/faizi-7/graveyard-back/internal/domain/entity"
	"github.com/faizi-7/graveyard-back/internal/domain/errs"
	repo "github.com/faizi-7/graveyard-back/internal/domain/repository"
)

// IdeaService is the CRUD and search surface for ideas.
type IdeaService struct {
	Ideas   repo.IdeaRepository
	Users   repo.UserRepository
	Indexer IdeaIndexer // optional
	Store   ObjectStore // optional
	Logger  *logrus.Logger
}

func NewIdeaService(ideas repo.IdeaRepository, users repo.UserRepository, indexer IdeaIndexer, store ObjectStore, logger *logrus.Logger) *IdeaService {
	return &IdeaService{Ideas: ideas, Users: users, Indexer: indexer, Store: store, Logger: logger}
}

type IdeaInput struct {
	Title             string
	Description       string
	Tags              []string
	IsOriginal        bool
	SourceDescription string
	DonationQRURL     string
	DonationQR        *Image
}

// IdeaUpdate carries the fields a creator may change after publishing.
type IdeaUpdate struct {
	Implemented   *bool
	DonationQRURL *string
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if _, dup := seen[t]; dup || t == "" {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// Create publishes an idea. Only contributors may author ideas.
func (s *IdeaService) Create(ctx context.Context, creatorID string, in IdeaInput) (*entity.IdeaView, error) {
	u, err := s.Users.GetByID(ctx, creatorID)
	if err != nil {
		return nil, lookup(err, "user not found")
	}
	if u.Role != entity.RoleContributor {
		return nil, errs.Forbidden("only contributors can post ideas")
	}

	now := time.Now().UTC()
	idea := &entity.Idea{
		ID:                uuid.NewString(),
		Title:             strings.TrimSpace(in.Title),
		Description:       strings.TrimSpace(in.Description),
		CreatorID:         u.ID,
		Tags:              normalizeTags(in.Tags),
		IsOriginal:        in.IsOriginal,
		SourceDescription: strings.TrimSpace(in.SourceDescription),
		DonationQRURL:     strings.TrimSpace(in.DonationQRURL),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if idea.IsOriginal {
		idea.SourceDescription = ""
	}
	if err := idea.Validate(); err != nil {
		return nil, err
	}
	if in.DonationQR != nil {
		if s.Store == nil {
			return nil, errs.BadRequest("image uploads are not available")
		}
		ext := strings.ToLower(filepath.Ext(in.DonationQR.Filename))
		url, err := s.Store.Upload(ctx, path.Join("ideas", idea.ID, "donation"+ext), in.DonationQR.ContentType, in.DonationQR.Body)
		if err != nil {
			return nil, errs.Internal("unable to upload image", err)
		}
		idea.DonationQRURL = url
	}

	if err := s.Ideas.Create(ctx, idea); err != nil {
		return nil, persist(err, "unable to save idea")
	}
	view := entity.NewIdeaView(idea, u.Public())
	s.index(ctx, view)
	return &view, nil
}

func (s *IdeaService) Get(ctx context.Context, id string) (*entity.IdeaView, error) {
	v, err := s.Ideas.GetView(ctx, id)
	if err != nil {
		return nil, lookup(err, "idea not found")
	}
	return v, nil
}

// List returns every idea, newest first.
func (s *IdeaService) List(ctx context.Context) ([]entity.IdeaView, error) {
	views, err := s.Ideas.ListViews(ctx)
	if err != nil {
		return nil, persist(err, "unable to load ideas")
	}
	return views, nil
}

func (s *IdeaService) ownedIdea(ctx context.Context, id, userID string) (*entity.Idea, error) {
	idea, err := s.Ideas.GetByID(ctx, id)
	if err != nil {
		return nil, lookup(err, "idea not found")
	}
	if idea.CreatorID != userID {
		return nil, errs.Forbidden("only the creator can change this idea")
	}
	return idea, nil
}

func (s *IdeaService) Update(ctx context.Context, id, userID string, in IdeaUpdate) (*entity.IdeaView, error) {
	idea, err := s.ownedIdea(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if in.Implemented != nil {
		idea.Implemented = *in.Implemented
	}
	if in.DonationQRURL != nil {
		idea.DonationQRURL = strings.TrimSpace(*in.DonationQRURL)
	}
	idea.UpdatedAt = time.Now().UTC()
	if err := s.Ideas.Update(ctx, idea); err != nil {
		return nil, lookup(err, "idea not found")
	}
	view, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.index(ctx, *view)
	return view, nil
}

func (s *IdeaService) Delete(ctx context.Context, id, userID string) error {
	if _, err := s.ownedIdea(ctx, id, userID); err != nil {
		return err
	}
	if err := s.Ideas.Delete(ctx, id); err != nil {
		return lookup(err, "idea not found")
	}
	if s.Indexer != nil {
		if err := s.Indexer.Delete(ctx, id); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("idea_id", id).Warn("search index delete failed")
		}
	}
	return nil
}

// Search runs a full-text query. Without a configured index it returns no results.
func (s *IdeaService) Search(ctx context.Context, q string, size int) ([]entity.IdeaView, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, errs.BadRequest("query is required")
	}
	if s.Indexer == nil {
		return []entity.IdeaView{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	ids, err := s.Indexer.Search(ctx, q, size)
	if err != nil {
		return nil, errs.Internal("search is unavailable", err)
	}
	if len(ids) == 0 {
		return []entity.IdeaView{}, nil
	}
	views, err := s.Ideas.ListViewsByIDs(ctx, ids)
	if err != nil {
		return nil, persist(err, "unable to load ideas")
	}
	// keep relevance order from the index
	byID := make(map[string]entity.IdeaView, len(views))
	for _, v := range views {
		byID[v.ID] = v
	}
	out := make([]entity.IdeaView, 0, len(views))
	for _, id := range ids {
		if v, ok := byID[id]; ok {
			out = append(out, v)
		}
	}
	return out, nil
}

func (s *IdeaService) index(ctx context.Context, v entity.IdeaView) {
	if s.Indexer == nil {
		return
	}
	if err := s.Indexer.Index(ctx, v); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("idea_id", v.ID).Warn("search index failed")
	}
}
