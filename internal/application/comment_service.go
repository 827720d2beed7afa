package application

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/faizi-7/graveyard-back/internal/domain/entity"
	"github.com/faizi-7/graveyard-back/internal/domain/errs"
	repo "github.com/faizi-7/graveyard-back/internal/domain/repository"
)

// CommentService manages one-level comment threads under ideas.
type CommentService struct {
	Comments repo.CommentRepository
	Ideas    repo.IdeaRepository
	Logger   *logrus.Logger
}

func NewCommentService(comments repo.CommentRepository, ideas repo.IdeaRepository, logger *logrus.Logger) *CommentService {
	return &CommentService{Comments: comments, Ideas: ideas, Logger: logger}
}

func (s *CommentService) newComment(ideaID, creatorID, content, parentID string) (*entity.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errs.BadRequest("content is required")
	}
	now := time.Now().UTC()
	return &entity.Comment{
		ID:        uuid.NewString(),
		Content:   content,
		CreatorID: creatorID,
		IdeaID:    ideaID,
		ParentID:  parentID,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *CommentService) CreateTopLevel(ctx context.Context, ideaID, creatorID, content string) (*entity.Comment, error) {
	c, err := s.newComment(ideaID, creatorID, content, "")
	if err != nil {
		return nil, err
	}
	if _, err := s.Ideas.GetByID(ctx, ideaID); err != nil {
		return nil, lookup(err, "idea not found")
	}
	if err := s.Comments.Create(ctx, c); err != nil {
		return nil, persist(err, "unable to save comment")
	}
	return c, nil
}

// CreateReply answers a top-level comment. Replies to replies are rejected.
// The child and the parent's reply link are written in one repository call.
func (s *CommentService) CreateReply(ctx context.Context, ideaID, creatorID, content, parentID string) (*entity.Comment, error) {
	c, err := s.newComment(ideaID, creatorID, content, parentID)
	if err != nil {
		return nil, err
	}
	if parentID == "" {
		return nil, errs.BadRequest("parent comment is required")
	}
	parent, err := s.Comments.GetByID(ctx, parentID)
	if err != nil {
		return nil, lookup(err, "parent comment not found")
	}
	if parent.IsReply() {
		return nil, errs.BadRequest("replies can only be one level deep")
	}
	if parent.IdeaID != ideaID {
		return nil, errs.BadRequest("parent comment belongs to another idea")
	}
	if err := s.Comments.CreateReply(ctx, c); err != nil {
		return nil, lookup(err, "parent comment not found")
	}
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"comment_id": c.ID, "parent_id": parentID}).Debug("reply created")
	}
	return c, nil
}

// ListByIdea returns the idea's thread with creators redacted to public fields.
func (s *CommentService) ListByIdea(ctx context.Context, ideaID string) ([]entity.CommentView, error) {
	if _, err := s.Ideas.GetByID(ctx, ideaID); err != nil {
		return nil, lookup(err, "idea not found")
	}
	views, err := s.Comments.ListByIdea(ctx, ideaID)
	if err != nil {
		return nil, persist(err, "unable to load comments")
	}
	return views, nil
}
