package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/faizi-7/graveyard-back/internal/application"
	"github.com/faizi-7/graveyard-back/internal/domain/entity"
	"github.com/faizi-7/graveyard-back/internal/interface/middleware"
	"github.com/faizi-7/graveyard-back/pkg/response"
)

type CommentHandler struct {
	Comments *application.CommentService
	Logger   *logrus.Logger
}

func NewCommentHandler(comments *application.CommentService, logger *logrus.Logger) *CommentHandler {
	return &CommentHandler{Comments: comments, Logger: logger}
}

type createCommentRequest struct {
	Content  string `json:"content" binding:"required"`
	ParentID string `json:"parentId"`
}

type commentBody struct {
	ID        string `json:"id"`
	Content   string `json:"content"`
	IdeaID    string `json:"idea_id"`
	ParentID  string `json:"parent_id,omitempty"`
	CreatorID string `json:"creator_id"`
}

func newCommentBody(cm *entity.Comment) commentBody {
	return commentBody{ID: cm.ID, Content: cm.Content, IdeaID: cm.IdeaID, ParentID: cm.ParentID, CreatorID: cm.CreatorID}
}

// Create POST /api/comments/:ideaId, a reply when parentId is set.
func (h *CommentHandler) Create(c *gin.Context) {
	var req createCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}
	ctx := c.Request.Context()
	ideaID := c.Param("ideaId")
	uid := c.GetString(middleware.CtxUserIDKey)

	var (
		cm  *entity.Comment
		err error
	)
	if parent := strings.TrimSpace(req.ParentID); parent != "" {
		cm, err = h.Comments.CreateReply(ctx, ideaID, uid, req.Content, parent)
	} else {
		cm, err = h.Comments.CreateTopLevel(ctx, ideaID, uid, req.Content)
	}
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.OK(c, http.StatusCreated, newCommentBody(cm), "comment created")
}

// List GET /api/comments/:ideaId
func (h *CommentHandler) List(c *gin.Context) {
	views, err := h.Comments.ListByIdea(c.Request.Context(), c.Param("ideaId"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(c, http.StatusOK, views, "comments", response.ListMeta{Count: len(views)}))
}
