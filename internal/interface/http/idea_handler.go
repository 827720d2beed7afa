package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/faizi-7/graveyard-back/internal/application"
	"github.com/faizi-7/graveyard-back/internal/domain/entity"
	"github.com/faizi-7/graveyard-back/internal/interface/middleware"
	"github.com/faizi-7/graveyard-back/pkg/response"
)

type IdeaHandler struct {
	Ideas  *application.IdeaService
	Votes  *application.VoteService
	Logger *logrus.Logger
}

func NewIdeaHandler(ideas *application.IdeaService, votes *application.VoteService, logger *logrus.Logger) *IdeaHandler {
	return &IdeaHandler{Ideas: ideas, Votes: votes, Logger: logger}
}

type createIdeaRequest struct {
	Title             string   `json:"title" form:"title" binding:"required"`
	Description       string   `json:"description" form:"description" binding:"required"`
	Tags              []string `json:"tags" form:"tags" binding:"required,min=1,dive,category"`
	IsOriginal        bool     `json:"is_original" form:"is_original"`
	SourceDescription string   `json:"source_description" form:"source_description"`
	DonationQRURL     string   `json:"donation_qr_url" form:"donation_qr_url" binding:"omitempty,url"`
}

type updateIdeaRequest struct {
	Implemented   *bool   `json:"implemented"`
	DonationQRURL *string `json:"donation_qr_url" binding:"omitempty,url"`
}

type voteRequest struct {
	Vote string `json:"vote" binding:"required,oneof=upvote downvote"`
}

type searchQuery struct {
	Q    string `form:"q" binding:"required"`
	Size int    `form:"size" binding:"omitempty,min=1,max=50"`
}

// Create POST /api/ideas (contributors only; json or multipart with an optional "donation_qr")
func (h *IdeaHandler) Create(c *gin.Context) {
	var req createIdeaRequest
	if err := c.ShouldBind(&req); err != nil {
		respondInvalid(c, err)
		return
	}
	img, f, err := formImage(c, "donation_qr")
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	if f != nil {
		defer f.Close()
	}

	v, err := h.Ideas.Create(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), application.IdeaInput{
		Title:             req.Title,
		Description:       req.Description,
		Tags:              req.Tags,
		IsOriginal:        req.IsOriginal,
		SourceDescription: req.SourceDescription,
		DonationQRURL:     req.DonationQRURL,
		DonationQR:        img,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.OK(c, http.StatusCreated, v, "idea created")
}

// List GET /api/ideas
func (h *IdeaHandler) List(c *gin.Context) {
	views, err := h.Ideas.List(c.Request.Context())
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(c, http.StatusOK, views, "ideas", response.ListMeta{Count: len(views)}))
}

// Search GET /api/ideas/search?q=&size=
func (h *IdeaHandler) Search(c *gin.Context) {
	var q searchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondInvalid(c, err)
		return
	}
	views, err := h.Ideas.Search(c.Request.Context(), q.Q, q.Size)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(c, http.StatusOK, views, "search results", response.ListMeta{Count: len(views)}))
}

// Get GET /api/ideas/:id
func (h *IdeaHandler) Get(c *gin.Context) {
	v, err := h.Ideas.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.OK(c, http.StatusOK, v, "idea")
}

// Update PUT|PATCH /api/ideas/:id (creator only)
func (h *IdeaHandler) Update(c *gin.Context) {
	var req updateIdeaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}
	v, err := h.Ideas.Update(c.Request.Context(), c.Param("id"), c.GetString(middleware.CtxUserIDKey), application.IdeaUpdate{
		Implemented:   req.Implemented,
		DonationQRURL: req.DonationQRURL,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.OK(c, http.StatusOK, v, "idea updated")
}

// Delete DELETE /api/ideas/:id (creator only)
func (h *IdeaHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.Ideas.Delete(c.Request.Context(), id, c.GetString(middleware.CtxUserIDKey)); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"id": id, "deleted": true}, "idea deleted")
}

// Vote POST /api/ideas/:id/vote
func (h *IdeaHandler) Vote(c *gin.Context) {
	var req voteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}
	dir, err := entity.ParseDirection(req.Vote)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	res, err := h.Votes.Vote(c.Request.Context(), c.Param("id"), c.GetString(middleware.CtxUserIDKey), dir)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.OK(c, http.StatusOK, res, "vote recorded")
}

// Favorite POST /api/ideas/:id/favorite
func (h *IdeaHandler) Favorite(c *gin.Context) {
	favs, err := h.Votes.AddFavorite(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), c.Param("id"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"favorites": favs}, "added to favorites")
}
