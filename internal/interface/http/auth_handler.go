package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/faizi-7/graveyard-back/internal/application"
	"github.com/faizi-7/graveyard-back/internal/domain/entity"
	"github.com/faizi-7/graveyard-back/internal/interface/middleware"
	"github.com/faizi-7/graveyard-back/pkg/response"
)

type AuthHandler struct {
	Identity *application.IdentityService
	Account  *application.AccountService
	Logger   *logrus.Logger
}

func NewAuthHandler(identity *application.IdentityService, account *application.AccountService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Identity: identity, Account: account, Logger: logger}
}

type registerRequest struct {
	Username string `json:"username" form:"username" binding:"required"`
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required,pwd"`
	Fullname string `json:"fullname" form:"fullname"`
	About    string `json:"about" form:"about"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type upgradeRequest struct {
	Fullname string `json:"fullname" form:"fullname" binding:"required,fullname"`
	About    string `json:"about" form:"about" binding:"omitempty,about"`
}

type emailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type resetPasswordRequest struct {
	ResetToken  string `json:"resetToken" binding:"required,tokenstr"`
	NewPassword string `json:"newPassword" binding:"required,pwd"`
}

type contactRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Message string `json:"message" binding:"required"`
}

// accountBody is what a user sees about themselves.
type accountBody struct {
	entity.PublicUser
	Email         string    `json:"email"`
	About         string    `json:"about,omitempty"`
	EmailVerified bool      `json:"email_verified"`
	Favorites     []string  `json:"favorites"`
	CreatedAt     time.Time `json:"created_at"`
}

func newAccountBody(u *entity.User) accountBody {
	favs := u.Favorites
	if favs == nil {
		favs = []string{}
	}
	return accountBody{
		PublicUser:    u.Public(),
		Email:         u.Email,
		About:         u.About,
		EmailVerified: u.EmailVerified,
		Favorites:     favs,
		CreatedAt:     u.CreatedAt,
	}
}

// Register POST /api/auth/register (json or multipart with an optional "image")
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBind(&req); err != nil {
		respondInvalid(c, err)
		return
	}
	img, f, err := formImage(c, "image")
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	if f != nil {
		defer f.Close()
	}

	u, err := h.Identity.Register(c.Request.Context(), application.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Fullname: req.Fullname,
		About:    req.About,
		Image:    img,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.OK(c, http.StatusCreated, newAccountBody(u), "user registered")
}

// Login POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}
	res, err := h.Identity.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.OK(c, http.StatusOK, res, "login successful")
}

// Upgrade PUT /api/auth/upgrade (auth required)
func (h *AuthHandler) Upgrade(c *gin.Context) {
	var req upgradeRequest
	if err := c.ShouldBind(&req); err != nil {
		respondInvalid(c, err)
		return
	}
	img, f, err := formImage(c, "image")
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	if f != nil {
		defer f.Close()
	}

	u, err := h.Identity.UpgradeRole(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), application.UpgradeInput{
		Fullname: req.Fullname,
		About:    req.About,
		Image:    img,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.OK(c, http.StatusOK, newAccountBody(u), "role upgraded")
}

// RequestVerification GET /api/auth/verifymail (auth required)
func (h *AuthHandler) RequestVerification(c *gin.Context) {
	if err := h.Account.RequestEmailVerification(c.Request.Context(), c.GetString(middleware.CtxUserIDKey)); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"sent": true}, "verification email sent")
}

// ConfirmVerification GET /api/auth/verifymailtoken?emailToken=
func (h *AuthHandler) ConfirmVerification(c *gin.Context) {
	u, err := h.Account.ConfirmEmailVerification(c.Request.Context(), c.Query("emailToken"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"verified": u.EmailVerified, "email": u.Email}, "email verified")
}

// StartReset POST /api/auth/startpassreset
func (h *AuthHandler) StartReset(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}
	if err := h.Account.StartPasswordReset(c.Request.Context(), req.Email); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"sent": true}, "password reset email sent")
}

// CheckReset GET /api/auth/verifypasstoken?resetToken=
func (h *AuthHandler) CheckReset(c *gin.Context) {
	email, err := h.Account.CheckResetToken(c.Request.Context(), c.Query("resetToken"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"valid": true, "email": email}, "reset token is valid")
}

// CompleteReset POST /api/auth/resetpassword
func (h *AuthHandler) CompleteReset(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}
	if err := h.Account.CompletePasswordReset(c.Request.Context(), req.ResetToken, req.NewPassword); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"reset": true}, "password updated")
}

// Contact POST /api/auth/contact
func (h *AuthHandler) Contact(c *gin.Context) {
	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}
	err := h.Account.SendContactMessage(c.Request.Context(), entity.ContactMessage{
		Name:    req.Name,
		Email:   req.Email,
		Message: req.Message,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"sent": true}, "message sent")
}

// Protected GET /api/auth/protected echoes the resolved identity.
func (h *AuthHandler) Protected(c *gin.Context) {
	response.OK(c, http.StatusOK, entity.Identity{
		UserID:   c.GetString(middleware.CtxUserIDKey),
		Username: c.GetString(middleware.CtxUserName),
		Email:    c.GetString(middleware.CtxUserEmail),
		Role:     entity.Role(c.GetString(middleware.CtxUserRoleKey)),
	}, "authenticated")
}

// PublicProfile GET /api/auth/user/:id
func (h *AuthHandler) PublicProfile(c *gin.Context) {
	p, err := h.Identity.GetPublicProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.OK(c, http.StatusOK, p, "profile")
}
