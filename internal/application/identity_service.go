package application

import (
	"context"
	"errors"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/faizi-7/graveyard-back/internal/domain/entity"
	"github.com/faizi-7/graveyard-back/internal/domain/errs"
	repo "github.com/faizi-7/graveyard-back/internal/domain/repository"
	"github.com/faizi-7/graveyard-back/pkg/helpers"
)

const (
	minPasswordLen = 6
	minFullnameLen = 3
)

// IdentityService owns user records: registration, credentials, roles and
// session resolution.
type IdentityService struct {
	Users             repo.UserRepository
	Ideas             repo.IdeaRepository
	Tokens            *helpers.TokenAuthority
	Store             ObjectStore   // optional
	Cache             IdentityCache // optional
	Logger            *logrus.Logger
	DefaultProfileURL string
}

func NewIdentityService(users repo.UserRepository, ideas repo.IdeaRepository, tokens *helpers.TokenAuthority, store ObjectStore, cache IdentityCache, logger *logrus.Logger, defaultProfileURL string) *IdentityService {
	return &IdentityService{
		Users:             users,
		Ideas:             ideas,
		Tokens:            tokens,
		Store:             store,
		Cache:             cache,
		Logger:            logger,
		DefaultProfileURL: defaultProfileURL,
	}
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
	Fullname string
	About    string
	Image    *Image
}

type UpgradeInput struct {
	Fullname string
	About    string
	Image    *Image
}

type LoginResult struct {
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"expires_at"`
	User      entity.PublicUser `json:"user"`
}

// Profile is what anyone may see about a user.
type Profile struct {
	entity.PublicUser
	About     string            `json:"about,omitempty"`
	Favorites []entity.IdeaView `json:"favorites"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a user with role "user". The password is hashed before the
// record reaches the repository.
func (s *IdentityService) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	email := normalizeEmail(in.Email)
	username := strings.TrimSpace(in.Username)
	if email == "" || username == "" {
		return nil, errs.BadRequest("username and email are required")
	}
	if len(in.Password) < minPasswordLen {
		return nil, errs.BadRequest("password must be at least 6 characters long")
	}

	_, err := s.Users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, errs.Conflict("user already exists")
	case !errors.Is(err, errs.ErrNotFound):
		return nil, persist(err, "unable to register at the moment")
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, errs.Internal("unable to register at the moment", err)
	}

	now := time.Now().UTC()
	u := &entity.User{
		ID:         uuid.NewString(),
		Username:   username,
		Email:      email,
		Password:   hash,
		Fullname:   strings.TrimSpace(in.Fullname),
		About:      strings.TrimSpace(in.About),
		ProfileURL: s.DefaultProfileURL,
		Role:       entity.RoleUser,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if in.Image != nil {
		url, err := s.uploadProfileImage(ctx, u.ID, in.Image)
		if err != nil {
			return nil, err
		}
		u.ProfileURL = url
	}

	if err := s.Users.Create(ctx, u); err != nil {
		return nil, persist(err, "unable to register at the moment")
	}
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"user_id": u.ID}).Info("user registered")
	}
	return u, nil
}

// Authenticate checks credentials. Unknown email and wrong password are
// indistinguishable to the caller.
func (s *IdentityService) Authenticate(ctx context.Context, email, password string) (*entity.User, error) {
	u, err := s.Users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, errs.Unauthorized("invalid credentials")
		}
		return nil, persist(err, "unable to log in at the moment")
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, errs.Unauthorized("invalid credentials")
	}
	return u, nil
}

func (s *IdentityService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	u, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	token, exp, err := s.Tokens.Issue(helpers.TokenSession, u.Email)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("issue session token failed")
		}
		return nil, tokenError(err)
	}
	return &LoginResult{Token: token, ExpiresAt: exp, User: u.Public()}, nil
}

// UpgradeRole turns a user into a contributor. Fullname and about are
// overwritten on every call, including repeated upgrades.
func (s *IdentityService) UpgradeRole(ctx context.Context, userID string, in UpgradeInput) (*entity.User, error) {
	fullname := strings.TrimSpace(in.Fullname)
	if len(fullname) < minFullnameLen {
		return nil, errs.BadRequest("fullname must be at least 3 characters long")
	}
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, lookup(err, "user not found")
	}

	u.Role = entity.RoleContributor
	u.Fullname = fullname
	u.About = strings.TrimSpace(in.About)
	if in.Image != nil {
		url, err := s.uploadProfileImage(ctx, u.ID, in.Image)
		if err != nil {
			return nil, err
		}
		u.ProfileURL = url
	}
	u.UpdatedAt = time.Now().UTC()

	if err := s.Users.UpdateProfile(ctx, u); err != nil {
		return nil, lookup(err, "user not found")
	}
	s.invalidate(ctx, u.Email)
	return u, nil
}

// SetEmailVerified marks the address as verified. Repeating it is a no-op.
func (s *IdentityService) SetEmailVerified(ctx context.Context, email string) (*entity.User, error) {
	u, err := s.Users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, lookup(err, "user not found")
	}
	if u.EmailVerified {
		return u, nil
	}
	u.EmailVerified = true
	u.UpdatedAt = time.Now().UTC()
	if err := s.Users.SetEmailVerified(ctx, u.ID, u.UpdatedAt); err != nil {
		return nil, lookup(err, "user not found")
	}
	return u, nil
}

// SetPassword replaces the stored hash.
func (s *IdentityService) SetPassword(ctx context.Context, email, newPassword string) error {
	if len(newPassword) < minPasswordLen {
		return errs.BadRequest("password must be at least 6 characters long")
	}
	u, err := s.Users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return lookup(err, "user not found")
	}
	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return errs.Internal("unable to update password", err)
	}
	if err := s.Users.SetPassword(ctx, u.ID, hash, time.Now().UTC()); err != nil {
		return lookup(err, "user not found")
	}
	return nil
}

// ResolveSession verifies a session token and returns who it belongs to.
func (s *IdentityService) ResolveSession(ctx context.Context, token string) (entity.Identity, error) {
	claims, err := s.Tokens.Verify(helpers.TokenSession, token)
	if err != nil {
		return entity.Identity{}, tokenError(err)
	}

	if s.Cache != nil {
		id, found, cerr := s.Cache.Get(ctx, claims.Email)
		if cerr != nil && s.Logger != nil {
			s.Logger.WithError(cerr).Warn("identity cache get failed")
		}
		if found {
			return id, nil
		}
	}

	u, err := s.Users.GetByEmail(ctx, claims.Email)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return entity.Identity{}, errs.Unauthorized("user no longer exists")
		}
		return entity.Identity{}, persist(err, "unable to resolve session")
	}
	id := u.Identity()
	if s.Cache != nil {
		if cerr := s.Cache.Set(ctx, id); cerr != nil && s.Logger != nil {
			s.Logger.WithError(cerr).Warn("identity cache set failed")
		}
	}
	return id, nil
}

// GetUser returns the full record; only for the owner or internal callers.
func (s *IdentityService) GetUser(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, lookup(err, "user not found")
	}
	return u, nil
}

// GetPublicProfile returns a user's public fields and favorite ideas.
func (s *IdentityService) GetPublicProfile(ctx context.Context, userID string) (*Profile, error) {
	u, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	favs := []entity.IdeaView{}
	if len(u.Favorites) > 0 && s.Ideas != nil {
		favs, err = s.Ideas.ListViewsByIDs(ctx, u.Favorites)
		if err != nil {
			return nil, persist(err, "unable to load favorites")
		}
	}
	return &Profile{PublicUser: u.Public(), About: u.About, Favorites: favs}, nil
}

func (s *IdentityService) uploadProfileImage(ctx context.Context, userID string, img *Image) (string, error) {
	if s.Store == nil {
		return "", errs.BadRequest("image uploads are not available")
	}
	ext := strings.ToLower(filepath.Ext(img.Filename))
	objectPath := path.Join("profiles", userID, uuid.NewString()+ext)
	url, err := s.Store.Upload(ctx, objectPath, img.ContentType, img.Body)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", userID).Error("profile image upload failed")
		}
		return "", errs.Internal("unable to upload image", err)
	}
	return url, nil
}

func (s *IdentityService) invalidate(ctx context.Context, email string) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Invalidate(ctx, email); err != nil && s.Logger != nil {
		s.Logger.WithError(err).Warn("identity cache invalidate failed")
	}
}
