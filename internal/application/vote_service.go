package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/faizi-7/graveyard-back/internal/domain/entity"
	"github.com/faizi-7/graveyard-back/internal/domain/errs"
	repo "github.com/faizi-7/graveyard-back/internal/domain/repository"
)

// VoteService records votes and favorites against ideas.
type VoteService struct {
	Ideas  repo.IdeaRepository
	Users  repo.UserRepository
	Logger *logrus.Logger
}

func NewVoteService(ideas repo.IdeaRepository, users repo.UserRepository, logger *logrus.Logger) *VoteService {
	return &VoteService{Ideas: ideas, Users: users, Logger: logger}
}

type VoteResult struct {
	IdeaID    string `json:"idea_id"`
	Votes     int    `json:"votes"`
	Direction string `json:"direction"`
}

// Vote loads the idea, applies the vote and saves the new aggregate with the
// changed voter record. Two concurrent votes on the same idea can lose one
// aggregate update: last write wins.
func (s *VoteService) Vote(ctx context.Context, ideaID, userID string, dir entity.Direction) (*VoteResult, error) {
	idea, err := s.Ideas.GetByID(ctx, ideaID)
	if err != nil {
		return nil, lookup(err, "idea not found")
	}
	v, err := idea.ApplyVote(userID, dir)
	if err != nil {
		return nil, err
	}
	if err := s.Ideas.SaveVote(ctx, idea.ID, idea.Votes, v); err != nil {
		return nil, lookup(err, "idea not found")
	}
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"idea_id": idea.ID, "user_id": userID, "direction": dir.String()}).Debug("vote recorded")
	}
	return &VoteResult{IdeaID: idea.ID, Votes: idea.Votes, Direction: v.Direction.String()}, nil
}

// AddFavorite appends ideaID to the user's favorites and returns the new set.
func (s *VoteService) AddFavorite(ctx context.Context, userID, ideaID string) ([]string, error) {
	if _, err := s.Ideas.GetByID(ctx, ideaID); err != nil {
		return nil, lookup(err, "idea not found")
	}
	favs, added, err := s.Users.AddFavorite(ctx, userID, ideaID, time.Now().UTC())
	if err != nil {
		return nil, lookup(err, "user not found")
	}
	if !added {
		return nil, errs.BadRequest("idea is already in favorites")
	}
	return favs, nil
}
