package entity

import (
	"slices"
	"strings"
	"time"

	"github.com/faizi-7/graveyard-back/internal/domain/errs"
)

// Categories is the fixed tag vocabulary ideas are filed under.
var Categories = []string{
	"technology",
	"health",
	"education",
	"environment",
	"finance",
	"social",
	"entertainment",
	"science",
	"business",
	"other",
}

func IsCategory(tag string) bool {
	return slices.Contains(Categories, strings.ToLower(tag))
}

// Direction is the sign of a vote.
type Direction int

const (
	Downvote Direction = -1
	Upvote   Direction = 1
)

// ParseDirection accepts the wire names "upvote" and "downvote".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "upvote":
		return Upvote, nil
	case "downvote":
		return Downvote, nil
	}
	return 0, errs.BadRequest("vote must be one of: upvote, downvote")
}

func (d Direction) String() string {
	if d == Upvote {
		return "upvote"
	}
	return "downvote"
}

// Voter is the single current vote of one user on one idea.
type Voter struct {
	UserID    string
	Direction Direction
}

// Idea is a submitted idea. Votes must always equal the sum of Voters' directions.
type Idea struct {
	ID                string
	Title             string
	Description       string
	CreatorID         string
	Tags              []string
	Votes             int
	Voters            []Voter
	IsOriginal        bool
	SourceDescription string
	DonationQRURL     string
	Implemented       bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ApplyVote records userID's vote. A first vote moves the aggregate by one,
// switching sides moves it by two, repeating the current vote is rejected and
// leaves the idea untouched. It returns the voter record that changed.
func (i *Idea) ApplyVote(userID string, dir Direction) (Voter, error) {
	if dir != Upvote && dir != Downvote {
		return Voter{}, errs.BadRequest("vote must be one of: upvote, downvote")
	}
	for idx := range i.Voters {
		v := &i.Voters[idx]
		if v.UserID != userID {
			continue
		}
		if v.Direction == dir {
			return Voter{}, errs.Forbidden("you have already cast this vote")
		}
		i.Votes += 2 * int(dir)
		v.Direction = dir
		return *v, nil
	}
	v := Voter{UserID: userID, Direction: dir}
	i.Voters = append(i.Voters, v)
	i.Votes += int(dir)
	return v, nil
}

// Tally recomputes the aggregate from the voter records.
func (i *Idea) Tally() int {
	sum := 0
	for _, v := range i.Voters {
		sum += int(v.Direction)
	}
	return sum
}

// Validate checks the content invariants shared by create and seed paths.
func (i *Idea) Validate() error {
	if strings.TrimSpace(i.Title) == "" {
		return errs.BadRequest("title is required")
	}
	if strings.TrimSpace(i.Description) == "" {
		return errs.BadRequest("description is required")
	}
	if len(i.Tags) == 0 {
		return errs.BadRequest("at least one tag is required")
	}
	for _, t := range i.Tags {
		if !IsCategory(t) {
			return errs.BadRequest("unknown tag: " + t)
		}
	}
	if !i.IsOriginal && strings.TrimSpace(i.SourceDescription) == "" {
		return errs.BadRequest("source description is required when the idea is not original")
	}
	return nil
}

// IdeaView is an idea joined with its creator's public fields.
type IdeaView struct {
	ID                string     `json:"id"`
	Title             string     `json:"title"`
	Description       string     `json:"description"`
	Creator           PublicUser `json:"creator"`
	Tags              []string   `json:"tags"`
	Votes             int        `json:"votes"`
	IsOriginal        bool       `json:"is_original"`
	SourceDescription string     `json:"source_description,omitempty"`
	DonationQRURL     string     `json:"donation_qr_url,omitempty"`
	Implemented       bool       `json:"implemented"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

func NewIdeaView(i *Idea, creator PublicUser) IdeaView {
	return IdeaView{
		ID:                i.ID,
		Title:             i.Title,
		Description:       i.Description,
		Creator:           creator,
		Tags:              i.Tags,
		Votes:             i.Votes,
		IsOriginal:        i.IsOriginal,
		SourceDescription: i.SourceDescription,
		DonationQRURL:     i.DonationQRURL,
		Implemented:       i.Implemented,
		CreatedAt:         i.CreatedAt,
		UpdatedAt:         i.UpdatedAt,
	}
}
