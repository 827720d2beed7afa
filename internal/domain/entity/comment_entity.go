package entity

import "time"

// Comment belongs to an idea. ParentID is empty for top-level comments; a
// reply always points at a top-level comment, so threads are at most one deep.
type Comment struct {
	ID        string
	Content   string
	CreatorID string
	IdeaID    string
	ParentID  string
	Replies   []string // child comment ids
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (c *Comment) IsReply() bool { return c.ParentID != "" }

// CommentView is a comment joined with its creator's public fields.
// Replies is only populated for top-level comments.
type CommentView struct {
	ID        string        `json:"id"`
	Content   string        `json:"content"`
	IdeaID    string        `json:"idea_id"`
	ParentID  string        `json:"parent_id,omitempty"`
	Creator   PublicUser    `json:"creator"`
	Replies   []CommentView `json:"replies,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}
