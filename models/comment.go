package models

import (
	"fmt"
	"time"

	"github.com/civicpulse/civicpulse/engagement"
)

// DeletedPlaceholder replaces a soft-deleted comment's visible content.
const DeletedPlaceholder = "[deleted]"

// MaxCommentLength bounds comment content.
const MaxCommentLength = 500

// Comment is a reply attached to exactly one parent context: a complaint or
// a community post. Threaded replies reference a parent comment.
type Comment struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Content  string `gorm:"size:500;not null" json:"content"`
	AuthorID uint   `gorm:"index;not null" json:"author_id"`

	ComplaintID     *uint `gorm:"index" json:"complaint_id,omitempty"`
	PostID          *uint `gorm:"index" json:"post_id,omitempty"`
	ParentCommentID *uint `gorm:"index" json:"parent_comment_id,omitempty"`

	ReplyIDs IDList         `gorm:"type:text" json:"reply_ids"`
	Likes    engagement.Set `gorm:"type:text" json:"-"`

	Deleted   bool       `gorm:"index;default:false" json:"deleted"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`

	Edited      bool        `gorm:"default:false" json:"edited"`
	EditHistory EditHistory `gorm:"type:text" json:"edit_history"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Author User `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
}

// ValidateParentContext enforces the XOR rule: a comment belongs to a
// complaint or a post, never both and never neither.
func (c *Comment) ValidateParentContext() error {
	if c.ComplaintID != nil && c.PostID != nil {
		return fmt.Errorf("%w: comment cannot reference both a complaint and a post", engagement.ErrInvalidState)
	}
	if c.ComplaintID == nil && c.PostID == nil {
		return fmt.Errorf("%w: comment requires a complaint or a post", engagement.ErrInvalidState)
	}
	return nil
}

// Edit replaces the content, pushing the pre-change value into the edit
// history first. Edits are only permitted within the window from creation;
// later attempts fail as authorization denials. Editing a deleted comment is
// an invalid state.
func (c *Comment) Edit(newContent string, now time.Time, window time.Duration) error {
	if c.Deleted {
		return fmt.Errorf("%w: comment is deleted", engagement.ErrInvalidState)
	}
	if window > 0 && now.Sub(c.CreatedAt) > window {
		return fmt.Errorf("%w: edit window of %s has passed", engagement.ErrDenied, window)
	}
	if newContent == c.Content {
		return nil
	}

	c.EditHistory.Append("", c.Content)
	c.Content = newContent
	c.Edited = true
	return nil
}

// SoftDelete tombstones the comment: flag set, timestamp recorded, content
// replaced. Reply references stay intact so threads keep their shape, and
// the deletion is not written to the edit history.
func (c *Comment) SoftDelete(now time.Time) error {
	if c.Deleted {
		return fmt.Errorf("%w: comment already deleted", engagement.ErrInvalidState)
	}
	c.Deleted = true
	c.DeletedAt = &now
	c.Content = DeletedPlaceholder
	return nil
}
