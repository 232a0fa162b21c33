package models

import (
	"fmt"
	"time"

	"github.com/civicpulse/civicpulse/engagement"
)

// PostType classifies community posts.
type PostType string

const (
	PostDiscussion   PostType = "discussion"
	PostAnnouncement PostType = "announcement"
	PostQuestion     PostType = "question"
	PostUpdate       PostType = "update"
)

// PostTypes lists every accepted post type.
var PostTypes = []PostType{PostDiscussion, PostAnnouncement, PostQuestion, PostUpdate}

// Valid reports whether the post type is one of the accepted values.
func (t PostType) Valid() bool {
	for _, v := range PostTypes {
		if t == v {
			return true
		}
	}
	return false
}

// CommunityPost is a discussion entry inside a community, optionally linking
// a complaint. Likes and deduplicated views are per-row engagement sets.
type CommunityPost struct {
	ID       uint     `gorm:"primaryKey" json:"id"`
	Title    string   `gorm:"size:255;not null" json:"title"`
	Content  string   `gorm:"type:text;not null" json:"content"`
	Type     PostType `gorm:"size:32;default:'discussion'" json:"type"`
	AuthorID uint     `gorm:"index;not null" json:"author_id"`

	CommunityID       uint  `gorm:"index;not null" json:"community_id"`
	LinkedComplaintID *uint `gorm:"index" json:"linked_complaint_id,omitempty"`

	Likes engagement.Set `gorm:"type:text" json:"-"`
	Views engagement.Set `gorm:"type:text" json:"-"`

	CommentIDs IDList `gorm:"type:text" json:"comment_ids"`

	Pinned bool `gorm:"default:false" json:"pinned"`
	Locked bool `gorm:"default:false" json:"locked"`
	Edited bool `gorm:"default:false" json:"edited"`

	EditHistory EditHistory `gorm:"type:text" json:"edit_history"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Author User `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
}

// Edit replaces title and content, pushing the pre-change values into the
// edit history first. Locked posts reject edits; late edits fail the policy
// window as authorization denials.
func (p *CommunityPost) Edit(newTitle, newContent string, now time.Time, window time.Duration) error {
	if p.Locked {
		return fmt.Errorf("%w: post is locked", engagement.ErrInvalidState)
	}
	if window > 0 && now.Sub(p.CreatedAt) > window {
		return fmt.Errorf("%w: edit window of %s has passed", engagement.ErrDenied, window)
	}
	if newTitle == p.Title && newContent == p.Content {
		return nil
	}

	p.EditHistory.Append(p.Title, p.Content)
	p.Title = newTitle
	p.Content = newContent
	p.Edited = true
	return nil
}
