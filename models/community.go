package models

import (
	"time"

	"github.com/civicpulse/civicpulse/engagement"
)

// CommunitySettings controls what members may do inside a community.
type CommunitySettings struct {
	IsPrivate             bool `json:"is_private"`
	RequireApproval       bool `json:"require_approval"`
	AllowPosts            bool `json:"allow_posts"`
	AllowComplaintSharing bool `json:"allow_complaint_sharing"`
}

// DefaultCommunitySettings is applied at creation when no settings are given.
var DefaultCommunitySettings = CommunitySettings{
	AllowPosts:            true,
	AllowComplaintSharing: true,
}

// Community is a citizen group that shares complaints and discussion posts.
// The member list lives on the row so join/leave is a single-row RMW.
type Community struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"size:50;uniqueIndex;not null" json:"name"`
	Slug        string `gorm:"size:80;uniqueIndex;not null" json:"slug"`
	Description string `gorm:"type:text" json:"description"`
	Category    string `gorm:"size:32" json:"category"`

	CreatorID    uint                  `gorm:"index;not null" json:"creator_id"`
	ModeratorIDs IDList                `gorm:"type:text" json:"moderator_ids"`
	Members      engagement.MemberList `gorm:"type:text" json:"members"`
	PostIDs      IDList                `gorm:"type:text" json:"post_ids"`

	IsPrivate             bool `gorm:"default:false" json:"is_private"`
	RequireApproval       bool `gorm:"default:false" json:"require_approval"`
	AllowPosts            bool `gorm:"default:true" json:"allow_posts"`
	AllowComplaintSharing bool `gorm:"default:true" json:"allow_complaint_sharing"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Creator User `gorm:"foreignKey:CreatorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"creator"`
}

// Settings bundles the flag columns.
func (c *Community) Settings() CommunitySettings {
	return CommunitySettings{
		IsPrivate:             c.IsPrivate,
		RequireApproval:       c.RequireApproval,
		AllowPosts:            c.AllowPosts,
		AllowComplaintSharing: c.AllowComplaintSharing,
	}
}

// ApplySettings overwrites the flag columns.
func (c *Community) ApplySettings(s CommunitySettings) {
	c.IsPrivate = s.IsPrivate
	c.RequireApproval = s.RequireApproval
	c.AllowPosts = s.AllowPosts
	c.AllowComplaintSharing = s.AllowComplaintSharing
}

// IsModerator reports whether userID may moderate: the creator, a listed
// moderator, or a member holding a moderator/admin role. This is a
// capability check; it never mutates.
func (c *Community) IsModerator(userID uint) bool {
	if userID == c.CreatorID {
		return true
	}
	if c.ModeratorIDs.Contains(userID) {
		return true
	}
	role, ok := c.Members.RoleOf(userID)
	return ok && (role == engagement.RoleModerator || role == engagement.RoleAdmin)
}

// IsMember reports whether userID holds a member record.
func (c *Community) IsMember(userID uint) bool {
	return c.Members.Has(userID)
}

// AddMember appends a member record with role member. Already-member is an
// invalid-state error, not a silent success.
func (c *Community) AddMember(userID uint) error {
	return c.Members.Add(userID, engagement.RoleMember)
}

// RemoveMember removes the member record. The creator can never leave.
func (c *Community) RemoveMember(userID uint) error {
	if err := c.Members.Remove(userID, c.CreatorID); err != nil {
		return err
	}
	c.ModeratorIDs.Drop(userID)
	return nil
}
