package models

import (
	"fmt"
	"time"

	"github.com/civicpulse/civicpulse/engagement"
)

// ComplaintCategory classifies a civic issue.
type ComplaintCategory string

const (
	CategorySanitation  ComplaintCategory = "sanitation"
	CategoryRoads       ComplaintCategory = "roads"
	CategoryWater       ComplaintCategory = "water"
	CategoryElectricity ComplaintCategory = "electricity"
	CategoryParks       ComplaintCategory = "parks"
	CategoryTransport   ComplaintCategory = "transport"
	CategoryHealth      ComplaintCategory = "health"
	CategoryOther       ComplaintCategory = "other"
)

// ComplaintCategories lists every accepted category.
var ComplaintCategories = []ComplaintCategory{
	CategorySanitation, CategoryRoads, CategoryWater, CategoryElectricity,
	CategoryParks, CategoryTransport, CategoryHealth, CategoryOther,
}

// Valid reports whether the category is one of the accepted values.
func (c ComplaintCategory) Valid() bool {
	for _, v := range ComplaintCategories {
		if c == v {
			return true
		}
	}
	return false
}

// ComplaintStatus is a complaint's position in the municipal workflow.
type ComplaintStatus string

const (
	StatusSubmitted  ComplaintStatus = "submitted"
	StatusInProgress ComplaintStatus = "in_progress"
	StatusResolved   ComplaintStatus = "resolved"
	StatusRejected   ComplaintStatus = "rejected"
)

// ComplaintStatuses lists every accepted status.
var ComplaintStatuses = []ComplaintStatus{StatusSubmitted, StatusInProgress, StatusResolved, StatusRejected}

// Valid reports whether the status is one of the accepted values.
func (s ComplaintStatus) Valid() bool {
	for _, v := range ComplaintStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// ComplaintPriority ranks urgency.
type ComplaintPriority string

const (
	PriorityLow      ComplaintPriority = "low"
	PriorityMedium   ComplaintPriority = "medium"
	PriorityHigh     ComplaintPriority = "high"
	PriorityCritical ComplaintPriority = "critical"
)

// ComplaintPriorities lists every accepted priority.
var ComplaintPriorities = []ComplaintPriority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}

// Valid reports whether the priority is one of the accepted values.
func (p ComplaintPriority) Valid() bool {
	for _, v := range ComplaintPriorities {
		if p == v {
			return true
		}
	}
	return false
}

// Complaint is a citizen-reported civic issue with geolocation, photos, and
// engagement state. Vote sets, reference lists, and the status log live on
// the row itself so every ledger mutation is a single-row read-modify-write.
type Complaint struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	Title       string            `gorm:"size:255;not null" json:"title"`
	Description string            `gorm:"type:text;not null" json:"description"`
	Category    ComplaintCategory `gorm:"size:32;index;default:'other'" json:"category"`
	Status      ComplaintStatus   `gorm:"size:32;index;default:'submitted'" json:"status"`
	Priority    ComplaintPriority `gorm:"size:32;default:'medium'" json:"priority"`

	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `gorm:"size:512" json:"address"`

	ImageURLs StringList `gorm:"type:text" json:"image_urls"`

	SubmitterID uint  `gorm:"index;not null" json:"submitter_id"`
	AssigneeID  *uint `gorm:"index" json:"assignee_id,omitempty"`
	CommunityID *uint `gorm:"index" json:"community_id,omitempty"`

	Upvotes   engagement.Set `gorm:"type:text" json:"-"`
	Downvotes engagement.Set `gorm:"type:text" json:"-"`

	CommentIDs IDList `gorm:"type:text" json:"comment_ids"`

	StatusHistory StatusHistory `gorm:"type:text" json:"status_history"`
	Resolution    Resolution    `gorm:"type:text" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Submitter User `gorm:"foreignKey:SubmitterID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"submitter"`
}

// ChangeStatus applies a status transition: the new status is appended to the
// history log before the field is overwritten, and reaching resolved fills
// the resolution record. Re-asserting the current status is an invalid-state
// error so callers can tell "already true" from "happened".
func (c *Complaint) ChangeStatus(newStatus ComplaintStatus, actorID uint, comment string) error {
	if !newStatus.Valid() {
		return fmt.Errorf("%w: unknown status %q", engagement.ErrInvalidState, newStatus)
	}
	if newStatus == c.Status {
		return fmt.Errorf("%w: status already %q", engagement.ErrInvalidState, newStatus)
	}

	c.StatusHistory.Append(newStatus, actorID, comment)
	c.Status = newStatus

	if newStatus == StatusResolved {
		c.Resolution = Resolution{
			Description: comment,
			ResolvedBy:  actorID,
			ResolvedAt:  time.Now().UTC(),
		}
	}
	return nil
}

// VoteState returns the caller's current vote on the complaint.
func (c *Complaint) VoteState(userID uint) engagement.VoteState {
	return engagement.StateOf(c.Upvotes, c.Downvotes, userID)
}

// ResolutionOrNil exposes the resolution record only once it exists.
func (c *Complaint) ResolutionOrNil() *Resolution {
	if c.Resolution.IsZero() {
		return nil
	}
	r := c.Resolution
	return &r
}
