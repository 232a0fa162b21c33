package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// StatusChange is one entry in a complaint's append-only status log.
type StatusChange struct {
	Status    ComplaintStatus `json:"status"`
	ChangedBy uint            `json:"changed_by"`
	ChangedAt time.Time       `json:"changed_at"`
	Comment   string          `json:"comment,omitempty"`
}

// StatusHistory is the append-only log of status transitions. Entries are
// ordered by append order; each carries its own timestamp for display.
type StatusHistory []StatusChange

// Append records a transition. The log is never pruned or rewritten.
func (h *StatusHistory) Append(status ComplaintStatus, changedBy uint, comment string) {
	*h = append(*h, StatusChange{
		Status:    status,
		ChangedBy: changedBy,
		ChangedAt: time.Now().UTC(),
		Comment:   comment,
	})
}

// Value implements driver.Valuer.
func (h StatusHistory) Value() (driver.Value, error) {
	if h == nil {
		return "[]", nil
	}
	b, err := json.Marshal(h)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (h *StatusHistory) Scan(value interface{}) error {
	return scanJSON(value, h, "StatusHistory")
}

// EditRecord captures the PRE-change value of an edited entity. The history
// is a record of prior states, not a change log of deltas.
type EditRecord struct {
	Title    string    `json:"title,omitempty"` // posts only
	Content  string    `json:"content"`
	EditedAt time.Time `json:"edited_at"`
}

// EditHistory is the append-only log of prior contents.
type EditHistory []EditRecord

// Append pushes the value held before the mutation. Callers must invoke this
// before overwriting the entity's content.
func (h *EditHistory) Append(prevTitle, prevContent string) {
	*h = append(*h, EditRecord{
		Title:    prevTitle,
		Content:  prevContent,
		EditedAt: time.Now().UTC(),
	})
}

// Value implements driver.Valuer.
func (h EditHistory) Value() (driver.Value, error) {
	if h == nil {
		return "[]", nil
	}
	b, err := json.Marshal(h)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (h *EditHistory) Scan(value interface{}) error {
	return scanJSON(value, h, "EditHistory")
}

// Resolution records how a complaint was closed out. The zero value means
// the complaint has not been resolved; it persists as NULL.
type Resolution struct {
	Description string    `json:"description"`
	ResolvedBy  uint      `json:"resolved_by"`
	ResolvedAt  time.Time `json:"resolved_at"`
}

// IsZero reports whether no resolution has been recorded.
func (r Resolution) IsZero() bool {
	return r.ResolvedAt.IsZero()
}

// Value implements driver.Valuer; an unresolved record stores NULL.
func (r Resolution) Value() (driver.Value, error) {
	if r.IsZero() {
		return nil, nil
	}
	b, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (r *Resolution) Scan(value interface{}) error {
	return scanJSON(value, r, "Resolution")
}
