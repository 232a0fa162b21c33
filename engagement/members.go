package engagement

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Role is a member's role inside a community.
type Role string

const (
	RoleMember    Role = "member"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// Member associates a user with a community, a role, and a join timestamp.
type Member struct {
	UserID   uint      `json:"user_id"`
	Role     Role      `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

// MemberList is a community's member records. It persists as a JSON array in
// a text column on the community row.
type MemberList []Member

// Has reports whether userID holds a member record.
func (l MemberList) Has(userID uint) bool {
	_, ok := l.RoleOf(userID)
	return ok
}

// RoleOf returns the member's role, if present.
func (l MemberList) RoleOf(userID uint) (Role, bool) {
	for _, m := range l {
		if m.UserID == userID {
			return m.Role, true
		}
	}
	return "", false
}

// Count returns the number of member records.
func (l MemberList) Count() int {
	return len(l)
}

// Add appends a member record with the given role and the current timestamp.
// Joining twice returns ErrAlreadyMember and leaves the list unchanged, so
// the caller can distinguish "nothing happened" from "happened".
func (l *MemberList) Add(userID uint, role Role) error {
	if l.Has(userID) {
		return ErrAlreadyMember
	}
	*l = append(*l, Member{UserID: userID, Role: role, JoinedAt: time.Now().UTC()})
	return nil
}

// Remove deletes the member record matching userID. The community creator is
// always a member and cannot be removed.
func (l *MemberList) Remove(userID, creatorID uint) error {
	if userID == creatorID {
		return ErrCreatorImmutable
	}
	for i, m := range *l {
		if m.UserID == userID {
			*l = append((*l)[:i], (*l)[i+1:]...)
			return nil
		}
	}
	return ErrNotMember
}

// SetRole updates an existing member's role.
func (l MemberList) SetRole(userID uint, role Role) error {
	for i := range l {
		if l[i].UserID == userID {
			l[i].Role = role
			return nil
		}
	}
	return ErrNotMember
}

// Value implements driver.Valuer.
func (l MemberList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (l *MemberList) Scan(value interface{}) error {
	if value == nil {
		*l = MemberList{}
		return nil
	}
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("engagement: cannot scan %T into MemberList", value)
	}
	if len(b) == 0 {
		*l = MemberList{}
		return nil
	}
	return json.Unmarshal(b, l)
}
