package engagement

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Set is a keyed engagement set mapping a user ID to the time the user
// engaged (voted, liked, viewed). It persists as a JSON object in a text
// column so the owning entity row stays the single unit of atomic
// read-modify-write.
type Set map[uint]time.Time

// Has reports whether userID is in the set.
func (s Set) Has(userID uint) bool {
	_, ok := s[userID]
	return ok
}

// Count returns the number of users in the set.
func (s Set) Count() int {
	return len(s)
}

// Add inserts userID with the current timestamp. It reports whether the set
// changed; adding an existing member is a no-op.
func (s *Set) Add(userID uint) bool {
	if *s == nil {
		*s = Set{}
	}
	if _, ok := (*s)[userID]; ok {
		return false
	}
	(*s)[userID] = time.Now().UTC()
	return true
}

// Remove deletes userID and reports whether the user was present.
func (s *Set) Remove(userID uint) bool {
	if _, ok := (*s)[userID]; !ok {
		return false
	}
	delete(*s, userID)
	return true
}

// Toggle flips membership of userID and reports whether the user is a member
// after the call.
func (s *Set) Toggle(userID uint) bool {
	if s.Remove(userID) {
		return false
	}
	s.Add(userID)
	return true
}

// Value implements driver.Valuer, encoding the set as JSON.
func (s Set) Value() (driver.Value, error) {
	if s == nil {
		return "{}", nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner, decoding a JSON object column.
func (s *Set) Scan(value interface{}) error {
	if value == nil {
		*s = Set{}
		return nil
	}
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("engagement: cannot scan %T into Set", value)
	}
	if len(b) == 0 {
		*s = Set{}
		return nil
	}
	return json.Unmarshal(b, s)
}
