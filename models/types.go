package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// IDList is a list of entity references persisted as a JSON array in a text
// column, mirroring the document-style reference lists the API exposes.
type IDList []uint

// Contains reports whether id is present.
func (l IDList) Contains(id uint) bool {
	for _, v := range l {
		if v == id {
			return true
		}
	}
	return false
}

// Append adds id if absent and reports whether the list changed.
func (l *IDList) Append(id uint) bool {
	if l.Contains(id) {
		return false
	}
	*l = append(*l, id)
	return true
}

// Drop removes id if present and reports whether the list changed.
func (l *IDList) Drop(id uint) bool {
	for i, v := range *l {
		if v == id {
			*l = append((*l)[:i], (*l)[i+1:]...)
			return true
		}
	}
	return false
}

// Value implements driver.Valuer.
func (l IDList) Value() (driver.Value, error) {
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
func (l *IDList) Scan(value interface{}) error {
	return scanJSON(value, l, "IDList")
}

// StringList is a list of strings (image URLs, tags) persisted as JSON text.
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
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
func (l *StringList) Scan(value interface{}) error {
	return scanJSON(value, l, "StringList")
}

func scanJSON(value, dst interface{}, typeName string) error {
	if value == nil {
		return nil
	}
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("models: cannot scan %T into %s", value, typeName)
	}
	if len(b) == 0 {
		return nil
	}
	return json.Unmarshal(b, dst)
}
