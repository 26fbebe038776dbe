package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// StringList is an ordered list of strings persisted as a JSON array in a
// text column. Reading never fails on malformed legacy values, they decode
// to an empty list.
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*l = StringList{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("string list: unsupported type %T", value)
	}

	var out []string
	if err := json.Unmarshal(raw, &out); err != nil || out == nil {
		*l = StringList{}
		return nil
	}
	*l = out
	return nil
}

// MarshalJSON always encodes an array, never null.
func (l StringList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(l))
}

// GormDataType keeps the column portable across sqlite, mysql and postgres.
func (StringList) GormDataType() string {
	return "text"
}

// Contains reports whether s is in the list.
func (l StringList) Contains(s string) bool {
	for _, v := range l {
		if v == s {
			return true
		}
	}
	return false
}

// Join returns the elements joined by sep.
func (l StringList) Join(sep string) string {
	return strings.Join(l, sep)
}

// Clean trims entries and drops blanks and duplicates, keeping order.
func (l StringList) Clean() StringList {
	seen := make(map[string]struct{}, len(l))
	out := make(StringList, 0, len(l))
	for _, v := range l {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
