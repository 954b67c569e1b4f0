package models

import (
	"database/sql/driver"
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
)

// ClaimedSet holds the greeting indices a participant has already claimed.
// It persists as comma-joined text ("0,2,4"), the format the event database
// has always used.
type ClaimedSet []int

func (s ClaimedSet) Contains(index int) bool {
	for _, v := range s {
		if v == index {
			return true
		}
	}
	return false
}

// With returns a new sorted set including index. The receiver is not
// modified, so a failed optimistic write leaves the loaded row untouched.
func (s ClaimedSet) With(index int) ClaimedSet {
	if s.Contains(index) {
		return s
	}
	out := make(ClaimedSet, 0, len(s)+1)
	out = append(out, s...)
	out = append(out, index)
	sort.Ints(out)
	return out
}

func (s ClaimedSet) Value() (driver.Value, error) {
	parts := make([]string, len(s))
	for i, v := range s {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ","), nil
}

func (s *ClaimedSet) Scan(value interface{}) error {
	var raw string
	switch v := value.(type) {
	case nil:
		*s = ClaimedSet{}
		return nil
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return errors.New("unsupported claimed set column type")
	}

	out := ClaimedSet{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			// Skip stray tokens the way the original parser did.
			continue
		}
		out = append(out, n)
	}
	sort.Ints(out)
	*s = out
	return nil
}

// Participant is the sole durable record the claim flow depends on. ID is
// the opaque chat/account identifier supplied on first contact. Version
// backs the optimistic compare-and-update in storage.
type Participant struct {
	ID            string     `gorm:"primary_key" json:"id"`
	Claimed       ClaimedSet `gorm:"type:text" json:"claimed"`
	LastClaimDate *time.Time `json:"lastClaimDate"`
	Version       int        `gorm:"not null;default:0" json:"-"`

	gorm.Model
}
