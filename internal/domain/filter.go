package domain

import (
	"errors"
	"fmt"
	"strings"
)

type Filter string

const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
)

var ErrInvalidFilter = errors.New("invalid filter")

// ParseFilter maps an empty string to FilterAll.
func ParseFilter(s string) (Filter, error) {
	switch f := Filter(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterActive, FilterCompleted:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidFilter, s)
	}
}

// Match reports whether t belongs to the subset selected by f.
// Unknown filters select everything.
func (f Filter) Match(t *Task) bool {
	switch f {
	case FilterActive:
		return !t.Completed
	case FilterCompleted:
		return t.Completed
	default:
		return true
	}
}
