package trial

import (
	"fmt"
	"strings"
)

// Status is the lifecycle state of a Trial.
//
// The numeric values are a wire contract. Never renumber or remove a value,
// only append.
type Status int32

const (
	StatusUnknown   Status = 0
	StatusRequested Status = 1
	StatusPending   Status = 2
	// 3 is retired and must not be reused.
	StatusCompleted Status = 4
	StatusDeleted   Status = 5
	StatusStopping  Status = 6
)

var statusNames = map[Status]string{
	StatusUnknown:   "UNKNOWN",
	StatusRequested: "REQUESTED",
	StatusPending:   "PENDING",
	StatusCompleted: "COMPLETED",
	StatusDeleted:   "DELETED",
	StatusStopping:  "STOPPING",
}

// Statuses returns every defined Status in numeric order.
func Statuses() []Status {
	return []Status{StatusUnknown, StatusRequested, StatusPending, StatusCompleted, StatusDeleted, StatusStopping}
}

// Valid reports whether s is a defined enumerant.
func (s Status) Valid() bool {
	_, ok := statusNames[s]
	return ok
}

// IsTerminal reports whether s is one of the conventional terminal states.
// Nothing in this package enforces it.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusDeleted || s == StatusStopping
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Status(%d)", int32(s))
}

// ParseStatus returns the Status named by name, ignoring case.
func ParseStatus(name string) (Status, error) {
	const op = "ParseStatus"
	upper := strings.ToUpper(strings.TrimSpace(name))
	for s, n := range statusNames {
		if n == upper {
			return s, nil
		}
	}
	return StatusUnknown, valueError(op, "unknown trial status %q", name)
}
