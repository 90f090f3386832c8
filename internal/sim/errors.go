package sim

import (
	"fmt"
	"sort"
	"strings"
)

// InvalidReferenceError is returned when a coil, switch, wire, or device is
// looked up by an unknown logical name. It always carries the valid name set
// so the caller can see what the device actually exposes.
type InvalidReferenceError struct {
	Kind  string // "coil", "switch", "wire", "device"
	Name  string
	Valid []string
}

func (e *InvalidReferenceError) Error() string {
	valid := append([]string(nil), e.Valid...)
	sort.Strings(valid)
	return fmt.Sprintf("unknown %s %q (valid: %s)", e.Kind, e.Name, strings.Join(valid, ", "))
}

func newInvalidReference(kind, name string, valid []string) error {
	return &InvalidReferenceError{Kind: kind, Name: name, Valid: valid}
}
