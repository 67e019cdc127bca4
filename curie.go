package openregister

import (
	"fmt"
	"strings"
)

// Curie is a compact reference to another register's record.
type Curie struct {
	Register string
	ID       string
}

// ParseCurie splits "register-name:record-id" at the first colon.
// The record id may itself contain colons.
func ParseCurie(s string) (Curie, error) {
	register, id, ok := strings.Cut(s, ":")
	if !ok || register == "" {
		return Curie{}, fmt.Errorf("%w: %q", ErrInvalidCurie, s)
	}
	return Curie{Register: register, ID: id}, nil
}

func (c Curie) String() string {
	return c.Register + ":" + c.ID
}
