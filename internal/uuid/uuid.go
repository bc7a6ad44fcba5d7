// Package uuid wraps ID generation behind an interface so services can
// take a deterministic generator in tests.
package uuid

import (
	"github.com/google/uuid"
)

// Generator produces unique identifiers for stored builds
type Generator interface {
	New() string
}

// GoogleUUIDGenerator is the production Generator, backed by
// github.com/google/uuid
type GoogleUUIDGenerator struct{}

// New returns a random UUID string
func (g *GoogleUUIDGenerator) New() string {
	return uuid.New().String()
}

// NewGoogleUUIDGenerator creates the production generator
func NewGoogleUUIDGenerator() *GoogleUUIDGenerator {
	return &GoogleUUIDGenerator{}
}
