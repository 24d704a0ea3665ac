package workflow

import (
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

// IDGenerator hands out run identifiers.
type IDGenerator interface {
	NextID() string
}

// UUIDGenerator issues random UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) NextID() string {
	return uuid.NewString()
}

// SequenceGenerator issues "1", "2", ... Each generator counts on its own.
type SequenceGenerator struct {
	next atomic.Int64
}

func (g *SequenceGenerator) NextID() string {
	return strconv.FormatInt(g.next.Add(1), 10)
}

// NewIDGenerator returns the generator named kind: "sequence" or anything
// else for UUIDs.
func NewIDGenerator(kind string) IDGenerator {
	if kind == "sequence" {
		return &SequenceGenerator{}
	}
	return UUIDGenerator{}
}
