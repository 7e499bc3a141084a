package fileshell

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/arthur-debert/fileshell/pkg/fileshell/shell"
)

var (
	// sequenceCounter for SequenceIDGenerator
	sequenceCounter atomic.Uint64
)

var (
	_ shell.IDGenerator = UUIDIDGenerator
	_ shell.IDGenerator = SequenceIDGenerator
)

// UUIDIDGenerator generates task IDs from a random UUID, prefixed with the
// command name.
func UUIDIDGenerator(command string) string {
	return fmt.Sprintf("%s-%s", command, uuid.NewString())
}

// SequenceIDGenerator generates sequential IDs (useful for testing)
func SequenceIDGenerator(command string) string {
	seq := sequenceCounter.Add(1)
	return fmt.Sprintf("%s-%d", command, seq)
}

// ResetSequenceCounter resets the sequence counter (for testing)
func ResetSequenceCounter() {
	sequenceCounter.Store(0)
}
