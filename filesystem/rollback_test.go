package filesystem

import (
	"errors"
	"io"
	"testing"

	"github.com/dargueta/inodefs"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func newQuietLogger() log.FieldLogger {
	logger := log.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestUndoStack__RunsInReverse(t *testing.T) {
	stack := newUndoStack(newQuietLogger())
	var order []int
	stack.push("first", func() error { order = append(order, 1); return nil })
	stack.push("second", func() error { order = append(order, 2); return nil })

	err := stack.unwind(inodefs.ErrNoFreeBlocks)
	assert.Equal(t, inodefs.ErrNoFreeBlocks, err)
	assert.Equal(t, []int{2, 1}, order)
}

func TestUndoStack__DisarmedDoesNothing(t *testing.T) {
	stack := newUndoStack(newQuietLogger())
	ran := false
	stack.push("action", func() error { ran = true; return nil })
	stack.disarm()

	cause := inodefs.ErrPathNotFound.WithMessage("x")
	assert.Equal(t, cause, stack.unwind(cause))
	assert.False(t, ran)
}

func TestUndoStack__FailuresKeepOriginalKind(t *testing.T) {
	stack := newUndoStack(newQuietLogger())
	rollbackFailure := errors.New("disk fell off")
	secondRan := false
	stack.push("keeps going", func() error { secondRan = true; return nil })
	stack.push("fails", func() error { return rollbackFailure })

	err := stack.unwind(inodefs.ErrNoFreeBlocks.WithMessage("need 1 block"))
	assert.True(t, secondRan, "a failed step stopped the rollback")
	assert.ErrorIs(t, err, inodefs.ErrNoFreeBlocks)
	assert.ErrorIs(t, err, rollbackFailure)

	var driverErr inodefs.DriverError
	assert.ErrorAs(t, err, &driverErr)
	assert.Equal(t, inodefs.ErrNoFreeBlocks.Errno(), driverErr.Errno())
}
