package filesystem

import (
	"github.com/dargueta/inodefs"
	"github.com/hashicorp/go-multierror"
	log "github.com/sirupsen/logrus"
)

// undoStack collects compensating actions for a multi-step operation. If the
// operation fails partway through, the actions run in reverse order to put
// things back the way they were.
type undoStack struct {
	actions []undoAction
	log     log.FieldLogger
}

type undoAction struct {
	description string
	run         func() error
}

func newUndoStack(logger log.FieldLogger) *undoStack {
	return &undoStack{log: logger}
}

// push registers an action to run if the operation fails.
func (stack *undoStack) push(description string, action func() error) {
	stack.actions = append(stack.actions, undoAction{description, action})
}

// disarm discards all registered actions once the operation has succeeded.
func (stack *undoStack) disarm() {
	stack.actions = nil
}

// unwind runs every registered action, most recent first, and returns `cause`.
// Failures during the rollback are attached to `cause` without changing its
// kind, so errors.Is still matches the original error.
func (stack *undoStack) unwind(cause error) error {
	var rollbackErrors error
	for i := len(stack.actions) - 1; i >= 0; i-- {
		action := stack.actions[i]
		stack.log.WithField("action", action.description).Debug("rolling back")

		err := action.run()
		if err != nil {
			stack.log.WithError(err).
				WithField("action", action.description).
				Warn("rollback step failed")
			rollbackErrors = multierror.Append(rollbackErrors, err)
		}
	}
	stack.actions = nil

	if rollbackErrors == nil {
		return cause
	}
	return inodefs.CastToDriverError(cause).Wrap(rollbackErrors)
}
