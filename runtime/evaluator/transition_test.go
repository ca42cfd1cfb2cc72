package evaluator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/evalrt/model"
)

func TestTransition(t *testing.T) {
	var testCases = []struct {
		description string
		from        model.State
		op          Operation
		expect      model.State
		expectErr   error
	}{
		{description: "submit on allocated", from: model.StateAllocated, op: OperationSubmit, expect: model.StateBound},
		{description: "submit on bound", from: model.StateBound, op: OperationSubmit, expect: model.StateBound, expectErr: model.ErrIllegalState},
		{description: "submit on closed", from: model.StateClosed, op: OperationSubmit, expect: model.StateClosed, expectErr: model.ErrIllegalState},
		{description: "close allocated", from: model.StateAllocated, op: OperationClose, expect: model.StateClosed},
		{description: "close bound", from: model.StateBound, op: OperationClose, expect: model.StateClosed},
		{description: "close closed", from: model.StateClosed, op: OperationClose, expect: model.StateClosed, expectErr: model.ErrIllegalState},
		{description: "unknown op", from: model.StateAllocated, op: "restart", expect: model.StateAllocated, expectErr: model.ErrUnsupportedOperation},
		{description: "unknown state", from: "zombie", op: OperationClose, expect: "zombie", expectErr: model.ErrIllegalState},
	}
	for _, testCase := range testCases {
		actual, err := Transition(testCase.from, testCase.op)
		assert.Equal(t, testCase.expect, actual, testCase.description)
		if testCase.expectErr != nil {
			assert.True(t, errors.Is(err, testCase.expectErr), testCase.description)
			continue
		}
		assert.NoError(t, err, testCase.description)
	}
}
