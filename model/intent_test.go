package model

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntent_Validate(t *testing.T) {
	root := NewRootContext("E1", "C1")
	task := NewTask("T1", root)
	foreign := NewRootContext("E2", "C2")

	var testCases = []struct {
		description string
		intent      *Intent
		expectErr   bool
	}{
		{description: "create context", intent: NewCreateContext(root)},
		{description: "create context and task", intent: NewCreateContextAndTask(root, task, nil)},
		{description: "close evaluator", intent: NewCloseEvaluator("E1")},
		{description: "nil intent", intent: nil, expectErr: true},
		{description: "missing evaluator", intent: NewCloseEvaluator(""), expectErr: true},
		{description: "create context with task", intent: &Intent{Kind: IntentCreateContext, EvaluatorID: "E1", Context: root, Task: task}, expectErr: true},
		{description: "create context without context", intent: &Intent{Kind: IntentCreateContext, EvaluatorID: "E1"}, expectErr: true},
		{description: "task bound elsewhere", intent: &Intent{Kind: IntentCreateContextAndTask, EvaluatorID: "E1", Context: root, Task: NewTask("T2", foreign)}, expectErr: true},
		{description: "context of other evaluator", intent: &Intent{Kind: IntentCreateContext, EvaluatorID: "E1", Context: foreign}, expectErr: true},
		{description: "close with context", intent: &Intent{Kind: IntentCloseEvaluator, EvaluatorID: "E1", Context: root}, expectErr: true},
		{description: "unknown kind", intent: &Intent{Kind: "Reboot", EvaluatorID: "E1"}, expectErr: true},
	}

	for _, testCase := range testCases {
		err := testCase.intent.Validate()
		if testCase.expectErr {
			assert.Error(t, err, testCase.description)
			assert.True(t, errors.Is(err, ErrInvalidArgument), testCase.description)
			continue
		}
		assert.NoError(t, err, testCase.description)
	}
}

func TestIntent_Immutable(t *testing.T) {
	root := NewRootContext("E1", "C1", &Service{Name: "svc"})
	task := NewTask("T1", root)
	result := ResultFunc(func(ctx context.Context, task *Task) ([]byte, error) { return []byte("ok"), nil })
	intent := NewCreateContextAndTask(root, task, result)

	root.ID = "changed"
	root.Services[0].Name = "changed"
	task.ID = "changed"

	assert.Equal(t, "C1", intent.ContextID())
	assert.Equal(t, "svc", intent.Context.Services[0].Name)
	assert.Equal(t, "T1", intent.TaskID())
	assert.Equal(t, "E1", intent.EvaluatorID)
	assert.NotEmpty(t, intent.ID)
	value, err := intent.Result.ReturnValue(context.Background(), intent.Task)
	assert.NoError(t, err)
	assert.Equal(t, []byte("ok"), value)
}

func TestIntent_EmptyAccessors(t *testing.T) {
	intent := NewCloseEvaluator("E1")
	assert.Equal(t, "", intent.ContextID())
	assert.Equal(t, "", intent.TaskID())
	assert.Equal(t, IntentCloseEvaluator, intent.Kind)
}
