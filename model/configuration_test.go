package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfiguration_Identifier(t *testing.T) {
	var testCases = []struct {
		description string
		config      Configuration
		key         string
		expect      string
		expectErr   bool
	}{
		{description: "context id", config: NewContextConfiguration("C1"), key: ContextIdentifier, expect: "C1"},
		{description: "task id", config: NewTaskConfiguration(" T1 "), key: TaskIdentifier, expect: "T1"},
		{description: "numeric id", config: Configuration{TaskIdentifier: 12}, key: TaskIdentifier, expect: "12"},
		{description: "missing", config: Configuration{}, key: TaskIdentifier, expectErr: true},
		{description: "nil", config: Configuration{TaskIdentifier: nil}, key: TaskIdentifier, expectErr: true},
		{description: "blank", config: NewContextConfiguration("  "), key: ContextIdentifier, expectErr: true},
	}
	for _, testCase := range testCases {
		actual, err := testCase.config.Identifier(testCase.key)
		if testCase.expectErr {
			assert.True(t, errors.Is(err, ErrInvalidArgument), testCase.description)
			continue
		}
		assert.NoError(t, err, testCase.description)
		assert.Equal(t, testCase.expect, actual, testCase.description)
	}
}

func TestConfiguration_Services(t *testing.T) {
	var testCases = []struct {
		description string
		config      Configuration
		expect      []string
	}{
		{description: "none", config: Configuration{}, expect: nil},
		{description: "list", config: NewServiceConfiguration("a", "b", "a"), expect: []string{"a", "b"}},
		{description: "csv", config: Configuration{ServiceNames: "a, b,,c"}, expect: []string{"a", "b", "c"}},
		{description: "generic list", config: Configuration{ServiceNames: []interface{}{"x", 1}}, expect: []string{"x", "1"}},
	}
	for _, testCase := range testCases {
		var actual []string
		for _, service := range testCase.config.Services() {
			actual = append(actual, service.Name)
		}
		assert.Equal(t, testCase.expect, actual, testCase.description)
	}
}
