package criteria

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/evalrt/service/dao"
)

func TestMatch(t *testing.T) {
	fields := map[string]string{dao.ParamState: "bound", dao.ParamEvaluatorID: "E1"}
	var testCases = []struct {
		description string
		parameters  []*dao.Parameter
		expect      bool
	}{
		{description: "no parameters", expect: true},
		{description: "state match", parameters: []*dao.Parameter{dao.NewParameter(dao.ParamState, "bound")}, expect: true},
		{description: "state mismatch", parameters: []*dao.Parameter{dao.NewParameter(dao.ParamState, "closed")}, expect: false},
		{description: "any of", parameters: []*dao.Parameter{dao.NewParameter(dao.ParamState, "closed", "bound")}, expect: true},
		{description: "conjunction", parameters: []*dao.Parameter{dao.NewParameter(dao.ParamState, "bound"), dao.NewParameter(dao.ParamEvaluatorID, "E2")}, expect: false},
		{description: "unknown field", parameters: []*dao.Parameter{dao.NewParameter("Color", "red")}, expect: true},
	}
	for _, testCase := range testCases {
		assert.Equal(t, testCase.expect, Match(fields, testCase.parameters), testCase.description)
	}
}
