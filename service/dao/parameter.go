package dao

// Well known list parameter names
const (
	ParamEvaluatorID = "EvaluatorID"
	ParamContextID   = "ContextID"
	ParamState       = "State"
)

// Parameter narrows List results; a []string value matches any of its elements
type Parameter struct {
	Name  string
	Value interface{}
}

func NewParameter(name string, values ...string) *Parameter {
	if len(values) == 1 {
		return &Parameter{Name: name, Value: values[0]}
	}
	return &Parameter{Name: name, Value: values}
}
