package telemetry

// Driver metric names
const (
	EvaluatorsAllocated = "EvaluatorsAllocated"
	EvaluatorsClosed    = "EvaluatorsClosed"
	ContextsActive      = "ContextsActive"
	TasksRunning        = "TasksRunning"
	TasksCompleted      = "TasksCompleted"
	IntentsDrained      = "IntentsDrained"
)

// NewDriverMetrics creates the metrics maintained by the driver
func NewDriverMetrics() *Metrics {
	return NewMetrics(
		NewCounter(EvaluatorsAllocated, "evaluators allocated"),
		NewCounter(EvaluatorsClosed, "evaluators closed"),
		NewIntegerGauge(ContextsActive, "active contexts"),
		NewIntegerGauge(TasksRunning, "running tasks"),
		NewCounter(TasksCompleted, "completed tasks"),
		NewCounter(IntentsDrained, "intents drained"),
	)
}
