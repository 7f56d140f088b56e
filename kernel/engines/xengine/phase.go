package xengine

type Phase int

const (
	PhaseReceived Phase = iota
	PhasePreprocessing
	PhasePreprocessingFailed
	PhasePrepared
	PhaseExecuting
	PhaseExecutionFailed
	PhaseExecuted
)

var phaseNames = map[Phase]string{
	PhaseReceived:            "Received",
	PhasePreprocessing:       "Preprocessing",
	PhasePreprocessingFailed: "PreprocessingFailed",
	PhasePrepared:            "Prepared",
	PhaseExecuting:           "Executing",
	PhaseExecutionFailed:     "ExecutionFailed",
	PhaseExecuted:            "Executed",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return "Unknown"
}

// IsFailed whether the deploy stopped in a failure phase
func (p Phase) IsFailed() bool {
	return p == PhasePreprocessingFailed || p == PhaseExecutionFailed
}

// IsPrecondition failures that happen before any contract code runs
func (p Phase) IsPrecondition() bool {
	return p == PhaseReceived || p == PhasePreprocessing || p == PhasePreprocessingFailed
}
