package enums

// WorkflowState is one step of the outbound distribution state machine.
type WorkflowState string

const (
	WorkflowStateScanning       WorkflowState = "scanning"
	WorkflowStateReviewing      WorkflowState = "reviewing"
	WorkflowStateDetailsCapture WorkflowState = "details_capture"
	// WorkflowStateConfirmed is terminal; no backward navigation past it.
	WorkflowStateConfirmed WorkflowState = "confirmed"
)

var workflowStateOrder = []WorkflowState{
	WorkflowStateScanning,
	WorkflowStateReviewing,
	WorkflowStateDetailsCapture,
	WorkflowStateConfirmed,
}

// IsValid reports whether the value is a known WorkflowState.
func (w WorkflowState) IsValid() bool {
	return w.index() >= 0
}

// String implements fmt.Stringer.
func (w WorkflowState) String() string {
	return string(w)
}

// Next returns the state that follows w, or w itself when terminal.
func (w WorkflowState) Next() WorkflowState {
	i := w.index()
	if i < 0 || i == len(workflowStateOrder)-1 {
		return w
	}
	return workflowStateOrder[i+1]
}

// Prev returns the state before w, or w itself when already first.
func (w WorkflowState) Prev() WorkflowState {
	i := w.index()
	if i <= 0 {
		return w
	}
	return workflowStateOrder[i-1]
}

func (w WorkflowState) index() int {
	for i, candidate := range workflowStateOrder {
		if candidate == w {
			return i
		}
	}
	return -1
}
