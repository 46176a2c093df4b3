package workflow

// Action is a workflow verb applied to a request.
type Action string

const (
	ActionSubmit   Action = "submit"
	ActionApprove  Action = "approve"
	ActionReject   Action = "reject"
	ActionCancel   Action = "cancel"
	ActionResubmit Action = "resubmit"
)

var validActions = map[Action]bool{
	ActionSubmit:   true,
	ActionApprove:  true,
	ActionReject:   true,
	ActionCancel:   true,
	ActionResubmit: true,
}

// IsValid returns true if the action is known
func (a Action) IsValid() bool {
	return validActions[a]
}

// String returns the string representation of the action
func (a Action) String() string {
	return string(a)
}
