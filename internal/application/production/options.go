package production

// SubmitOption customises a submission
type SubmitOption func(*submitOptions)

type submitOptions struct {
	resolvePrerequisites bool
}

func defaultSubmitOptions() submitOptions {
	return submitOptions{resolvePrerequisites: true}
}

// WithoutPrerequisites submits only the requested order, without queueing
// its missing prerequisites first
func WithoutPrerequisites() SubmitOption {
	return func(o *submitOptions) {
		o.resolvePrerequisites = false
	}
}

// CancelScope selects how many matching orders a cancel removes
type CancelScope int

const (
	// CancelOldest removes the earliest-submitted matching order
	CancelOldest CancelScope = iota
	// CancelAll removes every matching order
	CancelAll
)
