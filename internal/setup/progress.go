package setup

// Progress receives advisory, human-readable status lines. Implementations
// must not block; nothing in this package waits on a listener.
type Progress interface {
	Report(msg string)
}

// ProgressFunc adapts a function to Progress.
type ProgressFunc func(msg string)

func (f ProgressFunc) Report(msg string) {
	if f != nil {
		f(msg)
	}
}

// ChanProgress forwards to a channel and drops messages when it is full.
type ChanProgress chan<- string

func (c ChanProgress) Report(msg string) {
	select {
	case c <- msg:
	default:
	}
}

func report(p Progress, msg string) {
	if p != nil {
		p.Report(msg)
	}
}
