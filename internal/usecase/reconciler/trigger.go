package reconciler

// Trigger is a coalescing wake-up signal for the reconciler: capacity-freeing
// events (cancel, delete) wake the loop immediately instead of waiting for
// the next tick. Multiple wakes before a run collapse into one.
type Trigger struct {
	ch chan struct{}
}

func NewTrigger() *Trigger {
	return &Trigger{ch: make(chan struct{}, 1)}
}

// Wake never blocks; a pending wake already covers the caller.
func (t *Trigger) Wake() {
	select {
	case t.ch <- struct{}{}:
	default:
	}
}

func (t *Trigger) C() <-chan struct{} {
	return t.ch
}
