package engine

import "context"

// Ticket tracks one submitted edit through its pipeline. It resolves
// once the edit's version is parsed, analyzed and spliced into the
// workspace index (or failed trying).
type Ticket struct {
	done chan struct{}
	err  error
}

func newTicket() *Ticket {
	return &Ticket{done: make(chan struct{})}
}

// Done returns a channel closed when the pipeline finished.
func (t *Ticket) Done() <-chan struct{} { return t.done }

// Wait blocks until the pipeline finished or ctx is cancelled.
func (t *Ticket) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Err returns the pipeline outcome; only meaningful after Done.
func (t *Ticket) Err() error { return t.err }

func (t *Ticket) resolve(err error) {
	t.err = err
	close(t.done)
}
