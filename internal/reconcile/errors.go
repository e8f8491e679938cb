package reconcile

import "fmt"

// RemoteError wraps any failure talking to the remote store. Batch-level: the
// whole commit aborts and the local store is left untouched.
type RemoteError struct {
	Op  string // "fetch" or "upsert"
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote %s: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }
