package pipeline

import "fmt"

// The pipeline surfaces failures as one of four categories so trigger
// surfaces can log and convert them uniformly.

// FetchError means the event feed was unreachable or returned a malformed
// response. The cycle aborts with no state mutated.
type FetchError struct {
	Err error
}

func (e *FetchError) Error() string { return fmt.Sprintf("fetch events: %v", e.Err) }
func (e *FetchError) Unwrap() error { return e.Err }

// SummarizeError means the text-generation call failed or returned empty.
// Remaining tiers in the cycle are not dispatched; completed tiers stand.
type SummarizeError struct {
	Err error
}

func (e *SummarizeError) Error() string { return fmt.Sprintf("summarize events: %v", e.Err) }
func (e *SummarizeError) Unwrap() error { return e.Err }

// PersistenceError means a ledger or alert log operation failed. Read
// failures abort the cycle before any mutation; write failures are logged
// and counted without aborting.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *PersistenceError) Unwrap() error { return e.Err }
