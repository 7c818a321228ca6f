package resampler

import (
	"fmt"
	"strings"
)

// ItemError records the failure of one batch item.
type ItemError struct {
	// Index is the position of the item in the batch.
	Index int

	// Err is the cause, wrapping one of the package sentinels or a
	// context error.
	Err error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("batch item %d: %v", e.Index, e.Err)
}

func (e *ItemError) Unwrap() error {
	return e.Err
}

// BatchError aggregates the failures of a batch. Items are ordered by index.
// errors.Is and errors.As see through it to every item's cause.
type BatchError struct {
	Items []*ItemError
}

func (e *BatchError) Error() string {
	switch len(e.Items) {
	case 0:
		return "batch failed"
	case 1:
		return e.Items[0].Error()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d batch items failed: ", len(e.Items))
	for i, item := range e.Items {
		if i > 0 {
			b.WriteString("; ")
		}
		if i == maxListedItemErrors {
			fmt.Fprintf(&b, "and %d more", len(e.Items)-i)
			break
		}
		b.WriteString(item.Error())
	}
	return b.String()
}

func (e *BatchError) Unwrap() []error {
	errs := make([]error, len(e.Items))
	for i, item := range e.Items {
		errs[i] = item
	}
	return errs
}

// ItemResult is the outcome of one batch item.
type ItemResult struct {
	Index int

	// OutputLength is the number of frames written to the destination.
	// It is zero when the item failed.
	OutputLength int

	// Channels is the channel count of the written output.
	Channels int

	// FastPath reports that the input was copied because the rates match.
	FastPath bool

	// Err is nil on success, otherwise an *ItemError.
	Err error
}

// BatchResult holds one ItemResult per batch item, in batch order.
type BatchResult struct {
	Items []ItemResult
}

// Err returns a *BatchError listing the failed items, or nil when every
// item succeeded.
func (r *BatchResult) Err() error {
	var failed []*ItemError
	for i := range r.Items {
		if r.Items[i].Err == nil {
			continue
		}
		ie, ok := r.Items[i].Err.(*ItemError)
		if !ok {
			ie = &ItemError{Index: r.Items[i].Index, Err: r.Items[i].Err}
		}
		failed = append(failed, ie)
	}
	if len(failed) == 0 {
		return nil
	}
	return &BatchError{Items: failed}
}

// Failed returns the indices of the items that failed.
func (r *BatchResult) Failed() []int {
	var idx []int
	for i := range r.Items {
		if r.Items[i].Err != nil {
			idx = append(idx, r.Items[i].Index)
		}
	}
	return idx
}

// OutputLengths returns the frame count written for each item.
func (r *BatchResult) OutputLengths() []int {
	lengths := make([]int, len(r.Items))
	for i := range r.Items {
		lengths[i] = r.Items[i].OutputLength
	}
	return lengths
}
