// (c) 2019-2020, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package wrappers

// Errs tracks the first error that occurred in a series of operations
type Errs struct{ Err error }

// Errored returns true if an error was reported
func (errs *Errs) Errored() bool { return errs.Err != nil }

// Add the errors to this error tracker. Only the first non-nil error is kept.
func (errs *Errs) Add(errors ...error) {
	if errs.Err == nil {
		for _, err := range errors {
			if err != nil {
				errs.Err = err
				break
			}
		}
	}
}
