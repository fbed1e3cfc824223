// Package controller implements the prediction form controller: it
// validates the form, issues one prediction request per submission and keeps
// exactly one of the Idle, Loading, Results and Error states active.
//
// An Error state reverts to Idle after the configured display time. Every
// transition cancels the pending revert so a stale timer can never override
// a newer state. Submissions are rejected with ErrBusy while a request is in
// flight.
package controller
