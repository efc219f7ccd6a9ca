// Package form drives editing of a BMR: an immutable form state, a reducer
// over path-addressed edits, and the submit lifecycle.
package form

import (
	"maps"

	"bmr-backend/internal/bmr"
)

type Status string

const (
	StatusIdle       Status = "idle"
	StatusSubmitting Status = "submitting"
)

// State is a value. Reducer updates return a new State and never touch the
// slices of the old one.
type State struct {
	Record      bmr.Record        `json:"record"`
	Status      Status            `json:"status"`
	FieldErrors map[string]string `json:"fieldErrors,omitempty"`
}

func NewState(rec bmr.Record) State {
	return State{Record: rec.Clone(), Status: StatusIdle}
}

func (s State) clone() State {
	out := s
	out.Record = s.Record.Clone()
	if s.FieldErrors != nil {
		out.FieldErrors = maps.Clone(s.FieldErrors)
	}
	return out
}

func (s State) Submitting() bool { return s.Status == StatusSubmitting }
