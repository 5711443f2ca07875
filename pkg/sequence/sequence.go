package sequence

import (
	"errors"
	"fmt"
	"slices"
)

// ErrIndexOutOfRange is returned for a position outside the sequence.
var ErrIndexOutOfRange = errors.New("index out of range")

// Sequence is an ordered list of steps. The zero value is an empty sequence.
type Sequence struct {
	steps []Step
}

// New returns an empty sequence.
func New() *Sequence {
	return &Sequence{}
}

// Append adds a step at the end.
func (s *Sequence) Append(step Step) {
	s.steps = append(s.steps, step)
}

// RemoveAt deletes the step at index i together with its parameters.
func (s *Sequence) RemoveAt(i int) (Step, error) {
	if err := s.check(i); err != nil {
		return nil, fmt.Errorf("remove: %w", err)
	}
	step := s.steps[i]
	s.steps = slices.Delete(s.steps, i, i+1)
	return step, nil
}

// Move relocates the step at from so that it ends up at index to.
func (s *Sequence) Move(from, to int) error {
	if err := s.check(from); err != nil {
		return fmt.Errorf("move from: %w", err)
	}
	if err := s.check(to); err != nil {
		return fmt.Errorf("move to: %w", err)
	}
	step := s.steps[from]
	s.steps = slices.Delete(s.steps, from, from+1)
	s.steps = slices.Insert(s.steps, to, step)
	return nil
}

// RenderSummary returns one "n. label" line per step, numbered from 1.
func (s *Sequence) RenderSummary() []string {
	lines := make([]string, len(s.steps))
	for i, step := range s.steps {
		lines[i] = fmt.Sprintf("%d. %s", i+1, step.Label())
	}
	return lines
}

// Clear drops every step.
func (s *Sequence) Clear() {
	s.steps = nil
}

// Len returns the number of steps.
func (s *Sequence) Len() int { return len(s.steps) }

// At returns the step at index i.
func (s *Sequence) At(i int) (Step, error) {
	if err := s.check(i); err != nil {
		return nil, err
	}
	return s.steps[i], nil
}

// Steps returns a copy of the step list.
func (s *Sequence) Steps() []Step {
	return slices.Clone(s.steps)
}

// Find returns the index of the step with the given ID, or -1.
func (s *Sequence) Find(id StepID) int {
	return slices.IndexFunc(s.steps, func(st Step) bool { return st.ID() == id })
}

func (s *Sequence) check(i int) error {
	if i < 0 || i >= len(s.steps) {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, i, len(s.steps))
	}
	return nil
}
