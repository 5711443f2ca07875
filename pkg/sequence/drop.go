package sequence

// FunctionRef is the payload dragged from the catalog.
type FunctionRef struct {
	Function string
	Module   string
}

// Drop appends the step a payload describes: a FunctionRef becomes a
// FunctionStep and the strings "if", "for" and "end" become control markers.
// Anything else is ignored and reports false.
func (s *Sequence) Drop(payload any) (Step, bool) {
	var step Step
	switch p := payload.(type) {
	case FunctionRef:
		step = refStep(p)
	case *FunctionRef:
		if p != nil {
			step = refStep(*p)
		}
	case string:
		if kind, ok := ParseControlKind(p); ok && string(kind) == p {
			step = NewControlStep(kind)
		}
	}
	if step == nil {
		return nil, false
	}
	s.Append(step)
	return step, true
}

func refStep(ref FunctionRef) Step {
	if ref.Module == "" || ref.Function == "" {
		return nil
	}
	return NewFunctionStep(ref.Module, ref.Function)
}
