package ecs

// Step is one stage of a Program. Hook, StepFunc and Program implement it.
type Step interface {
	Run(r *Root) error
}

// StepFunc adapts a plain function to a Step.
type StepFunc func(r *Root) error

func (f StepFunc) Run(r *Root) error { return f(r) }

// Program runs its steps in order against a root, stopping at the first
// error.
type Program func(r *Root) error

func (p Program) Run(r *Root) error { return p(r) }

// Compose builds a Program from steps. nil steps are skipped.
func Compose(steps ...Step) Program {
	compiled := make([]Step, 0, len(steps))
	for _, s := range steps {
		if s != nil {
			compiled = append(compiled, s)
		}
	}
	return func(r *Root) error {
		for _, s := range compiled {
			if err := s.Run(r); err != nil {
				return err
			}
		}
		return nil
	}
}
