package dynamo

import "github.com/san-kum/stiffode/internal/scalar"

// Context owns the integration clock and the continuous state it advances.
// An integrator must have exactly one context attached while stepping; the
// clone/restore pair is how trial sub-steps run without disturbing it.
type Context[T scalar.Value[T]] struct {
	time  float64
	state Vector[T]
}

func NewContext[T scalar.Value[T]](x0 Vector[T]) *Context[T] {
	return &Context[T]{state: x0.Clone()}
}

func (c *Context[T]) Time() float64     { return c.time }
func (c *Context[T]) SetTime(t float64) { c.time = t }
func (c *Context[T]) Dim() int          { return len(c.state) }

// State returns the live state vector. Entries may be assigned in place;
// use SetState to replace the contents wholesale.
func (c *Context[T]) State() Vector[T] { return c.state }

func (c *Context[T]) SetState(x Vector[T]) {
	if len(c.state) != len(x) {
		c.state = make(Vector[T], len(x))
	}
	copy(c.state, x)
}

// Clone deep-copies the context so the original can be restored after a
// trial step.
func (c *Context[T]) Clone() *Context[T] {
	return &Context[T]{time: c.time, state: c.state.Clone()}
}

// Restore copies time and state back from a clone taken earlier.
func (c *Context[T]) Restore(from *Context[T]) {
	c.time = from.time
	c.SetState(from.state)
}
