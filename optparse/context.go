package optparse

// EvalContext is the destination keyed state shared by callback handlers
// during one resolution or parse cycle. It is not safe for concurrent use
// and must not be shared across cycles.
type EvalContext struct {
	values  map[string]any
	touched map[string]struct{}
	order   []string
}

// NewEvalContext seeds a context with a copy of seed. Nested values are
// shared with seed, so callers pass a map they own.
func NewEvalContext(seed map[string]any) *EvalContext {
	ctx := &EvalContext{
		values:  make(map[string]any, len(seed)),
		touched: map[string]struct{}{},
	}
	for k, v := range seed {
		ctx.values[k] = v
	}
	return ctx
}

// Get returns the current value for dest.
func (c *EvalContext) Get(dest string) any {
	return c.values[dest]
}

// Lookup reports whether dest has a value.
func (c *EvalContext) Lookup(dest string) (any, bool) {
	v, ok := c.values[dest]
	return v, ok
}

// Set records a value for dest and marks it as touched.
func (c *EvalContext) Set(dest string, value any) {
	c.values[dest] = value
	if _, ok := c.touched[dest]; !ok {
		c.touched[dest] = struct{}{}
		c.order = append(c.order, dest)
	}
}

// Touched returns the destinations written with Set, in first write order.
func (c *EvalContext) Touched() []string {
	return append([]string(nil), c.order...)
}

func (c *EvalContext) mirror(dest string, value any) {
	c.values[dest] = value
}
