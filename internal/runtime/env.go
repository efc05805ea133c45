package runtime

// Environment is a scope's name-to-value mapping with a parent link
// forming the lookup chain. Function frames parent directly to the global
// frame, never to the caller's frame.
type Environment struct {
	values map[string]Value
	parent *Environment
}

// NewEnvironment creates an environment with the given parent (nil for the
// global frame).
func NewEnvironment(parent *Environment) *Environment {
	return &Environment{values: make(map[string]Value), parent: parent}
}

// Get looks a name up through the environment chain.
func (e *Environment) Get(name string) (Value, bool) {
	for env := e; env != nil; env = env.parent {
		if v, ok := env.values[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Set binds a name in this frame, shadowing any outer binding.
func (e *Environment) Set(name string, value Value) {
	e.values[name] = value
}

// Update rebinds a name wherever it is currently bound in the chain. An
// unbound name is created in the outermost frame.
func (e *Environment) Update(name string, value Value) {
	for env := e; env != nil; env = env.parent {
		if _, ok := env.values[name]; ok {
			env.values[name] = value
			return
		}
		if env.parent == nil {
			env.values[name] = value
			return
		}
	}
}
