package types

// Attributes is an ordered attribute-name to Value mapping.
// Names keep the order in which they were first set.
type Attributes struct {
	names  []string
	values map[string]Value
}

// NewAttributes creates an empty attribute set
func NewAttributes() *Attributes {
	return &Attributes{values: make(map[string]Value)}
}

// AttributesOf builds an attribute set from alternating name, value pairs
func AttributesOf(pairs ...interface{}) *Attributes {
	a := NewAttributes()
	for i := 0; i+1 < len(pairs); i += 2 {
		name, ok := pairs[i].(string)
		if !ok {
			continue
		}
		a.Set(name, FromAny(pairs[i+1]))
	}
	return a
}

// Set assigns a value, appending the name if it is new
func (a *Attributes) Set(name string, v Value) {
	if a.values == nil {
		a.values = make(map[string]Value)
	}
	if _, ok := a.values[name]; !ok {
		a.names = append(a.names, name)
	}
	a.values[name] = v
}

// Get returns the value for name
func (a *Attributes) Get(name string) (Value, bool) {
	if a == nil {
		return Value{}, false
	}
	v, ok := a.values[name]
	return v, ok
}

// Has reports whether name is present
func (a *Attributes) Has(name string) bool {
	_, ok := a.Get(name)
	return ok
}

// Delete removes name, keeping the order of the rest
func (a *Attributes) Delete(name string) {
	if a == nil {
		return
	}
	if _, ok := a.values[name]; !ok {
		return
	}
	delete(a.values, name)
	for i, n := range a.names {
		if n == name {
			a.names = append(a.names[:i], a.names[i+1:]...)
			break
		}
	}
}

// Names returns attribute names in order
func (a *Attributes) Names() []string {
	if a == nil {
		return nil
	}
	out := make([]string, len(a.names))
	copy(out, a.names)
	return out
}

// Values returns values in name order
func (a *Attributes) Values() []Value {
	if a == nil {
		return nil
	}
	out := make([]Value, len(a.names))
	for i, n := range a.names {
		out[i] = a.values[n]
	}
	return out
}

// Len returns the number of attributes
func (a *Attributes) Len() int {
	if a == nil {
		return 0
	}
	return len(a.names)
}

// Each calls fn for every attribute in order
func (a *Attributes) Each(fn func(name string, v Value)) {
	if a == nil {
		return
	}
	for _, n := range a.names {
		fn(n, a.values[n])
	}
}

// Clone returns an independent copy
func (a *Attributes) Clone() *Attributes {
	c := NewAttributes()
	a.Each(c.Set)
	return c
}
