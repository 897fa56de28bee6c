package jsonrpc

// Method handles one call. env carries whatever the transport exposes to
// methods alongside the decoded request.
type Method[E any] func(env E, req *Request) (any, error)

// Registry is an immutable method table. It is safe for concurrent use.
type Registry[E any] struct {
	methods map[string]Method[E]
}

// NewRegistry copies methods into a new registry.
func NewRegistry[E any](methods map[string]Method[E]) *Registry[E] {
	m := make(map[string]Method[E], len(methods))
	for name, fn := range methods {
		m[name] = fn
	}
	return &Registry[E]{methods: m}
}

// Lookup returns the method registered under name.
func (r *Registry[E]) Lookup(name string) (Method[E], bool) {
	fn, ok := r.methods[name]
	return fn, ok
}

// Len returns the number of registered methods.
func (r *Registry[E]) Len() int {
	return len(r.methods)
}
