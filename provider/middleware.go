package provider

// Middleware wraps an adapter with cross-cutting behavior.
type Middleware func(Adapter) Adapter

// Chain composes middlewares. The first one is outermost:
// Chain(a, b)(x) is a(b(x)).
func Chain(middlewares ...Middleware) Middleware {
	return func(inner Adapter) Adapter {
		for i := len(middlewares) - 1; i >= 0; i-- {
			inner = middlewares[i](inner)
		}
		return inner
	}
}
