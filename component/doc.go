// Package component defines the lifecycle interface shared by the SDK's
// infrastructure pieces and a registry that starts and stops them.
//
// The loopback callback server and the Redis client implement Component.
// The CLI registers them on a Registry, starts them before a login and
// stops them in reverse order on exit:
//
//	reg := component.NewRegistry(log)
//	_ = reg.Register(redisComponent)
//	_ = reg.Register(loopbackServer)
//	if err := reg.StartAll(ctx); err != nil { ... }
//	defer reg.StopAll(context.Background())
package component
