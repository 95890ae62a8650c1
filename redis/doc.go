// Package redis provides the Redis client used as a backend for the
// session-half and local stores.
//
// It wraps go-redis with the SDK logger, configuration conventions and
// the component lifecycle. KVStore adapts a Client to kvstore.Store:
//
//	comp := redis.NewComponent(cfg.Redis, log)
//	_ = registry.Register(comp)
//	// after StartAll
//	half := redis.NewKVStore(comp.Client()).WithPrefix("session")
package redis
