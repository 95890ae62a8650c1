package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/alicebob/miniredis/v2"

	"github.com/kbukum/socialauth/component"
)

// MiniRedis is an in-process Redis server.
type MiniRedis struct {
	mu  sync.Mutex
	srv *miniredis.Miniredis
}

var _ TestComponent = (*MiniRedis)(nil)

// NewMiniRedis creates a stopped server.
func NewMiniRedis() *MiniRedis {
	return &MiniRedis{}
}

// Name implements component.Component.
func (m *MiniRedis) Name() string { return "miniredis" }

// Start implements component.Component.
func (m *MiniRedis) Start(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.srv != nil {
		return fmt.Errorf("miniredis already started")
	}
	srv, err := miniredis.Run()
	if err != nil {
		return err
	}
	m.srv = srv
	return nil
}

// Stop implements component.Component.
func (m *MiniRedis) Stop(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.srv != nil {
		m.srv.Close()
		m.srv = nil
	}
	return nil
}

// Health implements component.Component.
func (m *MiniRedis) Health(context.Context) component.Health {
	if m.Server() == nil {
		return component.Health{Name: m.Name(), Status: component.StatusUnhealthy, Message: "not started"}
	}
	return component.Health{Name: m.Name(), Status: component.StatusHealthy}
}

// Server returns the running server, or nil before Start.
func (m *MiniRedis) Server() *miniredis.Miniredis {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.srv
}

// Addr returns the host:port of the running server.
func (m *MiniRedis) Addr() string {
	if srv := m.Server(); srv != nil {
		return srv.Addr()
	}
	return ""
}

// Reset drops every key.
func (m *MiniRedis) Reset(context.Context) error {
	if srv := m.Server(); srv != nil {
		srv.FlushAll()
	}
	return nil
}

// Snapshot returns the string keys and their values.
func (m *MiniRedis) Snapshot(context.Context) (interface{}, error) {
	srv := m.Server()
	if srv == nil {
		return nil, fmt.Errorf("miniredis not started")
	}
	data := make(map[string]string)
	for _, key := range srv.Keys() {
		if v, err := srv.Get(key); err == nil {
			data[key] = v
		}
	}
	return data, nil
}

// Restore replaces every key with snapshot.
func (m *MiniRedis) Restore(_ context.Context, snapshot interface{}) error {
	srv := m.Server()
	if srv == nil {
		return fmt.Errorf("miniredis not started")
	}
	data, ok := snapshot.(map[string]string)
	if !ok {
		return fmt.Errorf("unexpected snapshot type %T", snapshot)
	}
	srv.FlushAll()
	for k, v := range data {
		if err := srv.Set(k, v); err != nil {
			return err
		}
	}
	return nil
}
