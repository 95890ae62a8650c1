package loopback

import (
	"context"

	"github.com/kbukum/socialauth/component"
)

const componentName = "loopback"

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// Component wraps Server for a component.Registry.
type Component struct {
	server *Server
}

// NewComponent returns a component backed by s.
func NewComponent(s *Server) *Component {
	return &Component{server: s}
}

// Server returns the wrapped server.
func (c *Component) Server() *Server { return c.server }

// Name returns the component name used for registration.
func (c *Component) Name() string { return componentName }

// Start starts the server.
func (c *Component) Start(ctx context.Context) error { return c.server.Start(ctx) }

// Stop shuts the server down.
func (c *Component) Stop(ctx context.Context) error { return c.server.Stop(ctx) }

// Health reports healthy while the server is bound.
func (c *Component) Health(context.Context) component.Health {
	if c.server.Addr() != "" {
		return component.Health{Name: componentName, Status: component.StatusHealthy}
	}
	return component.Health{
		Name:    componentName,
		Status:  component.StatusUnhealthy,
		Message: "loopback server not listening",
	}
}

// Describe summarizes the server for CLI output.
func (c *Component) Describe() component.Description {
	details := c.server.Addr()
	if details == "" {
		details = c.server.httpServer.Addr
	}
	return component.Description{Name: "Loopback Server", Type: "server", Details: details}
}
