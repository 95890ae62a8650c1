package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kbukum/socialauth/auth"
	"github.com/kbukum/socialauth/component"
	"github.com/kbukum/socialauth/gateway"
	"github.com/kbukum/socialauth/kvstore"
	"github.com/kbukum/socialauth/localstore"
	"github.com/kbukum/socialauth/logger"
	"github.com/kbukum/socialauth/loopback"
	"github.com/kbukum/socialauth/observability"
	"github.com/kbukum/socialauth/popup"
	"github.com/kbukum/socialauth/redis"
	"github.com/kbukum/socialauth/version"
)

const (
	shutdownTimeout = 10 * time.Second
	clientIDTTL     = 10 * time.Minute
)

// app owns the components behind one CLI invocation.
type app struct {
	cfg        *CLIConfig
	log        *logger.Logger
	telemetry  *observability.Telemetry
	components *component.Registry
	bus        *popup.Bus
	server     *loopback.Server
	redis      *redis.Component
	provider   *auth.Provider
}

func newApp(ctx context.Context, cfg *CLIConfig, opts ...loopback.Option) (*app, error) {
	log := logger.New(&cfg.Logging, cfg.Name)

	tel, err := observability.Setup(ctx, cfg.Telemetry, observability.Service{
		Name:        cfg.Name,
		Version:     version.Get().Short(),
		Environment: cfg.Environment,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("telemetry: %w", err)
	}

	a := &app{
		cfg:        cfg,
		log:        log,
		telemetry:  tel,
		components: component.NewRegistry(log),
		bus:        popup.NewBus(log),
	}
	a.server = loopback.New(cfg.Loopback, a.bus, log, opts...)
	if err := a.components.Register(loopback.NewComponent(a.server)); err != nil {
		return nil, err
	}
	if cfg.Redis.Enabled {
		a.redis = redis.NewComponent(cfg.Redis, log)
		if err := a.components.Register(a.redis); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// start brings the components up and builds the login provider.
func (a *app) start(ctx context.Context) error {
	if err := a.components.StartAll(ctx); err != nil {
		return fmt.Errorf("failed to start components: %w", err)
	}
	for _, h := range a.components.HealthAll(ctx) {
		if h.Status != component.StatusHealthy {
			a.log.Warn("Component not healthy", map[string]interface{}{
				logger.FieldComponent: h.Name,
				logger.FieldStatus:    string(h.Status),
				"message":             h.Message,
			})
		}
	}

	var sessionHalf kvstore.Store = kvstore.NewFile(a.cfg.Storage.SessionFile)
	if a.redis != nil {
		sessionHalf = a.redis.SessionHalf()
	}
	nameSlot := kvstore.NewFile(a.cfg.Storage.NameSlotFile)
	local := kvstore.NewFile(a.cfg.Storage.LocalFile)

	var err error
	a.provider, err = auth.New(ctx, a.cfg.Auth,
		auth.WithLogger(a.log),
		auth.WithTelemetry(a.telemetry),
		auth.WithOpener(a.server.Opener()),
		auth.WithMessageSource(a.bus),
		auth.WithPage(a.server.Page()),
		auth.WithSessionBackends(nameSlot, sessionHalf),
		auth.WithLocalStore(localstore.New(local, a.cfg.Auth.AppID)),
		auth.WithClientIDs(gateway.NewCachedClientIDs(gateway.StaticClientIDs(a.cfg.Auth.Clients), clientIDTTL)),
	)
	return err
}

// stop persists the session and shuts everything down.
func (a *app) stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	if a.provider != nil {
		if err := a.provider.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if err := a.components.StopAll(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := a.telemetry.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("shutdown: %v", errs)
	}
	return nil
}

// runTask starts the app, runs task until it returns or a signal arrives,
// and always stops the app afterwards.
func (a *app) runTask(ctx context.Context, task func(ctx context.Context, p *auth.Provider) error) error {
	taskCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			a.log.Info("Received signal, canceling", map[string]interface{}{
				"signal": sig.String(),
			})
			cancel()
		case <-taskCtx.Done():
		}
	}()

	var taskErr error
	if err := a.start(taskCtx); err != nil {
		taskErr = err
	} else {
		taskErr = task(taskCtx, a.provider)
	}
	if stopErr := a.stop(); stopErr != nil && taskErr == nil {
		return stopErr
	}
	return taskErr
}
