package main

import (
	"context"
	"io"
	"time"

	"github.com/wassimk/elgato-light/internal/cache"
	"github.com/wassimk/elgato-light/internal/discovery"
	"github.com/wassimk/elgato-light/internal/executor"
	"github.com/wassimk/elgato-light/internal/history"
	"github.com/wassimk/elgato-light/internal/infrastructure/config"
	"github.com/wassimk/elgato-light/internal/infrastructure/influxdb"
	"github.com/wassimk/elgato-light/internal/infrastructure/logging"
	"github.com/wassimk/elgato-light/internal/infrastructure/mqtt"
	"github.com/wassimk/elgato-light/internal/light"
	"github.com/wassimk/elgato-light/internal/publish"
	"github.com/wassimk/elgato-light/internal/resolver"
)

// sinkConnectTimeout bounds connecting to MQTT and InfluxDB so an absent
// broker delays a command only briefly.
const sinkConnectTimeout = 2 * time.Second

// app holds the components one invocation needs. Connections are opened
// lazily and released by close.
type app struct {
	cfg    *config.Config
	log    *logging.Logger
	out    io.Writer
	errOut io.Writer

	store      cache.Store
	discoverer discovery.Discoverer
	resolver   *resolver.Resolver

	closers []func()
}

func newApp(cfg *config.Config, log *logging.Logger, out, errOut io.Writer) *app {
	a := &app{cfg: cfg, log: log, out: out, errOut: errOut}

	store, err := cache.FromConfig(cfg, log)
	if err != nil {
		log.Warn("cache unavailable, continuing without it", "backend", cfg.Cache.Backend, "error", err)
		store = cache.Nop{}
	}
	if c, ok := store.(io.Closer); ok {
		a.onClose(func() { c.Close() }) //nolint:errcheck // Best effort on exit
	}
	a.store = store

	opts := []resolver.Option{resolver.WithPort(uint16(cfg.Device.Port))} // #nosec G115 -- validated 1..65535
	if cfg.Cache.Verify {
		opts = append(opts, resolver.WithVerify(cfg.Cache.VerifyTimeout))
	}
	a.discoverer = discovery.Detect(cfg.Discovery, log)
	a.resolver = resolver.New(store, a.discoverer, log, opts...)

	return a
}

// onClose registers f to run at exit. Closers run in reverse order.
func (a *app) onClose(f func()) {
	a.closers = append(a.closers, f)
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// newExecutor builds the executor with every enabled sink attached. A sink
// that cannot connect is skipped with a warning.
func (a *app) newExecutor(ctx context.Context) *executor.Executor {
	client := light.NewClient(a.cfg.Device.RequestTimeout)
	a.onClose(client.CloseIdleConnections)

	opts := []executor.Option{executor.WithParallel(a.cfg.Execution.Parallel)}

	if a.cfg.History.Enabled {
		if repo := a.openHistory(ctx); repo != nil {
			opts = append(opts, executor.WithObserver(publish.NewHistoryRecorder(repo, a.log)))
		}
	}

	if a.cfg.MQTT.Enabled {
		connectCtx, cancel := context.WithTimeout(ctx, sinkConnectTimeout)
		mqttClient, err := mqtt.Connect(connectCtx, a.cfg.MQTT)
		cancel()
		if err != nil {
			a.log.Warn("MQTT unavailable, state will not be published", "error", err)
		} else {
			a.onClose(func() { mqttClient.Close() }) //nolint:errcheck // Best effort on exit
			opts = append(opts, executor.WithObserver(
				publish.NewMQTTObserver(mqttClient, mqtt.NewTopics(a.cfg.MQTT.TopicPrefix), a.log)))
		}
	}

	if a.cfg.InfluxDB.Enabled {
		connectCtx, cancel := context.WithTimeout(ctx, sinkConnectTimeout)
		influxClient, err := influxdb.Connect(connectCtx, a.cfg.InfluxDB)
		cancel()
		if err != nil {
			a.log.Warn("InfluxDB unavailable, state will not be recorded", "error", err)
		} else {
			influxClient.SetOnError(func(err error) {
				a.log.Warn("InfluxDB write failed", "error", err)
			})
			a.onClose(func() { influxClient.Close() }) //nolint:errcheck // Flushes pending points
			opts = append(opts, executor.WithObserver(publish.NewInfluxObserver(influxClient)))
		}
	}

	return executor.New(client, a.log, opts...)
}

// openHistory opens the history database, or returns nil with a warning.
func (a *app) openHistory(ctx context.Context) *history.SQLiteRepository {
	path := a.cfg.HistoryPath()
	if path == "" {
		a.log.Debug("no user cache directory, history disabled")
		return nil
	}

	repo, err := history.Open(ctx, path)
	if err != nil {
		a.log.Warn("history unavailable", "path", path, "error", err)
		return nil
	}
	a.onClose(func() { repo.Close() }) //nolint:errcheck // Best effort on exit
	return repo
}
