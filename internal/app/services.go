package app

import (
	"context"
	"fmt"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"appdeployer/internal/cluster"
	"appdeployer/internal/config"
	"appdeployer/internal/events"
	"appdeployer/internal/manifest"
	"appdeployer/internal/reconciler"
	"appdeployer/internal/server"
	"appdeployer/internal/transport"
	"appdeployer/pkg/logging"
)

// readyPollInterval is how often Run checks whether the manager consumes.
const readyPollInterval = 100 * time.Millisecond

// Services holds every wired component of the worker.
type Services struct {
	// Transport delivers lifecycle events. It is closed when Run returns.
	Transport transport.Transport

	// Gateway is the cluster access shared by the reconciler and the event recorder.
	Gateway cluster.Gateway

	// Reconciler applies single events.
	Reconciler *reconciler.ApplicationReconciler

	// Manager runs the receive loop and worker pool.
	Manager *reconciler.Manager

	// Registry holds the worker's Prometheus collectors.
	Registry *prometheus.Registry

	// Server serves health, metrics and status; nil when disabled.
	Server *server.Server
}

// newClusterGateway and newTransport are variables so tests can substitute
// fakes for the cluster and the broker.
var (
	newClusterGateway = func(k config.KubernetesConfig) (cluster.Gateway, error) {
		restCfg, err := cluster.RESTConfig(k.Kubeconfig, k.Context)
		if err != nil {
			return nil, err
		}
		return cluster.NewGateway(restCfg, k.FieldManager)
	}

	newTransport = func(cfg config.WorkerConfig) (transport.Transport, error) {
		switch cfg.Transport.Kind {
		case config.TransportMemory:
			logging.Warn("Services", "Using in-memory transport; no events will arrive from a broker")
			return transport.NewMemoryTransport(), nil
		case config.TransportAMQP:
			return transport.NewAMQPTransport(cfg.AMQP()), nil
		default:
			return nil, fmt.Errorf("unknown transport kind %q", cfg.Transport.Kind)
		}
	}
)

// InitializeServices connects to the cluster and wires the transport,
// reconciler, manager, metrics and HTTP server.
func InitializeServices(cfg config.WorkerConfig) (*Services, error) {
	gw, err := newClusterGateway(cfg.Kubernetes)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to cluster: %w", err)
	}

	tr, err := newTransport(cfg)
	if err != nil {
		return nil, err
	}

	return newServices(cfg, gw, tr), nil
}

func newServices(cfg config.WorkerConfig, gw cluster.Gateway, tr transport.Transport) *Services {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := reconciler.NewMetrics(registry)

	recCfg := reconciler.ApplicationReconcilerConfig{
		StepTimeout:        cfg.Reconciler.StepTimeout,
		Retry:              cfg.Reconciler.Retry.Backoff(),
		TerminatingTimeout: cfg.Reconciler.TerminatingTimeout,
		Metrics:            metrics,
	}
	if cfg.Reconciler.RecordEvents {
		recCfg.Recorder = events.NewRecorder(gw, cfg.Kubernetes.FieldManager)
	}
	rec := reconciler.NewApplicationReconciler(gw, manifest.NewBuilder(cfg.Manifest.Options()), recCfg)

	mgr := reconciler.NewManager(reconciler.ManagerConfig{WorkerCount: cfg.Reconciler.Workers}, tr, rec, metrics)

	s := &Services{
		Transport:  tr,
		Gateway:    gw,
		Reconciler: rec,
		Manager:    mgr,
		Registry:   registry,
	}
	if cfg.Server.ListenAddress != "" {
		s.Server = server.New(cfg.Server.ListenAddress, server.NewRouter(mgr, registry))
	}
	return s
}

// Run starts the manager and the HTTP server and blocks until ctx is
// cancelled or one of them fails. The transport is closed on return.
func (s *Services) Run(ctx context.Context) error {
	defer func() {
		if err := s.Transport.Close(); err != nil {
			logging.Error("Services", err, "Failed to close transport")
		}
	}()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.Manager.Run(gctx)
	})
	if s.Server != nil {
		g.Go(func() error {
			return s.Server.Run(gctx)
		})
	}
	g.Go(func() error {
		s.notifyWhenReady(gctx)
		return nil
	})

	err := g.Wait()

	if _, notifyErr := daemon.SdNotify(false, daemon.SdNotifyStopping); notifyErr != nil {
		logging.Debug("Services", "sd_notify STOPPING failed: %v", notifyErr)
	}
	return err
}

// notifyWhenReady tells systemd the worker is ready once the manager
// consumes deliveries.
func (s *Services) notifyWhenReady(ctx context.Context) {
	ticker := time.NewTicker(readyPollInterval)
	defer ticker.Stop()

	for {
		if s.Manager.IsReady() {
			sent, err := daemon.SdNotify(false, daemon.SdNotifyReady)
			if err != nil {
				logging.Debug("Services", "sd_notify READY failed: %v", err)
			} else if sent {
				logging.Debug("Services", "Notified systemd of readiness")
			}
			logging.Info("Services", "Worker is consuming lifecycle events")
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
