// Package app assembles the form controller, its web surface and the
// observability pipeline from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/kilianp07/iris/api/web"
	"github.com/kilianp07/iris/auth"
	"github.com/kilianp07/iris/config"
	"github.com/kilianp07/iris/core/controller"
	"github.com/kilianp07/iris/core/events"
	"github.com/kilianp07/iris/core/form"
	coremetrics "github.com/kilianp07/iris/core/metrics"
	coremon "github.com/kilianp07/iris/core/monitoring"
	"github.com/kilianp07/iris/core/render"
	"github.com/kilianp07/iris/infra/logger"
	"github.com/kilianp07/iris/infra/metrics"
	"github.com/kilianp07/iris/infra/monitoring"
	"github.com/kilianp07/iris/infra/mqtt"
	"github.com/kilianp07/iris/infra/predictclient"
	"github.com/kilianp07/iris/internal/eventbus"
)

// NewPredictor builds the HTTP client for the configured endpoint.
func NewPredictor(cfg config.EndpointConfig) *predictclient.Client {
	httpClient := &http.Client{Timeout: cfg.Timeout()}
	opts := []predictclient.Option{
		predictclient.WithPath(cfg.Path),
		predictclient.WithHTTPClient(httpClient),
		predictclient.WithLogger(logger.New("predict-client")),
	}
	if cfg.Auth.Enabled() {
		opts = append(opts, predictclient.WithAuth(auth.NewClientCred(cfg.Auth, httpClient)))
	}
	return predictclient.New(cfg.BaseURL, opts...)
}

// Service runs the web form and fans transitions out to metrics and MQTT.
type Service struct {
	Controller *controller.Controller
	Fields     *form.Fields
	Handler    *web.Handler

	cfg       *config.Config
	hub       *web.Hub
	bus       *eventbus.TypedBus[events.Transition]
	sink      coremetrics.MetricsSink
	monitor   coremon.Monitor
	publisher *mqtt.Publisher
	predictor *predictclient.Client
	log       logger.Logger
	closeOnce sync.Once
}

// Option customises a Service.
type Option func(*serviceOptions)

type serviceOptions struct {
	predictor controller.Predictor
	ctlOpts   []controller.Option
}

// WithPredictor replaces the HTTP predictor, mainly for tests.
func WithPredictor(p controller.Predictor) Option {
	return func(o *serviceOptions) { o.predictor = p }
}

// WithControllerOptions forwards options to the form controller.
func WithControllerOptions(opts ...controller.Option) Option {
	return func(o *serviceOptions) { o.ctlOpts = append(o.ctlOpts, opts...) }
}

// New creates a Service from the configuration.
func New(cfg *config.Config, opts ...Option) (*Service, error) {
	var so serviceOptions
	for _, o := range opts {
		o(&so)
	}
	log := logger.New("service")

	monitor, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}

	var publisher *mqtt.Publisher
	if cfg.MQTT.Enabled {
		publisher, err = mqtt.NewPublisher(cfg.MQTT)
		if err != nil {
			_ = coremetrics.CloseSink(sink)
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
	}

	svc := &Service{
		cfg:       cfg,
		bus:       eventbus.NewTyped[events.Transition](),
		hub:       web.NewHub(),
		sink:      sink,
		monitor:   monitor,
		publisher: publisher,
		log:       log,
	}
	predictor := so.predictor
	if predictor == nil {
		svc.predictor = NewPredictor(cfg.Endpoint)
		predictor = svc.predictor
	}

	svc.Fields = form.NewFields(cfg.Form.DefaultModel)
	view := web.NewView(render.New(cfg.Form.RenderConfig()), svc.hub)
	ctlOpts := append([]controller.Option{
		controller.WithLogger(logger.New("controller")),
		controller.WithPublisher(svc.bus),
	}, so.ctlOpts...)
	svc.Controller, err = controller.New(controller.Config{
		Range:        cfg.Form.Range(),
		ErrorDisplay: cfg.Form.ErrorDisplay(),
	}, svc.Fields, view, predictor, ctlOpts...)
	if err != nil {
		svc.closeOutputs()
		return nil, fmt.Errorf("controller: %w", err)
	}
	svc.Handler = web.NewHandler(svc.Controller, svc.Fields, view, svc.hub, cfg.Form.Models, cfg.Form.Range())
	return svc, nil
}

// Run serves the form until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	collected := metrics.StartEventCollector(ctx, s.bus, s.sink)
	reported := coremon.StartReporter(ctx, s.bus, s.monitor)
	var published <-chan struct{}
	if s.publisher != nil {
		published = s.publisher.Start(ctx, s.bus)
	}
	go s.hub.Run(ctx)
	if s.cfg.Metrics.PrometheusPort != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	srv := &http.Server{
		Addr:              s.cfg.Server.Address,
		Handler:           s.Handler.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("shutdown server: %v", err)
		}
		cancel()
	}()

	if s.predictor != nil {
		s.log.Infof("prediction endpoint: %s", s.predictor.URL())
	}
	s.log.Infof("form: http://%s/", displayAddr(s.cfg.Server.Address))
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-collected
	<-reported
	if published != nil {
		<-published
	}
	return nil
}

func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "127.0.0.1" + addr
	}
	return addr
}

// Close stops the controller and releases outputs.
func (s *Service) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = s.Controller.Close()
		s.closeOutputs()
	})
	return err
}

func (s *Service) closeOutputs() {
	s.bus.Close()
	s.hub.Close()
	if s.publisher != nil {
		s.publisher.Disconnect()
	}
	if err := coremetrics.CloseSink(s.sink); err != nil {
		s.log.Errorf("close metrics sink: %v", err)
	}
	s.monitor.Flush(2 * time.Second)
}
