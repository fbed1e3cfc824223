// Package backend provides a local stand-in for the prediction endpoint.
package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/iris/core/model"
	"github.com/kilianp07/iris/infra/logger"
)

const (
	minFeature = 0.0
	maxFeature = 10.0
)

// PredictServerMock answers POST /predict with the same request checks and
// response shape as the production server.
type PredictServerMock struct {
	mu     sync.Mutex
	addr   string
	models map[string]ModelInfo
	log    logger.Logger
	srv    *http.Server
	total  *prometheus.CounterVec
	failed *prometheus.CounterVec
}

// NewPredictServerMock creates a mock server using the default Prometheus
// registerer.
func NewPredictServerMock(cfg Config) *PredictServerMock {
	return NewPredictServerMockWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPredictServerMockWithRegistry creates a mock server and registers its
// metrics on reg. A nil reg uses the default registerer.
func NewPredictServerMockWithRegistry(cfg Config, reg prometheus.Registerer) *PredictServerMock {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	cfg.SetDefaults()
	log := logger.New("predict-server-mock")

	total := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "iris_mock_predictions_total",
		Help: "Predictions served by the mock endpoint",
	}, []string{"model", "species"})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "iris_mock_prediction_errors_total",
		Help: "Rejected requests by HTTP status",
	}, []string{"status"})

	if err := reg.Register(total); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if exist, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				total = exist
			} else {
				log.Errorf("existing collector for iris_mock_predictions_total has wrong type %T", are.ExistingCollector)
			}
		}
	}
	if err := reg.Register(failed); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if exist, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				failed = exist
			} else {
				log.Errorf("existing collector for iris_mock_prediction_errors_total has wrong type %T", are.ExistingCollector)
			}
		}
	}

	return &PredictServerMock{
		addr:   cfg.Address,
		models: cfg.Models,
		log:    log,
		total:  total,
		failed: failed,
	}
}

// Handler returns the HTTP routes.
func (s *PredictServerMock) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("pong")); err != nil {
			s.log.Errorf("write pong: %v", err)
		}
	})
	mux.HandleFunc("/predict", s.handlePredict)
	return mux
}

var requiredFields = []string{"sepal_length", "sepal_width", "petal_length", "petal_width", "model"}

func (s *PredictServerMock) handlePredict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body == nil {
		s.fail(w, http.StatusBadRequest, "Invalid input values: request body must be a JSON object")
		return
	}
	for _, f := range requiredFields {
		if _, ok := body[f]; !ok {
			s.fail(w, http.StatusBadRequest, "Missing field: "+f)
			return
		}
	}
	modelID := fmt.Sprint(body["model"])
	info, ok := s.models[modelID]
	if !ok {
		s.fail(w, http.StatusBadRequest, "Invalid model: "+modelID)
		return
	}

	var m model.Measurement
	for _, f := range model.Fields {
		v, err := toFloat(body[string(f)])
		if err != nil {
			s.fail(w, http.StatusBadRequest, fmt.Sprintf("Invalid input values: %v", err))
			return
		}
		_ = m.Set(f, v)
	}
	for _, v := range m.Vector() {
		if v < minFeature || v > maxFeature {
			s.fail(w, http.StatusBadRequest, "Feature values should be between 0 and 10")
			return
		}
	}

	resp := Predict(m, info)
	s.total.WithLabelValues(modelID, resp.Species).Inc()
	s.log.Infof("request %s: %s via %s (%.2f%%)", r.Header.Get("X-Request-ID"), resp.Species, info.Name, resp.ConfidencePercentage)
	writeJSON(w, http.StatusOK, resp)
}

// toFloat accepts JSON numbers and numeric strings.
func toFloat(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case string:
		f, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return 0, fmt.Errorf("could not convert string to float: '%s'", x)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("unsupported value %v", v)
	}
}

func (s *PredictServerMock) fail(w http.ResponseWriter, status int, msg string) {
	s.failed.WithLabelValues(strconv.Itoa(status)).Inc()
	s.log.Warnf("rejecting request: %s", msg)
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Addr returns the listening address once Start has been called.
func (s *PredictServerMock) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Start runs the HTTP server until the context is canceled.
func (s *PredictServerMock) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.Addr())
	if err != nil {
		return err
	}
	addr := ln.Addr().String()
	srv := &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	s.mu.Lock()
	s.addr = addr
	s.srv = srv
	s.mu.Unlock()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("shutdown server: %v", err)
		}
		cancel()
	}()
	s.log.Infof("prediction mock listening on %s", addr)
	s.log.Infof("predict: POST http://%s/predict", addr)
	err = srv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
