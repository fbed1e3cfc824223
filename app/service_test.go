package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/iris/backend"
	"github.com/kilianp07/iris/config"
	"github.com/kilianp07/iris/core/controller"
	"github.com/kilianp07/iris/core/factory"
	"github.com/kilianp07/iris/core/model"
	"github.com/kilianp07/iris/core/state"
)

func TestServiceAgainstMockBackend(t *testing.T) {
	mock := backend.NewPredictServerMock(backend.Config{})
	ts := httptest.NewServer(mock.Handler())
	defer ts.Close()

	cfg := config.Default()
	cfg.Endpoint.BaseURL = ts.URL
	svc, err := New(cfg)
	require.NoError(t, err)
	defer svc.Close()

	svc.Fields.SetModel("knn")
	svc.Fields.Fill(model.Measurement{SepalLength: 5.1, SepalWidth: 3.5, PetalLength: 1.4, PetalWidth: 0.2})
	st, err := svc.Controller.Submit(context.Background())
	require.NoError(t, err)
	require.Equal(t, state.KindResults, st.Kind)
	assert.Equal(t, "Setosa", st.Result.Species)
	assert.Equal(t, "KNN", st.Result.ModelName)
}

func TestServiceRunStopsOnCancel(t *testing.T) {
	cfg := config.Default()
	cfg.Server.Address = "127.0.0.1:0"
	svc, err := New(cfg, WithPredictor(controller.PredictorFunc(func(context.Context, model.PredictionRequest) (model.PredictionResponse, error) {
		return model.PredictionResponse{}, nil
	})))
	require.NoError(t, err)
	defer svc.Close()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Run(ctx) }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return")
	}
	assert.NoError(t, svc.Close())
}

func TestServiceRoutes(t *testing.T) {
	svc, err := New(config.Default(), WithPredictor(controller.PredictorFunc(func(context.Context, model.PredictionRequest) (model.PredictionResponse, error) {
		return model.PredictionResponse{}, nil
	})))
	require.NoError(t, err)
	defer svc.Close()

	rr := httptest.NewRecorder()
	svc.Handler.Routes().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.Contains(rr.Body.String(), "K-Nearest Neighbors"))
}

func TestNewRejectsUnknownSink(t *testing.T) {
	cfg := config.Default()
	cfg.Metrics.Sinks = append(cfg.Metrics.Sinks, factory.ModuleConfig{Type: "missing"})
	_, err := New(cfg)
	assert.Error(t, err)
}

func TestDisplayAddr(t *testing.T) {
	assert.Equal(t, "127.0.0.1:8080", displayAddr(":8080"))
	assert.Equal(t, "0.0.0.0:80", displayAddr("0.0.0.0:80"))
}
