//go:build integration

package e2e

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/kilianp07/iris/app"
	"github.com/kilianp07/iris/backend"
	"github.com/kilianp07/iris/config"
	"github.com/kilianp07/iris/core/factory"
	"github.com/kilianp07/iris/infra/mqtt"
)

const (
	influxOrg    = "e2e_org"
	influxBucket = "e2e_bucket"
	influxToken  = "e2e-token"
)

// junitReport is a minimal representation of a JUnit XML report so CI
// systems can display the results.
type junitReport struct {
	XMLName  xml.Name        `xml:"testsuite"`
	Name     string          `xml:"name,attr"`
	Tests    int             `xml:"tests,attr"`
	Failures int             `xml:"failures,attr"`
	Cases    []junitTestCase `xml:"testcase"`
}

type junitTestCase struct {
	Name    string  `xml:"name,attr"`
	Failure *string `xml:"failure,omitempty"`
	Time    float64 `xml:"time,attr"`
}

func writeJUnit(path string, rep junitReport) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := xml.NewEncoder(f)
	enc.Indent("", "  ")
	return enc.Encode(rep)
}

// startInflux starts an initialised InfluxDB 2.7 container and returns its
// base URL.
func startInflux(ctx context.Context, t *testing.T) string {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "influxdb:2.7",
		ExposedPorts: []string{"8086/tcp"},
		Env: map[string]string{
			"DOCKER_INFLUXDB_INIT_MODE":        "setup",
			"DOCKER_INFLUXDB_INIT_USERNAME":    "e2e",
			"DOCKER_INFLUXDB_INIT_PASSWORD":    "e2e-password",
			"DOCKER_INFLUXDB_INIT_ORG":         influxOrg,
			"DOCKER_INFLUXDB_INIT_BUCKET":      influxBucket,
			"DOCKER_INFLUXDB_INIT_ADMIN_TOKEN": influxToken,
		},
		WaitingFor: wait.ForHTTP("/health").WithPort("8086/tcp").WithStartupTimeout(90 * time.Second),
	}
	cont, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		t.Skipf("unable to start influx container: %v", err)
	}
	t.Cleanup(func() { _ = cont.Terminate(context.Background()) })
	host, err := cont.Host(ctx)
	require.NoError(t, err)
	port, err := cont.MappedPort(ctx, "8086")
	require.NoError(t, err)
	return fmt.Sprintf("http://%s:%s", host, port.Port())
}

// startMosquitto spins up a basic Mosquitto broker for tests.
func startMosquitto(ctx context.Context, t *testing.T) string {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "eclipse-mosquitto:1.6",
		ExposedPorts: []string{"1883/tcp"},
		WaitingFor:   wait.ForListeningPort("1883/tcp"),
	}
	cont, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		t.Skipf("unable to start mosquitto: %v", err)
	}
	t.Cleanup(func() { _ = cont.Terminate(context.Background()) })
	host, err := cont.Host(ctx)
	require.NoError(t, err)
	port, err := cont.MappedPort(ctx, "1883")
	require.NoError(t, err)
	return fmt.Sprintf("tcp://%s:%s", host, port.Port())
}

func subscribe(t *testing.T, broker, topic string) <-chan mqtt.OutcomeMessage {
	t.Helper()
	msgs := make(chan mqtt.OutcomeMessage, 4)
	opts := paho.NewClientOptions().AddBroker(broker).SetClientID("e2e-subscriber")
	client := paho.NewClient(opts)
	tok := client.Connect()
	require.True(t, tok.WaitTimeout(10*time.Second))
	require.NoError(t, tok.Error())
	t.Cleanup(func() { client.Disconnect(100) })
	sub := client.Subscribe(topic, 1, func(_ paho.Client, m paho.Message) {
		var om mqtt.OutcomeMessage
		if json.Unmarshal(m.Payload(), &om) == nil {
			msgs <- om
		}
	})
	require.True(t, sub.WaitTimeout(10*time.Second))
	require.NoError(t, sub.Error())
	return msgs
}

func TestSubmissionFlow(t *testing.T) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	influxURL := startInflux(ctx, t)
	broker := startMosquitto(ctx, t)
	predictor := httptest.NewServer(backend.NewPredictServerMock(backend.Config{}).Handler())
	defer predictor.Close()

	cfg := config.Default()
	cfg.Endpoint.BaseURL = predictor.URL
	cfg.Server.Address = "127.0.0.1:0"
	cfg.Metrics.Sinks = []factory.ModuleConfig{{
		Type: "influx",
		Conf: map[string]any{"url": influxURL, "token": influxToken, "org": influxOrg, "bucket": influxBucket},
	}}
	cfg.MQTT.Enabled = true
	cfg.MQTT.Broker = broker
	cfg.MQTT.ClientID = "e2e-publisher"
	cfg.MQTT.QoS = 1

	outcomes := subscribe(t, broker, "iris/predictions/#")

	svc, err := app.New(cfg)
	require.NoError(t, err)
	defer svc.Close()
	runCtx, stop := context.WithCancel(ctx)
	defer stop()
	go func() { _ = svc.Run(runCtx) }()
	// Let the collectors subscribe before submitting.
	time.Sleep(300 * time.Millisecond)

	web := httptest.NewServer(svc.Handler.Routes())
	defer web.Close()
	body := `{"model":"SVM","sepal_length":"6.7","sepal_width":"3.3","petal_length":"5.7","petal_width":"2.5"}`
	resp, err := http.Post(web.URL+"/api/submit", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	select {
	case om := <-outcomes:
		assert.Equal(t, "success", om.Outcome)
		assert.Equal(t, "Virginica", om.Species)
		assert.Equal(t, "SVM", om.Model)
	case <-time.After(10 * time.Second):
		t.Fatal("no outcome published")
	}

	influx := NewInfluxClient(influxURL, influxOrg, influxBucket, influxToken)
	defer influx.Close()
	require.Eventually(t, func() bool {
		subs, err := influx.Submissions(ctx)
		return err == nil && len(subs) == 1 && subs[0].Species == "Virginica"
	}, 15*time.Second, 500*time.Millisecond)

	rep := junitReport{Name: "e2e", Tests: 1, Cases: []junitTestCase{{Name: t.Name(), Time: time.Since(start).Seconds()}}}
	if err := writeJUnit(filepath.Join(t.TempDir(), "e2e.xml"), rep); err != nil {
		t.Logf("write junit: %v", err)
	}
}
