//go:build integration

package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// startMosquitto launches a disposable broker and returns its URL.
func startMosquitto(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "eclipse-mosquitto:1.6",
			ExposedPorts: []string{"1883/tcp"},
			WaitingFor:   wait.ForListeningPort("1883/tcp"),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("docker not available: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "1883")
	require.NoError(t, err)
	return fmt.Sprintf("tcp://%s:%s", host, port.Port())
}

func TestPublisherAgainstBroker(t *testing.T) {
	broker := startMosquitto(t)

	sub := paho.NewClient(paho.NewClientOptions().AddBroker(broker).SetClientID("iris-sub"))
	var tok paho.Token
	for i := 0; i < 5; i++ {
		tok = sub.Connect()
		if tok.Wait() && tok.Error() == nil {
			break
		}
		time.Sleep(500 * time.Millisecond)
	}
	require.NoError(t, tok.Error())
	defer sub.Disconnect(250)

	got := make(chan []byte, 1)
	tok = sub.Subscribe("iris/predictions/#", 1, func(_ paho.Client, m paho.Message) { got <- m.Payload() })
	require.True(t, tok.WaitTimeout(5*time.Second))
	require.NoError(t, tok.Error())

	p, err := NewPublisher(Config{Enabled: true, Broker: broker, QoS: 1})
	require.NoError(t, err)
	defer p.Disconnect()
	require.NoError(t, p.PublishOutcome(successTransition()))

	select {
	case payload := <-got:
		var msg OutcomeMessage
		require.NoError(t, json.Unmarshal(payload, &msg))
		assert.Equal(t, "success", msg.Outcome)
		assert.Equal(t, "setosa", msg.Species)
	case <-time.After(5 * time.Second):
		t.Fatal("no message received")
	}
}
