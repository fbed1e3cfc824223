// Package mqtt publishes the outcome of every prediction submission to an
// MQTT broker using Eclipse Paho.
package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/kilianp07/iris/core/events"
	"github.com/kilianp07/iris/core/state"
	"github.com/kilianp07/iris/infra/logger"
)

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// OutcomeMessage is the JSON payload sent for a finished submission.
type OutcomeMessage struct {
	RequestID            string  `json:"request_id,omitempty"`
	Model                string  `json:"model,omitempty"`
	Outcome              string  `json:"outcome"`
	Species              string  `json:"species,omitempty"`
	ModelName            string  `json:"model_name,omitempty"`
	ConfidencePercentage float64 `json:"confidence_percentage,omitempty"`
	Field                string  `json:"field,omitempty"`
	Message              string  `json:"message,omitempty"`
	LatencyMS            int64   `json:"latency_ms"`
	Timestamp            int64   `json:"timestamp"`
}

// NewOutcomeMessage builds the payload for a terminal transition.
func NewOutcomeMessage(ev events.Transition) OutcomeMessage {
	m := OutcomeMessage{
		RequestID: ev.RequestID,
		Model:     ev.Model,
		Outcome:   ev.Outcome(),
		Field:     ev.Field,
		LatencyMS: ev.Latency.Milliseconds(),
		Timestamp: ev.At.UnixMilli(),
	}
	if ev.To.Kind == state.KindResults && ev.To.Result != nil {
		m.Species = ev.To.Result.Species
		m.ModelName = ev.To.Result.ModelName
		m.ConfidencePercentage = ev.To.Result.ConfidencePercentage
	} else {
		m.Message = ev.To.Message
	}
	return m
}

// Publisher sends outcome messages to <topic_prefix>/<outcome>.
type Publisher struct {
	cli        pahoClient
	prefix     string
	qos        byte
	retain     bool
	maxRetries int
	backoff    time.Duration
	log        logger.Logger
}

// NewPublisher connects to the broker.
func NewPublisher(cfg Config) (*Publisher, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	log := logger.New("mqtt_publisher")
	opts.OnConnect = func(paho.Client) { log.Infof("MQTT connected to %s", cfg.Broker) }
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	return &Publisher{
		cli:        c,
		prefix:     cfg.TopicPrefix,
		qos:        cfg.QoS,
		retain:     cfg.Retain,
		maxRetries: cfg.MaxRetries,
		backoff:    time.Duration(cfg.BackoffMS) * time.Millisecond,
		log:        log,
	}, nil
}

// NewClientOptions builds paho client options from Config. An empty
// client id is replaced by a random one.
func NewClientOptions(cfg Config) (*paho.ClientOptions, error) {
	id := cfg.ClientID
	if id == "" {
		id = "iris-" + uuid.NewString()
	}
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(id)
	opts.AutoReconnect = true
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	if cfg.UseTLS {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	return opts, nil
}

// Topic returns the topic used for the given outcome.
func (p *Publisher) Topic(outcome string) string {
	return fmt.Sprintf("%s/%s", p.prefix, outcome)
}

// PublishOutcome sends a terminal transition. Non-terminal transitions are ignored.
func (p *Publisher) PublishOutcome(ev events.Transition) error {
	if !ev.Terminal() {
		return nil
	}
	msg := NewOutcomeMessage(ev)
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	topic := p.Topic(msg.Outcome)
	var publishErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		token := p.cli.Publish(topic, p.qos, p.retain, payload)
		token.Wait()
		publishErr = token.Error()
		if publishErr == nil {
			p.log.Infof("published %s outcome to %s", msg.Outcome, topic)
			return nil
		}
		p.log.Errorf("publish attempt %d failed: %v", attempt+1, publishErr)
		if attempt < p.maxRetries {
			time.Sleep(p.backoff * time.Duration(1<<attempt))
		}
	}
	return publishErr
}

// TransitionSource is the subscription side of the transition bus.
type TransitionSource interface {
	Subscribe() <-chan events.Transition
	Unsubscribe(<-chan events.Transition)
}

// Start subscribes to the bus and publishes outcomes until ctx is canceled
// or the bus closes. Events published after Start returns are not missed.
// The returned channel is closed when the loop exits.
func (p *Publisher) Start(ctx context.Context, bus TransitionSource) <-chan struct{} {
	done := make(chan struct{})
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if err := p.PublishOutcome(ev); err != nil {
					p.log.Errorf("publish %s: %v", ev.Outcome(), err)
				}
			}
		}
	}()
	return done
}

// Disconnect gracefully closes the MQTT connection.
func (p *Publisher) Disconnect() {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
}
