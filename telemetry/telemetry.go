// Package telemetry periodically publishes camera temperature readings to an MQTT broker.
package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/nasa-jpl/idslab/camera"
)

// DefaultInterval is used when a Reporter has no Interval
const DefaultInterval = 10 * time.Second

// Reading is one temperature sample as published
type Reading struct {
	Serial      string    `json:"serial"`
	Temperature float64   `json:"temperature"`
	Time        time.Time `json:"time"`
}

// Publisher sends a payload to a topic
type Publisher interface {
	Publish(topic string, payload []byte) error
}

// Reporter samples a thermometer and publishes the readings as JSON
type Reporter struct {
	Source   camera.Thermometer
	Pub      Publisher
	Topic    string
	Serial   string
	Interval time.Duration
	Log      *zap.Logger

	// now is swapped in tests
	now func() time.Time
}

// Sample reads the temperature once
func (r *Reporter) Sample() (Reading, error) {
	now := time.Now
	if r.now != nil {
		now = r.now
	}
	t, err := r.Source.GetTemperature()
	if err != nil {
		return Reading{}, err
	}
	return Reading{Serial: r.Serial, Temperature: t, Time: now().UTC()}, nil
}

// Report samples and publishes once
func (r *Reporter) Report() error {
	rd, err := r.Sample()
	if err != nil {
		return fmt.Errorf("reading temperature: %w", err)
	}
	b, err := json.Marshal(rd)
	if err != nil {
		return err
	}
	return r.Pub.Publish(r.Topic, b)
}

// Run reports every Interval until ctx is done.  Failed reports are logged
// and do not stop the loop.  It returns ctx.Err().
func (r *Reporter) Run(ctx context.Context) error {
	log := r.Log
	if log == nil {
		log = zap.NewNop()
	}
	interval := r.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	log.Info("telemetry started", zap.String("topic", r.Topic), zap.Duration("interval", interval))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info("telemetry stopped", zap.String("topic", r.Topic))
			return ctx.Err()
		case <-ticker.C:
			if err := r.Report(); err != nil {
				log.Warn("telemetry report failed", zap.String("topic", r.Topic), zap.Error(err))
			}
		}
	}
}

// MQTTPublisher publishes with QoS 1 over a paho client
type MQTTPublisher struct {
	Client  mqtt.Client
	Timeout time.Duration
}

// DialMQTT connects to broker, a URL such as tcp://localhost:1883
func DialMQTT(broker, clientID string, timeout time.Duration) (*MQTTPublisher, error) {
	opts := mqtt.NewClientOptions().AddBroker(broker).SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(timeout)
	c := mqtt.NewClient(opts)
	tok := c.Connect()
	if !tok.WaitTimeout(timeout) {
		return nil, fmt.Errorf("connecting to %s: timed out after %s", broker, timeout)
	}
	if err := tok.Error(); err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", broker, err)
	}
	return &MQTTPublisher{Client: c, Timeout: timeout}, nil
}

// Publish sends payload and waits for the broker to acknowledge it
func (p *MQTTPublisher) Publish(topic string, payload []byte) error {
	tok := p.Client.Publish(topic, 1, false, payload)
	if !tok.WaitTimeout(p.Timeout) {
		return errors.New("publish to " + topic + " timed out")
	}
	return tok.Error()
}

// Close disconnects, allowing 250 ms for in-flight messages
func (p *MQTTPublisher) Close() {
	p.Client.Disconnect(250)
}
