package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/jgoulah/hydromon/internal/config"
	"github.com/jgoulah/hydromon/internal/notify"
	"github.com/jgoulah/hydromon/pkg/models"
)

// Publisher pushes the daily summary to an MQTT broker
type Publisher struct {
	client      mqtt.Client
	topicPrefix string
	rate        float64
	log         *zap.SugaredLogger
}

// New connects to the configured broker
func New(mqttCfg config.MQTTConfig, topicPrefix string, rate float64, log *zap.SugaredLogger) (*Publisher, error) {
	if mqttCfg.Broker == "" {
		return nil, fmt.Errorf("MQTT broker address is required when enabled")
	}

	// Configure MQTT client options
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s", mqttCfg.Broker))
	opts.SetClientID("hydromon-" + uuid.NewString())
	opts.SetConnectTimeout(10 * time.Second)

	if mqttCfg.Username != "" {
		opts.SetUsername(mqttCfg.Username)
	}
	if mqttCfg.Password != "" {
		opts.SetPassword(mqttCfg.Password)
	}

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connecting to MQTT broker: %w", token.Error())
	}

	log.Debugw("connected to MQTT broker", "broker", mqttCfg.Broker)

	return &Publisher{
		client:      client,
		topicPrefix: topicPrefix,
		rate:        rate,
		log:         log,
	}, nil
}

// Summary is the retained JSON document published for each run
type Summary struct {
	WindowStart string           `json:"window_start"`
	WindowEnd   string           `json:"window_end"`
	Intervals   int              `json:"intervals"`
	TotalKWh    float64          `json:"total_kwh"`
	AverageKWh  float64          `json:"average_kwh"`
	PeakKWh     float64          `json:"peak_kwh"`
	PeakStart   string           `json:"peak_start"`
	PeakEnd     string           `json:"peak_end"`
	Cost        *decimal.Decimal `json:"cost,omitempty"`
}

// NewSummary builds the payload for a report. Cost is only set when a rate is configured.
func NewSummary(report models.Report, rate float64) Summary {
	st := report.Stats
	s := Summary{
		WindowStart: report.Window.Start.Format(time.RFC3339),
		WindowEnd:   report.Window.End.Format(time.RFC3339),
		Intervals:   st.Count,
		TotalKWh:    st.Total,
		AverageKWh:  st.Average,
		PeakKWh:     st.Peak.Value,
		PeakStart:   st.Peak.Start.Format(time.RFC3339),
		PeakEnd:     st.Peak.End.Format(time.RFC3339),
	}

	if rate > 0 {
		cost := decimal.NewFromFloat(st.Total).Mul(decimal.NewFromFloat(rate)).Round(2)
		s.Cost = &cost
	}

	return s
}

// Topic returns the topic the summary is published to
func (p *Publisher) Topic() string {
	return p.topicPrefix + "/daily"
}

// Name identifies the notifier in logs and errors
func (p *Publisher) Name() string {
	return "mqtt"
}

// Notify publishes the report summary as a retained message
func (p *Publisher) Notify(ctx context.Context, report models.Report) error {
	body, err := json.Marshal(NewSummary(report, p.rate))
	if err != nil {
		return &notify.Error{Notifier: p.Name(), Err: fmt.Errorf("encoding payload: %w", err)}
	}

	token := p.client.Publish(p.Topic(), 1, true, body)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return &notify.Error{Notifier: p.Name(), Err: ctx.Err()}
	}
	if err := token.Error(); err != nil {
		return &notify.Error{Notifier: p.Name(), Err: fmt.Errorf("publishing to %s: %w", p.Topic(), err)}
	}

	p.log.Infow("summary published", "topic", p.Topic(), "bytes", len(body))
	return nil
}

// Close disconnects from the MQTT broker
func (p *Publisher) Close() {
	if p.client != nil && p.client.IsConnected() {
		p.client.Disconnect(250)
	}
}
