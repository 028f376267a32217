package floorplan

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Publisher pushes pipeline results to MQTT so dashboards can track
// extraction runs. Publishing is advisory only; pipeline results never
// depend on broker availability.
type Publisher struct {
	client mqtt.Client
	prefix string
	qos    byte
	retain bool
}

// ConnectMQTT connects to the broker named in the configuration.
func ConnectMQTT(cfg *MQTTConfig) (mqtt.Client, error) {
	if cfg == nil || cfg.Broker == "" {
		return nil, fmt.Errorf("no MQTT broker configured")
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)

	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "floorscan"
	}
	opts.SetClientID(clientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(10 * time.Second)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connecting to MQTT broker %s: %w", cfg.Broker, token.Error())
	}
	log.Printf("Connected to MQTT broker %s as %s", cfg.Broker, clientID)
	return client, nil
}

// NewPublisher creates a result publisher. A nil client disables publishing;
// every Publish method then becomes a no-op.
func NewPublisher(client mqtt.Client, cfg *MQTTConfig) *Publisher {
	prefix := "floorscan"
	if cfg != nil && cfg.PublishPrefix != "" {
		prefix = cfg.PublishPrefix
	}
	return &Publisher{
		client: client,
		prefix: prefix,
		qos:    0,
		retain: true,
	}
}

// SetQoS sets the publish Quality of Service level (0, 1, or 2).
func (p *Publisher) SetQoS(qos byte) {
	if qos <= 2 {
		p.qos = qos
	}
}

// SetRetain controls whether the broker retains published messages.
func (p *Publisher) SetRetain(retain bool) {
	p.retain = retain
}

// PublishStage announces a pipeline stage transition. Stage messages are not
// retained; only the latest results are.
func (p *Publisher) PublishStage(stage string) {
	if p == nil || p.client == nil || !p.client.IsConnected() {
		return
	}
	payload, _ := json.Marshal(map[string]interface{}{
		"stage":     stage,
		"timestamp": time.Now().Unix(),
	})
	token := p.client.Publish(p.prefix+"/stage", p.qos, false, payload)
	if token.WaitTimeout(2*time.Second) && token.Error() != nil {
		log.Printf("Error publishing stage %q: %v", stage, token.Error())
	}
}

// PublishFloorPlan publishes the extracted polygon as a GeoJSON feature.
func (p *Publisher) PublishFloorPlan(ring orb.Ring) error {
	if p == nil || p.client == nil {
		return nil
	}
	if !p.client.IsConnected() {
		return fmt.Errorf("MQTT client not connected")
	}

	feature := geojson.NewFeature(orb.Polygon{CloseRing(ring)})
	feature.Properties["area"] = Area(ring)
	feature.Properties["perimeter"] = Perimeter(ring)
	feature.Properties["timestamp"] = time.Now().Unix()

	payload, err := feature.MarshalJSON()
	if err != nil {
		return fmt.Errorf("marshaling floor plan: %w", err)
	}

	topic := p.prefix + "/floorplan"
	token := p.client.Publish(topic, p.qos, p.retain, payload)
	if token.WaitTimeout(2*time.Second) && token.Error() != nil {
		return fmt.Errorf("publishing to %s: %w", topic, token.Error())
	}
	log.Printf("Published floor plan: area=%.2f m2", Area(ring))
	return nil
}

// PublishComparison publishes summary comparison metrics.
func (p *Publisher) PublishComparison(summary ComparisonSummary) error {
	if p == nil || p.client == nil {
		return nil
	}
	if !p.client.IsConnected() {
		return fmt.Errorf("MQTT client not connected")
	}

	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshaling comparison: %w", err)
	}

	topic := p.prefix + "/comparison"
	token := p.client.Publish(topic, p.qos, p.retain, payload)
	if token.WaitTimeout(2*time.Second) && token.Error() != nil {
		return fmt.Errorf("publishing to %s: %w", topic, token.Error())
	}
	log.Printf("Published comparison: similarity=%.1f", summary.SimilarityScore)
	return nil
}
