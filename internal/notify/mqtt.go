package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"
	"github.com/ukgarage/garage-manager/internal/models"
)

const lowStockTopic = "garage/parts/low-stock"

// LowStockAlert is the payload published when a deduction leaves a part at
// or below its reorder threshold.
type LowStockAlert struct {
	PartNumber string    `json:"part_number"`
	Name       string    `json:"name"`
	Supplier   string    `json:"supplier"`
	Remaining  int       `json:"remaining"`
	Threshold  int       `json:"threshold"`
	Timestamp  time.Time `json:"timestamp"`
}

// MQTTAlerter publishes low-stock alerts over MQTT so procurement tooling
// can subscribe without polling the parts collection.
type MQTTAlerter struct {
	client mqtt.Client
}

// NewMQTTAlerter connects to the broker and returns a ready alerter.
func NewMQTTAlerter(brokerURL, clientID string) (*MQTTAlerter, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(brokerURL).
		SetClientID(clientID).
		SetConnectTimeout(10 * time.Second).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("mqtt connect timed out for broker %s", brokerURL)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect failed: %w", err)
	}
	return &MQTTAlerter{client: client}, nil
}

// PublishLowStock publishes an alert for a part that has hit its reorder
// threshold.
func (a *MQTTAlerter) PublishLowStock(ctx context.Context, part models.Part) error {
	alert := LowStockAlert{
		PartNumber: part.PartNumber,
		Name:       part.Name,
		Supplier:   part.Supplier,
		Remaining:  part.QuantityOnHand,
		Threshold:  part.ReorderThreshold,
		Timestamp:  time.Now(),
	}

	payload, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("failed to marshal low-stock alert: %w", err)
	}

	token := a.client.Publish(lowStockTopic, 1, false, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("mqtt publish timed out for part %s", part.PartNumber)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt publish failed: %w", err)
	}

	log.WithFields(log.Fields{
		"part_number": part.PartNumber,
		"remaining":   part.QuantityOnHand,
	}).Info("published low-stock alert")
	return nil
}

// Close disconnects from the broker.
func (a *MQTTAlerter) Close() {
	a.client.Disconnect(250)
}

// NopAlerter discards alerts. Used when no broker is configured.
type NopAlerter struct{}

// PublishLowStock drops the alert.
func (NopAlerter) PublishLowStock(ctx context.Context, part models.Part) error {
	return nil
}
