package sink

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"

	"reader.raspi/reader_r/adapter"
)

const mqtt_ack_timeout = 2 * time.Second

type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// MQTT publishes each event to Topic with QoS 0. Acks are checked off the
// calling goroutine.
type MQTT struct {
	client publisher
	topic  string
	st     stamper
	close  func()
}

// DialMQTT connects to broker. The status topic carries online/offline with
// the offline message registered as the will.
func DialMQTT(broker, clientID, topic string) (*MQTT, error) {
	status := topic + "/status"
	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(5 * time.Second)
	opts.SetWill(status, "offline", 0, true)
	opts.SetOnConnectHandler(func(c mqtt.Client) {
		log.WithField("broker", broker).Info("mqtt connected")
		c.Publish(status, 0, true, "online")
	})
	opts.SetConnectionLostHandler(func(c mqtt.Client, err error) {
		log.WithError(err).Warn("mqtt connection lost")
	})

	c := mqtt.NewClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("sink: mqtt %s: %w", broker, token.Error())
	}
	m := newMQTT(c, topic)
	m.close = func() {
		c.Publish(status, 0, true, "offline").WaitTimeout(time.Second)
		c.Disconnect(250)
	}
	return m, nil
}

func newMQTT(c publisher, topic string) *MQTT {
	return &MQTT{
		client: c,
		topic:  topic,
		st:     stamper{now: time.Now},
		close:  func() {},
	}
}

func (m *MQTT) OnEvent(ev adapter.UnifiedInputEvent) {
	b, err := json.Marshal(m.st.stamp(ev))
	if err != nil {
		log.WithError(err).Error("mqtt payload")
		return
	}
	tok := m.client.Publish(m.topic, 0, false, b)
	go func() {
		if !tok.WaitTimeout(mqtt_ack_timeout) {
			log.WithField("event", ev).Warn("mqtt publish timed out")
			return
		}
		if err := tok.Error(); err != nil {
			log.WithError(err).WithField("event", ev).Warn("mqtt publish")
		}
	}()
}

func (m *MQTT) Close() {
	m.close()
}
