package mqtt

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/sweeney/basin-controller/internal/logic"
)

// BufferSize is how many messages are kept while the broker is unreachable.
const BufferSize = 256

const publishTimeout = 5 * time.Second

var errOffline = errors.New("mqtt: not connected, message buffered")

// RealPublisher publishes to an actual MQTT broker. Messages published while
// offline are buffered and replayed in order on reconnect.
type RealPublisher struct {
	client paho.Client
	now    func() time.Time

	mu        sync.Mutex
	buffer    *ringBuffer
	connected bool
	connects  int
}

// NewRealPublisher creates a publisher for broker. It connects in the
// background and keeps retrying, so it never blocks startup.
func NewRealPublisher(broker, clientID string) *RealPublisher {
	p := &RealPublisher{
		now:    time.Now,
		buffer: newRingBuffer(BufferSize),
	}

	will, _ := FormatSystemPayload(SystemEvent{
		Timestamp: time.Now(),
		Event:     "OFFLINE",
		Reason:    "LWT",
	})

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5*time.Second).
		SetMaxReconnectInterval(time.Minute).
		SetBinaryWill(TopicSystem, will, 1, true).
		SetOnConnectHandler(p.onConnect).
		SetConnectionLostHandler(p.onConnectionLost)

	p.client = paho.NewClient(opts)
	p.client.Connect()
	return p
}

// onConnect replays the buffer before marking the publisher connected, so
// live messages never overtake buffered ones.
func (p *RealPublisher) onConnect(c paho.Client) {
	replayed, lost := 0, 0
	for {
		p.mu.Lock()
		pending, dropped := p.buffer.drain()
		lost += dropped
		if len(pending) == 0 {
			p.connected = true
			p.connects++
			reconnect := p.connects > 1
			p.mu.Unlock()

			log.Printf("mqtt: connected, replayed %d buffered messages (%d dropped)", replayed, lost)
			if reconnect {
				p.publishReconnected()
			}
			return
		}
		p.mu.Unlock()

		for i, m := range pending {
			if err := p.send(m); err != nil {
				log.Printf("mqtt: replay failed: %v", err)
				p.requeue(pending[i:])
				return
			}
			replayed++
		}
	}
}

func (p *RealPublisher) publishReconnected() {
	payload, err := FormatSystemPayload(SystemEvent{Timestamp: p.now(), Event: "RECONNECTED"})
	if err != nil {
		return
	}
	if err := p.send(bufferedMsg{topic: TopicSystem, payload: payload, qos: 1}); err != nil {
		log.Printf("mqtt: reconnected event failed: %v", err)
	}
}

func (p *RealPublisher) onConnectionLost(c paho.Client, err error) {
	p.mu.Lock()
	p.connected = false
	p.mu.Unlock()
	log.Printf("mqtt: connection lost: %v", err)
}

func (p *RealPublisher) requeue(msgs []bufferedMsg) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, m := range msgs {
		p.buffer.push(m)
	}
}

func (p *RealPublisher) send(m bufferedMsg) error {
	token := p.client.Publish(m.topic, m.qos, m.retained, m.payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish %s: timeout", m.topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", m.topic, err)
	}
	return nil
}

// publish sends m now if connected, buffering it otherwise or on failure.
func (p *RealPublisher) publish(m bufferedMsg) error {
	p.mu.Lock()
	if !p.connected {
		p.buffer.push(m)
		p.mu.Unlock()
		return errOffline
	}
	p.mu.Unlock()

	if err := p.send(m); err != nil {
		p.requeue([]bufferedMsg{m})
		return err
	}
	return nil
}

// Publish sends a cycle or mode event to the broker.
func (p *RealPublisher) Publish(event logic.Event) error {
	payload, err := FormatPayload(event)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}
	// QoS 1 so cycle starts and ends survive a flaky link.
	return p.publish(bufferedMsg{topic: Topic, payload: payload, qos: 1})
}

// PublishSystem sends a system lifecycle event to the broker.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	return p.publish(bufferedMsg{topic: TopicSystem, payload: payload, qos: 1, retained: event.Retained})
}

// IsConnected reports whether the broker connection is up.
func (p *RealPublisher) IsConnected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connected
}

// Buffered returns how many messages are waiting for the broker.
func (p *RealPublisher) Buffered() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.buffer.len()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // 1 second quiesce
	return nil
}
