// Package mqtt implements the flight gateway over an MQTT broker. Motion
// commands are published as JSON to per-verb command topics; poses arrive on
// retained telemetry topics, one per reference frame, and the latest sample
// is served to readers subject to a staleness bound.
package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/skyward-robotics/flightkit/internal/gateway"
)

const (
	defaultTopicPrefix = "copter"
	defaultPoseMaxAge  = 2 * time.Second
	defaultConnectWait = 10 * time.Second
)

var (
	// ErrNoPose is returned when no telemetry has been received yet for the
	// requested frame.
	ErrNoPose = errors.New("no pose received")

	// ErrStalePose is returned when the latest pose sample is older than the
	// configured staleness bound.
	ErrStalePose = errors.New("pose is stale")
)

// Config holds the broker connection and topic settings.
type Config struct {
	BrokerURL   string        `yaml:"brokerUrl"`
	ClientID    string        `yaml:"clientId"`
	TopicPrefix string        `yaml:"topicPrefix"`
	PoseMaxAge  time.Duration `yaml:"poseMaxAge"`
}

// WithLogger sets the logger for the client.
func WithLogger(logger *slog.Logger) func(c *Client) {
	return func(c *Client) {
		c.logger = logger.With(slog.String("broker", c.config.BrokerURL))
	}
}

type poseSample struct {
	pose       gateway.Pose
	receivedAt time.Time
}

// Client is an MQTT-backed flight gateway.
type Client struct {
	config Config
	client paho.Client
	logger *slog.Logger

	mu    sync.RWMutex
	poses map[gateway.Frame]poseSample
}

// New connects to the broker and subscribes to the telemetry topics for both
// reference frames. The returned client must be closed after use.
func New(config Config, options ...func(c *Client)) (*Client, error) {
	if config.BrokerURL == "" {
		return nil, errors.New("broker URL is required")
	}
	if config.TopicPrefix == "" {
		config.TopicPrefix = defaultTopicPrefix
	}
	if config.PoseMaxAge <= 0 {
		config.PoseMaxAge = defaultPoseMaxAge
	}

	c := Client{
		config: config,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // nil logger
		poses:  make(map[gateway.Frame]poseSample),
	}

	for _, option := range options {
		option(&c)
	}

	opts := paho.NewClientOptions().
		AddBroker(config.BrokerURL).
		SetClientID(config.ClientID)

	c.client = paho.NewClient(opts)
	if token := c.client.Connect(); !token.WaitTimeout(defaultConnectWait) || token.Error() != nil {
		if token.Error() != nil {
			return nil, fmt.Errorf("connecting to broker: %w", token.Error())
		}
		return nil, fmt.Errorf("connecting to broker %s: timed out", config.BrokerURL)
	}

	topic := fmt.Sprintf("%s/telemetry/+", config.TopicPrefix)
	if token := c.client.Subscribe(topic, 0, c.handleTelemetry); token.Wait() && token.Error() != nil {
		c.client.Disconnect(0)
		return nil, fmt.Errorf("subscribing to %s: %w", topic, token.Error())
	}

	c.logger.Info("connected to flight gateway", slog.String("topic", topic))
	return &c, nil
}

func (c *Client) handleTelemetry(_ paho.Client, msg paho.Message) {
	var pose gateway.Pose
	if err := json.Unmarshal(msg.Payload(), &pose); err != nil {
		c.logger.Warn(fmt.Sprintf("error parsing telemetry: %s", err.Error()), slog.String("topic", msg.Topic()))
		return
	}

	c.mu.Lock()
	c.poses[pose.Frame] = poseSample{pose: pose, receivedAt: time.Now()}
	c.mu.Unlock()
}

// Pose returns the latest telemetry sample for the frame. It fails if no
// sample has arrived or the latest one is older than the staleness bound.
func (c *Client) Pose(_ context.Context, frame gateway.Frame) (gateway.Pose, error) {
	c.mu.RLock()
	sample, ok := c.poses[frame]
	c.mu.RUnlock()

	if !ok {
		return gateway.Pose{}, fmt.Errorf("%w: frame %s", ErrNoPose, frame)
	}
	if age := time.Since(sample.receivedAt); age > c.config.PoseMaxAge {
		return gateway.Pose{}, fmt.Errorf("%w: frame %s, age %s", ErrStalePose, frame, age)
	}
	return sample.pose, nil
}

// Navigate publishes one motion command.
func (c *Client) Navigate(ctx context.Context, cmd gateway.MotionCommand) error {
	return c.publish(ctx, "cmd/navigate", cmd)
}

// Arm publishes an arm or disarm command.
func (c *Client) Arm(ctx context.Context, arm bool) error {
	return c.publish(ctx, "cmd/arm", map[string]bool{"arm": arm})
}

// SetMode publishes a flight mode change.
func (c *Client) SetMode(ctx context.Context, mode gateway.FlightMode) error {
	return c.publish(ctx, "cmd/mode", map[string]gateway.FlightMode{"mode": mode})
}

// Land publishes a landing request.
func (c *Client) Land(ctx context.Context) error {
	return c.publish(ctx, "cmd/land", struct{}{})
}

func (c *Client) publish(ctx context.Context, subtopic string, payload any) error {
	p, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling command: %w", err)
	}

	topic := fmt.Sprintf("%s/%s", c.config.TopicPrefix, subtopic)
	token := c.client.Publish(topic, 1, false, p)

	select {
	case <-token.Done():
		if err := token.Error(); err != nil {
			return fmt.Errorf("publishing to %s: %w", topic, err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close disconnects from the broker.
func (c *Client) Close() {
	c.client.Disconnect(250)
}
