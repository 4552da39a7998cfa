package mqtt

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/dbehnke/enocean-nexus/pkg/logger"
)

// Gateway topics live under a reserved node so they can never collide with
// an equipment topic.
const (
	gatewayNode    = "_gateway"
	statusOnline   = "ONLINE"
	statusOffline  = "OFFLINE"
	commandSuffix  = "/req"
	connectTimeout = 10 * time.Second
	publishTimeout = 5 * time.Second
)

// Config holds MQTT client configuration
type Config struct {
	Enabled     bool
	Broker      string
	TopicPrefix string
	ClientID    string
	Username    string
	Password    string
	QoS         byte
	Retained    bool
	PublishRSSI bool
	PublishRaw  bool
}

// Reading is one decoded equipment state ready for publishing
type Reading struct {
	Topic    string
	Values   map[string]interface{}
	RSSI     int
	Repeated bool
	LastSeen time.Time
	Raw      []byte
}

// TeachInNotice announces a completed teach-in
type TeachInNotice struct {
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	EEP       string    `json:"eep"`
	Timestamp time.Time `json:"timestamp"`
}

// EquipmentInfo is one entry of the published equipment list
type EquipmentInfo struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	EEP     string `json:"eep"`
	Topic   string `json:"topic"`
	Learned bool   `json:"learned"`
}

// CommandHandler receives command payloads addressed to an equipment topic
type CommandHandler func(topic string, values map[string]interface{})

// LearnHandler receives learn mode changes requested over MQTT
type LearnHandler func(on bool)

// Client bridges gateway events onto an MQTT broker and feeds commands
// back. All Publish methods are no-ops when the client is disabled.
type Client struct {
	config Config
	log    *logger.Logger
	client paho.Client

	equipmentTopics []string
	onCommand       CommandHandler
	onLearn         LearnHandler
}

// New creates a new MQTT client
func New(config Config, log *logger.Logger) *Client {
	if log == nil {
		log = logger.New(logger.Config{Level: "info", Format: "text"})
	}
	return &Client{
		config: config,
		log:    log.WithComponent("mqtt"),
	}
}

// OnCommand registers the handler for equipment command payloads
func (c *Client) OnCommand(fn CommandHandler) { c.onCommand = fn }

// OnLearn registers the handler for learn mode requests
func (c *Client) OnLearn(fn LearnHandler) { c.onLearn = fn }

// Start connects to the broker. equipmentTopics lists the topics whose
// command subtopic should be subscribed. The broker holds an OFFLINE will
// on the status topic so consumers see unclean disconnects.
func (c *Client) Start(equipmentTopics []string) error {
	if !c.config.Enabled {
		c.log.Info("MQTT client disabled")
		return nil
	}
	c.equipmentTopics = equipmentTopics

	opts := paho.NewClientOptions().
		AddBroker(c.config.Broker).
		SetClientID(c.config.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetOrderMatters(false).
		SetBinaryWill(c.StatusTopic(), []byte(statusOffline), c.config.QoS, true).
		SetOnConnectHandler(c.onConnect).
		SetConnectionLostHandler(c.onConnectionLost)
	if c.config.Username != "" {
		opts.SetUsername(c.config.Username)
		opts.SetPassword(c.config.Password)
	}

	c.log.Info("Connecting to MQTT broker",
		logger.String("broker", c.config.Broker),
		logger.String("client_id", c.config.ClientID))

	c.client = paho.NewClient(opts)
	token := c.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		// Retry logic keeps trying in the background.
		c.log.Warn("MQTT broker not reachable yet, retrying in background")
		return nil
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt connect: %w", err)
	}
	return nil
}

// Stop publishes the offline status and disconnects
func (c *Client) Stop() {
	if !c.config.Enabled || c.client == nil {
		return
	}
	c.log.Info("Stopping MQTT client")
	c.publishBytes(c.StatusTopic(), []byte(statusOffline), true)
	c.client.Disconnect(250)
}

// PublishReading publishes a decoded equipment state. The values go as one
// JSON document on the equipment topic; radio metadata goes to attribute
// subtopics when enabled.
func (c *Client) PublishReading(r Reading) error {
	if !c.ready() {
		return nil
	}
	payload, err := json.Marshal(r.Values)
	if err != nil {
		return fmt.Errorf("mqtt reading payload: %w", err)
	}
	topic := c.formatTopic(r.Topic)
	if err := c.publishBytes(topic, payload, c.config.Retained); err != nil {
		return err
	}
	if c.config.PublishRSSI {
		c.publishBytes(topic+"/$rssi", []byte(fmt.Sprintf("%d", r.RSSI)), c.config.Retained)
		c.publishBytes(topic+"/$repeated", []byte(fmt.Sprintf("%t", r.Repeated)), c.config.Retained)
		c.publishBytes(topic+"/$last_seen", []byte(r.LastSeen.Format(time.RFC3339)), c.config.Retained)
	}
	if c.config.PublishRaw && len(r.Raw) > 0 {
		c.publishBytes(topic+"/$raw", []byte(strings.ToUpper(hex.EncodeToString(r.Raw))), c.config.Retained)
	}
	return nil
}

// PublishTeachIn announces a completed teach-in on the gateway node
func (c *Client) PublishTeachIn(n TeachInNotice) error {
	if !c.ready() {
		return nil
	}
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("mqtt teach-in payload: %w", err)
	}
	return c.publishBytes(c.gatewayTopic("teach-in"), payload, false)
}

// PublishEquipmentList publishes the configured equipment as a retained
// JSON document so consumers can discover topics.
func (c *Client) PublishEquipmentList(list []EquipmentInfo) error {
	if !c.ready() {
		return nil
	}
	payload, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("mqtt equipment list payload: %w", err)
	}
	return c.publishBytes(c.gatewayTopic("equipments"), payload, true)
}

// PublishLearnMode publishes the current learn mode, retained
func (c *Client) PublishLearnMode(on bool) error {
	if !c.ready() {
		return nil
	}
	return c.publishBytes(c.gatewayTopic("learn"), []byte(onOff(on)), true)
}

// StatusTopic returns the gateway availability topic
func (c *Client) StatusTopic() string {
	return c.gatewayTopic("status")
}

func (c *Client) ready() bool {
	return c.config.Enabled && c.client != nil
}

func (c *Client) onConnect(client paho.Client) {
	c.log.Info("Connected to MQTT broker")
	client.Publish(c.StatusTopic(), c.config.QoS, true, []byte(statusOnline))

	learnTopic := c.gatewayTopic("learn/set")
	if token := client.Subscribe(learnTopic, c.config.QoS, c.handleLearn); token.WaitTimeout(publishTimeout) && token.Error() != nil {
		c.log.Error("Subscribe failed", logger.String("topic", learnTopic), logger.Error(token.Error()))
	}
	for _, topic := range c.equipmentTopics {
		cmdTopic := c.formatTopic(topic) + commandSuffix
		if token := client.Subscribe(cmdTopic, c.config.QoS, c.handleCommand); token.WaitTimeout(publishTimeout) && token.Error() != nil {
			c.log.Error("Subscribe failed", logger.String("topic", cmdTopic), logger.Error(token.Error()))
		}
	}
}

func (c *Client) onConnectionLost(_ paho.Client, err error) {
	c.log.Warn("MQTT connection lost", logger.Error(err))
}

func (c *Client) handleLearn(_ paho.Client, msg paho.Message) {
	on, err := parseOnOff(string(msg.Payload()))
	if err != nil {
		c.log.Warn("Ignoring invalid learn request",
			logger.String("payload", string(msg.Payload())))
		return
	}
	c.log.Info("Learn mode requested", logger.Bool("on", on))
	if c.onLearn != nil {
		c.onLearn(on)
	}
}

func (c *Client) handleCommand(_ paho.Client, msg paho.Message) {
	topic := c.stripPrefix(strings.TrimSuffix(msg.Topic(), commandSuffix))

	var values map[string]interface{}
	if err := json.Unmarshal(msg.Payload(), &values); err != nil {
		c.log.Warn("Ignoring malformed command payload",
			logger.String("topic", msg.Topic()),
			logger.Error(err))
		return
	}
	c.log.Debug("Command received", logger.String("topic", topic))
	if c.onCommand != nil {
		c.onCommand(topic, values)
	}
}

func (c *Client) publishBytes(topic string, payload []byte, retained bool) error {
	token := c.client.Publish(topic, c.config.QoS, retained, payload)
	if token.WaitTimeout(publishTimeout) && token.Error() != nil {
		c.log.Error("Publish failed", logger.String("topic", topic), logger.Error(token.Error()))
		return token.Error()
	}
	return nil
}

// formatTopic prepends the configured prefix to a topic
func (c *Client) formatTopic(suffix string) string {
	prefix := strings.TrimSuffix(c.config.TopicPrefix, "/")
	if prefix == "" {
		return suffix
	}
	return fmt.Sprintf("%s/%s", prefix, suffix)
}

// stripPrefix undoes formatTopic on an incoming topic
func (c *Client) stripPrefix(topic string) string {
	prefix := strings.TrimSuffix(c.config.TopicPrefix, "/")
	if prefix == "" {
		return topic
	}
	return strings.TrimPrefix(topic, prefix+"/")
}

func (c *Client) gatewayTopic(suffix string) string {
	return c.formatTopic(gatewayNode + "/" + suffix)
}

func onOff(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}

func parseOnOff(s string) (bool, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ON", "1", "TRUE":
		return true, nil
	case "OFF", "0", "FALSE":
		return false, nil
	}
	return false, fmt.Errorf("invalid on/off payload %q", s)
}
