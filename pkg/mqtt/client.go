// Package mqtt 提供 MQTT 客户端封装，用于发布预订事件
package mqtt

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dumeirei/hotel-booking-core/internal/common/config"
)

// ErrNotConnected 未连接到 Broker
var ErrNotConnected = errors.New("mqtt: not connected")

// defaultTimeout 连接与发布的默认等待时间
const defaultTimeout = 10 * time.Second

// Client MQTT 客户端
type Client struct {
	cfg     *config.MQTTConfig
	client  mqtt.Client
	logger  *zap.Logger
	timeout time.Duration
}

// NewClient 按配置创建客户端，需调用 Connect 建立连接
func NewClient(cfg *config.MQTTConfig, logger *zap.Logger) *Client {
	c := newClient(cfg, nil, logger)
	c.client = mqtt.NewClient(c.options())
	return c
}

func newClient(cfg *config.MQTTConfig, client mqtt.Client, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := time.Duration(cfg.ConnectTimeout) * time.Second
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		cfg:     cfg,
		client:  client,
		logger:  logger.Named("mqtt"),
		timeout: timeout,
	}
}

func (c *Client) options() *mqtt.ClientOptions {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(c.cfg.Broker)
	// 多实例部署时客户端 ID 不能重复
	opts.SetClientID(c.cfg.ClientIDPrefix + uuid.NewString()[:8])
	opts.SetUsername(c.cfg.Username)
	opts.SetPassword(c.cfg.Password)
	opts.SetCleanSession(true)
	opts.SetKeepAlive(time.Duration(c.cfg.KeepAlive) * time.Second)
	opts.SetAutoReconnect(c.cfg.AutoReconnect)
	opts.SetConnectTimeout(c.timeout)
	opts.SetOnConnectHandler(func(mqtt.Client) {
		c.logger.Info("已连接 MQTT Broker", zap.String("broker", c.cfg.Broker))
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		c.logger.Warn("MQTT 连接断开", zap.Error(err))
	})
	opts.SetReconnectingHandler(func(mqtt.Client, *mqtt.ClientOptions) {
		c.logger.Info("MQTT 重连中")
	})
	return opts
}

// Connect 连接 Broker
func (c *Client) Connect() error {
	token := c.client.Connect()
	if !token.WaitTimeout(c.timeout) {
		return fmt.Errorf("mqtt connect %s: timeout after %s", c.cfg.Broker, c.timeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt connect %s: %w", c.cfg.Broker, err)
	}
	return nil
}

// Disconnect 断开连接，等待未完成的发送最多 250ms
func (c *Client) Disconnect() {
	if c.client.IsConnected() {
		c.client.Disconnect(250)
		c.logger.Info("已断开 MQTT Broker")
	}
}

// IsConnected 是否已连接
func (c *Client) IsConnected() bool {
	return c.client.IsConnected()
}

// Publish 发布消息，非 []byte/string 载荷按 JSON 编码
func (c *Client) Publish(topic string, payload interface{}) error {
	if !c.client.IsConnected() {
		return ErrNotConnected
	}

	data, err := encode(payload)
	if err != nil {
		return err
	}

	token := c.client.Publish(topic, c.cfg.QoS, c.cfg.Retained, data)
	if !token.WaitTimeout(c.timeout) {
		return fmt.Errorf("mqtt publish %s: timeout", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt publish %s: %w", topic, err)
	}
	return nil
}

func encode(payload interface{}) ([]byte, error) {
	switch v := payload.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("mqtt marshal payload: %w", err)
		}
		return data, nil
	}
}
