package mqtt

import (
	stderrors "errors"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dumeirei/hotel-booking-core/internal/common/config"
)

// fakeToken 立即完成的 token
type fakeToken struct {
	err     error
	pending bool
}

func (t *fakeToken) Wait() bool                     { return !t.pending }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return !t.pending }
func (t *fakeToken) Error() error                   { return t.err }
func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	if !t.pending {
		close(ch)
	}
	return ch
}

type published struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

// fakeClient 只实现发布相关的方法
type fakeClient struct {
	mqtt.Client
	connected  bool
	connectErr error
	publishErr error
	pending    bool
	messages   []published
}

func (f *fakeClient) IsConnected() bool { return f.connected }

func (f *fakeClient) Connect() mqtt.Token {
	if f.connectErr == nil {
		f.connected = true
	}
	return &fakeToken{err: f.connectErr}
}

func (f *fakeClient) Disconnect(uint) { f.connected = false }

func (f *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	f.messages = append(f.messages, published{topic: topic, qos: qos, retained: retained, payload: payload.([]byte)})
	return &fakeToken{err: f.publishErr, pending: f.pending}
}

func newTestClient(fake *fakeClient) *Client {
	return newClient(&config.MQTTConfig{Broker: "tcp://broker:1883", QoS: 1, Retained: true, ConnectTimeout: 1}, fake, nil)
}

func TestClient_ConnectAndPublishJSON(t *testing.T) {
	fake := &fakeClient{}
	c := newTestClient(fake)

	assert.ErrorIs(t, c.Publish("hotel/reservations/created", "x"), ErrNotConnected)

	require.NoError(t, c.Connect())
	assert.True(t, c.IsConnected())

	require.NoError(t, c.Publish("hotel/reservations/created", map[string]interface{}{"reservation_id": 7}))
	require.Len(t, fake.messages, 1)
	msg := fake.messages[0]
	assert.Equal(t, "hotel/reservations/created", msg.topic)
	assert.Equal(t, byte(1), msg.qos)
	assert.True(t, msg.retained)
	assert.JSONEq(t, `{"reservation_id":7}`, string(msg.payload))

	require.NoError(t, c.Publish("raw", []byte("bytes")))
	require.NoError(t, c.Publish("text", "plain"))
	assert.Equal(t, "bytes", string(fake.messages[1].payload))
	assert.Equal(t, "plain", string(fake.messages[2].payload))

	c.Disconnect()
	assert.False(t, c.IsConnected())
}

func TestClient_Errors(t *testing.T) {
	fake := &fakeClient{connectErr: stderrors.New("refused")}
	c := newTestClient(fake)
	err := c.Connect()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tcp://broker:1883")

	fake = &fakeClient{connected: true, publishErr: stderrors.New("broken pipe")}
	c = newTestClient(fake)
	assert.ErrorContains(t, c.Publish("t", "x"), "broken pipe")

	fake = &fakeClient{connected: true, pending: true}
	c = newTestClient(fake)
	assert.ErrorContains(t, c.Publish("t", "x"), "timeout")

	fake = &fakeClient{connected: true}
	c = newTestClient(fake)
	assert.Error(t, c.Publish("t", func() {}))
	assert.Empty(t, fake.messages)
}

func TestNewClient_Options(t *testing.T) {
	c := NewClient(&config.MQTTConfig{Broker: "tcp://localhost:1883", ClientIDPrefix: "hotel-", KeepAlive: 30}, nil)
	opts := c.client.OptionsReader()
	assert.Equal(t, "tcp://localhost:1883", opts.Servers()[0].String())
	assert.Regexp(t, `^hotel-[0-9a-f]{8}$`, opts.ClientID())
	assert.Equal(t, 30*time.Second, opts.KeepAlive())
	assert.Equal(t, defaultTimeout, opts.ConnectTimeout())
	assert.False(t, c.IsConnected())
}
