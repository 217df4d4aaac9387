// Package mqtt keeps a session with the companion's MQTT broker: it
// publishes the watch's current configuration and applies configuration
// messages the companion sends.
package mqtt

import (
	"errors"
	"io"
	"log/slog"
	"net/netip"
	"runtime"
	"strconv"
	"time"

	"github.com/harveysanders/picowatch/textwatch/configsync"
	"github.com/soypat/lneto/tcp"
	"github.com/soypat/lneto/x/xnet"
	mqtt "github.com/soypat/natiu-mqtt"
)

// maxPayload bounds a config message.
const maxPayload = 128

// Notifier receives what the session learns. Its methods are called from
// the session goroutine.
type Notifier interface {
	ConfigReceived(configsync.Update)
	LinkChanged(connected bool)
	// Invert returns the current invert flag for the state message.
	Invert() uint8
}

// Client is the session configuration.
type Client struct {
	ID                string // MQTT client id, also the device id in topics
	Timeout           time.Duration
	TCPBufSize        int
	Logger            *slog.Logger
	HeartbeatInterval time.Duration
	Username          string // optional
	Password          string // optional, requires Username
}

// Run connects to the broker at addr ("host:port"), subscribes to the
// config topic and serves the session, reconnecting forever. It only
// returns on configuration errors.
func (c *Client) Run(stack *xnet.StackAsync, addr string, n Notifier) error {
	const pollTime = 5 * time.Millisecond
	if c.Logger == nil {
		c.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	host, portStr, err := splitHostPort(addr)
	if err != nil {
		return errors.New("parsing host:port from " + addr + ": " + err.Error())
	}
	port := parsePort(portStr)
	if port == 0 {
		return errors.New("invalid port in " + addr)
	}
	heartbeatInterval := c.HeartbeatInterval
	if heartbeatInterval <= 0 {
		heartbeatInterval = time.Second
	}

	rstack := stack.StackRetrying(pollTime)

	var brokerAddr netip.Addr
	if parsed, err := netip.ParseAddr(host); err == nil {
		brokerAddr = parsed
	} else {
		c.Logger.Info("mqtt:resolving", slog.String("host", host))
		addrs, err := rstack.DoLookupIP(host, 5*time.Second, 3)
		if err != nil {
			return errors.New("dns lookup for " + host + ": " + err.Error())
		}
		if len(addrs) == 0 {
			return errors.New("dns lookup for " + host + ": no addresses returned")
		}
		brokerAddr = addrs[0]
	}
	c.Logger.Info("mqtt:broker", slog.String("addr", brokerAddr.String()), slog.Uint64("port", uint64(port)))

	configTopic := configsync.ConfigTopic(c.ID)
	payload := make([]byte, maxPayload)
	cfg := mqtt.ClientConfig{
		Decoder: mqtt.DecoderNoAlloc{UserBuffer: make([]byte, 1024)},
		OnPub: func(_ mqtt.Header, varPub mqtt.VariablesPublish, r io.Reader) error {
			if string(varPub.TopicName) != configTopic {
				c.Logger.Warn("mqtt:unexpected-topic", slog.String("topic", string(varPub.TopicName)))
				return nil
			}
			size, err := readPayload(r, payload)
			if err != nil {
				return err
			}
			u, err := configsync.Decode(payload[:size])
			if err != nil {
				c.Logger.Warn("mqtt:bad-config", slog.String("err", err.Error()))
				return nil
			}
			n.ConfigReceived(u)
			return nil
		},
	}
	var varconn mqtt.VariablesConnect
	varconn.SetDefaultMQTT([]byte(c.ID))
	if c.Username != "" {
		varconn.Username = []byte(c.Username)
		if c.Password != "" {
			varconn.Password = []byte(c.Password)
		}
	}
	client := mqtt.NewClient(cfg)

	var conn tcp.Conn
	err = conn.Configure(tcp.ConnConfig{
		RxBuf:             make([]byte, c.TCPBufSize),
		TxBuf:             make([]byte, c.TCPBufSize),
		TxPacketQueueSize: 3,
	})
	if err != nil {
		return errors.New("tcp configure:" + err.Error())
	}

	closeConn := func(reason string) {
		c.Logger.Error("mqtt:closing", slog.String("reason", reason))
		conn.Close()
		for i := 0; i < 50 && !conn.State().IsClosed(); i++ {
			time.Sleep(100 * time.Millisecond)
		}
		conn.Abort()
	}

	serverAddr := netip.AddrPortFrom(brokerAddr, port)
	for {
		localPort := uint16(stack.Prand32()>>17) + 1024
		err = rstack.DoDialTCP(&conn, localPort, serverAddr, 10*time.Second, 3)
		if err != nil {
			closeConn("dial failed: " + err.Error())
			time.Sleep(2 * time.Second)
			continue
		}

		conn.SetDeadline(time.Now().Add(c.Timeout))
		if err = client.StartConnect(&conn, &varconn); err != nil {
			closeConn("connect failed: " + err.Error())
			continue
		}
		for retries := 50; retries > 0 && !client.IsConnected(); retries-- {
			time.Sleep(100 * time.Millisecond)
			if err = client.HandleNext(); err != nil {
				c.Logger.Error("mqtt:handle-next", slog.String("err", err.Error()))
			}
		}
		if !client.IsConnected() {
			closeConn("connect timed out")
			continue
		}

		if err = c.subscribe(client, &conn, configTopic); err != nil {
			closeConn("subscribe failed: " + err.Error())
			continue
		}
		if err = c.publishState(client, &conn, n.Invert(), stack.Prand32()); err != nil {
			c.Logger.Error("mqtt:publish-state", slog.String("err", err.Error()))
		}
		n.LinkChanged(true)

		c.serve(client, &conn, heartbeatInterval)

		c.Logger.Error("mqtt:disconnected", slog.Any("reason", client.Err()))
		n.LinkChanged(false)
		closeConn("disconnected")
		runtime.Gosched()
	}
}

// serve reads broker traffic on every heartbeat until the session drops,
// pinging every pingEvery heartbeats so the broker keeps it alive.
func (c *Client) serve(client *mqtt.Client, conn *tcp.Conn, heartbeatInterval time.Duration) {
	const pingEvery = 10
	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()
	beats := 0
	for client.IsConnected() {
		select {
		case <-heartbeat.C:
			beats++
			conn.SetDeadline(time.Now().Add(c.Timeout))
			if beats%pingEvery == 0 {
				if err := client.StartPing(); err != nil {
					c.Logger.Error("mqtt:ping", slog.String("err", err.Error()))
					continue
				}
			}
			if err := client.HandleNext(); err != nil {
				c.Logger.Debug("mqtt:handle-next", slog.String("err", err.Error()))
			}
		default:
			// TinyGo runs every goroutine on one core; let the stack and
			// the event loop run.
			runtime.Gosched()
		}
	}
}

func (c *Client) subscribe(client *mqtt.Client, conn *tcp.Conn, topic string) error {
	conn.SetDeadline(time.Now().Add(c.Timeout))
	err := client.StartSubscribe(mqtt.VariablesSubscribe{
		PacketIdentifier: 0xbeef,
		TopicFilters: []mqtt.SubscribeRequest{
			{TopicFilter: []byte(topic), QoS: mqtt.QoS0},
		},
	})
	if err != nil {
		return err
	}
	// Wait for the SUBACK.
	if err = client.HandleNext(); err != nil {
		return err
	}
	c.Logger.Info("mqtt:subscribed", slog.String("topic", topic))
	return nil
}

func (c *Client) publishState(client *mqtt.Client, conn *tcp.Conn, invert uint8, id uint32) error {
	payload, err := configsync.Encode(invert)
	if err != nil {
		return err
	}
	flags, err := mqtt.NewPublishFlags(mqtt.QoS0, false, true)
	if err != nil {
		return err
	}
	conn.SetDeadline(time.Now().Add(c.Timeout))
	return client.PublishPayload(flags, mqtt.VariablesPublish{
		TopicName:        []byte(configsync.StateTopic(c.ID)),
		PacketIdentifier: uint16(id),
	}, payload)
}

// readPayload reads the rest of a publish into buf. Payloads longer than buf
// are drained and rejected.
func readPayload(r io.Reader, buf []byte) (int, error) {
	n, err := io.ReadFull(r, buf)
	switch err {
	case io.EOF, io.ErrUnexpectedEOF:
		return n, nil
	case nil:
		var one [1]byte
		if m, _ := r.Read(one[:]); m > 0 {
			_, _ = io.Copy(io.Discard, r)
			return 0, errors.New("payload exceeds " + strconv.Itoa(len(buf)) + " bytes")
		}
		return n, nil
	}
	return 0, err
}

// splitHostPort splits "host:port" at the last colon.
func splitHostPort(addr string) (host, port string, err error) {
	colonIdx := -1
	for i := len(addr) - 1; i >= 0; i-- {
		if addr[i] == ':' {
			colonIdx = i
			break
		}
	}
	if colonIdx == -1 {
		return "", "", errors.New("missing port in address")
	}
	host = addr[:colonIdx]
	port = addr[colonIdx+1:]
	if host == "" {
		return "", "", errors.New("empty host")
	}
	if port == "" {
		return "", "", errors.New("empty port")
	}
	return host, port, nil
}

// parsePort converts a decimal port; 0 means invalid.
func parsePort(s string) uint16 {
	var port uint32
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0
		}
		port = port*10 + uint32(s[i]-'0')
		if port > 0xffff {
			return 0
		}
	}
	return uint16(port)
}
