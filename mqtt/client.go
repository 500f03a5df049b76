// Package mqtt implements the request/response correlation core that sits
// on top of the printer's MQTT control channel: every outgoing Command
// carries a sequence id, and the matching incoming Message is delivered
// back to the caller that sent it rather than to a generic subscription
// callback.
package mqtt

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	json "github.com/goccy/go-json"

	"github.com/mpapierski/bambu-go/internal/tlsconn"
)

const (
	clientID  = "bblp_client"
	port      = 8883
	qos       = 0
	username  = "bblp"
	keepAlive = 60 * time.Second
)

// ErrSequenceIDNotFound names the case of an incoming reply whose sequence
// id matches no pending request. The Client does not return it: such a
// reply is logged and dropped.
var ErrSequenceIDNotFound = fmt.Errorf("mqtt: sequence id not found in inflight table")

// ErrClientStopped is delivered to every request still awaiting a reply
// when Stop is called, so callers blocked in Send never hang past the
// client's own shutdown.
var ErrClientStopped = fmt.Errorf("mqtt: client stopped")

type waiter chan waiterResult

type waiterResult struct {
	msg Message
	err error
}

// Client is a correlated request/response MQTT connection to one printer.
type Client struct {
	host       string
	accessCode string
	serial     string

	paho paho.Client

	mu       sync.Mutex
	seq      uint64
	inflight map[string]waiter
	stopped  bool
}

// New builds a Client for the printer identified by serial, reachable at
// host and authenticating with accessCode. Call Start before sending any
// command.
func New(host, accessCode, serial string) *Client {
	return &Client{
		host:       host,
		accessCode: accessCode,
		serial:     serial,
		inflight:   make(map[string]waiter),
	}
}

// Start connects to the broker and subscribes to the device's report
// topic. It returns once the initial connection has been established.
func (c *Client) Start(ctx context.Context) error {
	opts := paho.NewClientOptions().
		AddBroker(fmt.Sprintf("ssl://%s:%d", c.host, port)).
		SetClientID(clientID).
		SetUsername(username).
		SetPassword(c.accessCode).
		SetTLSConfig(tlsconn.Config(c.host)).
		SetKeepAlive(keepAlive).
		SetAutoReconnect(false).
		SetOnConnectHandler(c.onConnect).
		SetConnectionLostHandler(c.onConnectionLost).
		SetDefaultPublishHandler(c.handleMessage)

	c.paho = paho.NewClient(opts)

	token := c.paho.Connect()
	if !token.WaitTimeout(connectTimeout(ctx)) {
		return fmt.Errorf("mqtt: connect timed out")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt: connect: %w", err)
	}
	return nil
}

func connectTimeout(ctx context.Context) time.Duration {
	if dl, ok := ctx.Deadline(); ok {
		return time.Until(dl)
	}
	return 10 * time.Second
}

func (c *Client) onConnect(client paho.Client) {
	topic := fmt.Sprintf("device/%s/report", c.serial)
	token := client.Subscribe(topic, qos, nil)
	if token.Wait() && token.Error() != nil {
		slog.Error("mqtt: failed to subscribe to report topic", "topic", topic, "error", token.Error())
		return
	}
	slog.Debug("mqtt: subscribed", "topic", topic)
}

func (c *Client) onConnectionLost(_ paho.Client, err error) {
	slog.Warn("mqtt: connection lost", "error", err, "serial", c.serial)
}

func (c *Client) handleMessage(_ paho.Client, msg paho.Message) {
	payload := msg.Payload()
	reply, err := DecodeMessage(payload)
	if err != nil {
		slog.Error("mqtt: failed to decode message", "error", err, "payload", string(payload))
		return
	}

	if print, ok := AsPrint(reply); ok && print.IsUnsolicitedPush() {
		slog.Debug("mqtt: received unsolicited push_status", "serial", c.serial)
		return
	}

	c.deliver(reply.SequenceID(), waiterResult{msg: reply})
}

func (c *Client) deliver(seqID string, result waiterResult) {
	c.mu.Lock()
	w, ok := c.inflight[seqID]
	if ok {
		delete(c.inflight, seqID)
	}
	c.mu.Unlock()

	if !ok {
		slog.Debug("mqtt: reply matched no inflight request", "sequence_id", seqID)
		return
	}
	w <- result
}

// nextSequenceID returns the next value of the monotonic counter, starting
// at "0".
func (c *Client) nextSequenceID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.seq
	c.seq++
	return strconv.FormatUint(id, 10)
}

// Send publishes cmd and blocks until the reply matching cmd's sequence id
// arrives, ctx is canceled, or the client is stopped. Callers build cmd
// with one of the New* constructors, which take the sequence id as a
// parameter — use NewSequenceID to allocate one.
func (c *Client) Send(ctx context.Context, cmd Command) (Message, error) {
	seqID := cmd.SequenceID()

	w := make(waiter, 1)
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return nil, ErrClientStopped
	}
	c.inflight[seqID] = w
	c.mu.Unlock()

	data, err := json.Marshal(cmd)
	if err != nil {
		c.removeWaiter(seqID)
		return nil, fmt.Errorf("mqtt: marshaling command: %w", err)
	}

	topic := fmt.Sprintf("device/%s/request", c.serial)
	token := c.paho.Publish(topic, qos, false, data)
	if !token.WaitTimeout(connectTimeout(ctx)) {
		c.removeWaiter(seqID)
		return nil, fmt.Errorf("mqtt: publish timed out")
	}
	if err := token.Error(); err != nil {
		c.removeWaiter(seqID)
		return nil, fmt.Errorf("mqtt: publish: %w", err)
	}

	select {
	case result := <-w:
		return result.msg, result.err
	case <-ctx.Done():
		c.removeWaiter(seqID)
		return nil, ctx.Err()
	}
}

func (c *Client) removeWaiter(seqID string) {
	c.mu.Lock()
	delete(c.inflight, seqID)
	c.mu.Unlock()
}

// NewSequenceID exposes the monotonic counter to callers who build a
// Command themselves rather than through one of the typed helpers below.
func (c *Client) NewSequenceID() string { return c.nextSequenceID() }

// Stop disconnects from the broker and unblocks every request still
// waiting on a reply with ErrClientStopped, rather than leaving them
// hanging until their context expires.
func (c *Client) Stop() {
	c.mu.Lock()
	c.stopped = true
	pending := c.inflight
	c.inflight = make(map[string]waiter)
	c.mu.Unlock()

	for _, w := range pending {
		w <- waiterResult{err: ErrClientStopped}
	}

	if c.paho != nil {
		c.paho.Disconnect(250)
	}
}

// GetVersion requests the printer's firmware/hardware version report.
func (c *Client) GetVersion(ctx context.Context) (InfoReply, error) {
	msg, err := c.Send(ctx, NewGetVersion(c.nextSequenceID()))
	if err != nil {
		return InfoReply{}, err
	}
	reply, ok := AsInfo(msg)
	if !ok {
		return InfoReply{}, fmt.Errorf("mqtt: expected info reply, got %T", msg)
	}
	return reply, nil
}

// Pause pauses the active print.
func (c *Client) Pause(ctx context.Context) (PrintReply, error) {
	return c.sendPrint(ctx, NewPause(c.nextSequenceID()))
}

// Resume resumes a paused print.
func (c *Client) Resume(ctx context.Context) (PrintReply, error) {
	return c.sendPrint(ctx, NewResume(c.nextSequenceID()))
}

// StopPrint aborts the active print.
func (c *Client) StopPrint(ctx context.Context) (PrintReply, error) {
	return c.sendPrint(ctx, NewStop(c.nextSequenceID()))
}

// PrintSpeed sets the active speed profile.
func (c *Client) PrintSpeed(ctx context.Context, param string) (PrintReply, error) {
	return c.sendPrint(ctx, NewPrintSpeed(c.nextSequenceID(), param))
}

// GCodeLine sends a raw G-code line for immediate execution.
func (c *Client) GCodeLine(ctx context.Context, param string) (PrintReply, error) {
	return c.sendPrint(ctx, NewGCodeLine(c.nextSequenceID(), param))
}

// ExtrusionCalibrationGet queries extrusion calibration data for a
// filament/nozzle combination.
func (c *Client) ExtrusionCalibrationGet(ctx context.Context, filamentID, nozzleDiameter string) (PrintReply, error) {
	return c.sendPrint(ctx, NewExtrusionCalibrationGet(c.nextSequenceID(), filamentID, nozzleDiameter))
}

func (c *Client) sendPrint(ctx context.Context, cmd Command) (PrintReply, error) {
	msg, err := c.Send(ctx, cmd)
	if err != nil {
		return PrintReply{}, err
	}
	reply, ok := AsPrint(msg)
	if !ok {
		return PrintReply{}, fmt.Errorf("mqtt: expected print reply, got %T", msg)
	}
	return reply, nil
}

// PushAll requests a full status dump.
func (c *Client) PushAll(ctx context.Context) error {
	_, err := c.Send(ctx, NewPushAll(c.nextSequenceID()))
	return err
}

// StartPush begins the printer's periodic status push.
func (c *Client) StartPush(ctx context.Context) error {
	_, err := c.Send(ctx, NewStartPush(c.nextSequenceID()))
	return err
}

// SetChamberLight turns the chamber light on or off, using the printer's
// fixed 500/500/0/0 on/off/loop/interval timing.
func (c *Client) SetChamberLight(ctx context.Context, on bool) (SystemReply, error) {
	mode := LedModeOff
	if on {
		mode = LedModeOn
	}
	cmd := NewLedCtrl(c.nextSequenceID(), LedCtrl{
		LedNode:      LedNodeChamberLight,
		LedMode:      mode,
		LedOnTime:    500,
		LedOffTime:   500,
		LoopTimes:    0,
		IntervalTime: 0,
	})
	return c.sendSystem(ctx, cmd)
}

// GetAccessories queries attached accessories of the given type.
func (c *Client) GetAccessories(ctx context.Context, accessoryType AccessoryType) (SystemReply, error) {
	return c.sendSystem(ctx, NewGetAccessories(c.nextSequenceID(), accessoryType))
}

func (c *Client) sendSystem(ctx context.Context, cmd Command) (SystemReply, error) {
	msg, err := c.Send(ctx, cmd)
	if err != nil {
		return SystemReply{}, err
	}
	reply, ok := AsSystem(msg)
	if !ok {
		return SystemReply{}, fmt.Errorf("mqtt: expected system reply, got %T", msg)
	}
	return reply, nil
}
