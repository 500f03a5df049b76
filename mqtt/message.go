package mqtt

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// Message is one reply published on device/{serial}/report. Exactly one of
// Print, Info or System is populated in the wire form this decodes from.
type Message interface {
	SequenceID() string
	isMessage()
}

// PrintReply is a "print" status report. command carries "push_status" for
// the printer's unsolicited periodic status broadcast; any other value is
// a direct reply to a command this client sent.
type PrintReply struct {
	SequenceIDField string   `json:"sequence_id"`
	Command         string   `json:"command"`
	Msg             uint64   `json:"msg"`
	BedTemper       *float64 `json:"bed_temper,omitempty"`
	NozzleTemper    *float64 `json:"nozzle_temper,omitempty"`
}

func (p PrintReply) SequenceID() string { return p.SequenceIDField }
func (PrintReply) isMessage()           {}

// IsUnsolicitedPush reports whether this reply is the printer's own
// periodic broadcast rather than a direct reply to a request this client
// made; callers route it by logging it, not by inflight sequence id.
func (p PrintReply) IsUnsolicitedPush() bool { return p.Command == "push_status" }

// ModuleInfo describes one firmware/hardware component in an InfoReply.
type ModuleInfo struct {
	Name        string `json:"name"`
	ProjectName string `json:"project_name"`
	SwVer       string `json:"sw_ver"`
	HwVer       string `json:"hw_ver"`
	Serial      string `json:"sn"`
	Flag        uint8  `json:"flag"`
	LoaderVer   string `json:"loader_ver,omitempty"`
	OtaVer      string `json:"ota_ver,omitempty"`
}

// InfoReply is the reply to an InfoCommand, most notably GetVersion.
type InfoReply struct {
	Command         string       `json:"command"`
	SequenceIDField string       `json:"sequence_id"`
	Module          []ModuleInfo `json:"module"`
	Result          string       `json:"result,omitempty"`
	Reason          string       `json:"reason,omitempty"`
}

func (i InfoReply) SequenceID() string { return i.SequenceIDField }
func (InfoReply) isMessage()           {}

// SystemReply is the reply to a "system" command (LedCtrlCommand or
// GetAccessoriesCommand).
type SystemReply struct {
	SequenceIDField string  `json:"sequence_id"`
	Command         string  `json:"command"`
	LedNode         LedNode `json:"led_node,omitempty"`
	LedMode         LedMode `json:"led_mode,omitempty"`
	LedOnTime       uint32  `json:"led_on_time,omitempty"`
	LedOffTime      uint32  `json:"led_off_time,omitempty"`
	LoopTimes       uint32  `json:"loop_times,omitempty"`
	IntervalTime    uint32  `json:"interval_time,omitempty"`
	Reason          string  `json:"reason,omitempty"`
	Result          string  `json:"result,omitempty"`
}

func (s SystemReply) SequenceID() string { return s.SequenceIDField }
func (SystemReply) isMessage()           {}

// ErrUnknownMessage is returned when a payload matches none of the known
// top-level reply keys.
var ErrUnknownMessage = fmt.Errorf("mqtt: payload matched no known message type")

type messageEnvelope struct {
	Print  *PrintReply  `json:"print"`
	Info   *InfoReply   `json:"info"`
	System *SystemReply `json:"system"`
}

// DecodeMessage parses one report-topic payload into its concrete Message
// type, dispatching on which top-level key is present.
func DecodeMessage(payload []byte) (Message, error) {
	var env messageEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, fmt.Errorf("mqtt: decoding message: %w", err)
	}
	switch {
	case env.Print != nil:
		return *env.Print, nil
	case env.Info != nil:
		return *env.Info, nil
	case env.System != nil:
		return *env.System, nil
	default:
		return nil, ErrUnknownMessage
	}
}

// AsPrint downcasts a Message to PrintReply.
func AsPrint(m Message) (PrintReply, bool) {
	p, ok := m.(PrintReply)
	return p, ok
}

// AsInfo downcasts a Message to InfoReply.
func AsInfo(m Message) (InfoReply, bool) {
	i, ok := m.(InfoReply)
	return i, ok
}

// AsSystem downcasts a Message to SystemReply.
func AsSystem(m Message) (SystemReply, bool) {
	s, ok := m.(SystemReply)
	return s, ok
}
