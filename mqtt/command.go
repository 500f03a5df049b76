package mqtt

// Command is one request published to device/{serial}/request. Each
// concrete type marshals to exactly one JSON object carrying a single
// top-level key (info, print, pushing or system) whose value embeds the
// sequence id alongside the command-specific fields.
type Command interface {
	SequenceID() string
}

// InfoCommand wraps a request to the "info" subsystem.
type InfoCommand struct {
	Info InfoPayload `json:"info"`
}

func (c InfoCommand) SequenceID() string { return c.Info.SequenceID }

// InfoPayload is the flattened body of an InfoCommand.
type InfoPayload struct {
	SequenceID string `json:"sequence_id"`
	Command    string `json:"command"`
}

// NewGetVersion builds the "get_version" info command.
func NewGetVersion(seq string) Command {
	return InfoCommand{Info: InfoPayload{SequenceID: seq, Command: "get_version"}}
}

// PrintCommand wraps a request to the "print" subsystem.
type PrintCommand struct {
	Print PrintPayload `json:"print"`
}

func (c PrintCommand) SequenceID() string { return c.Print.SequenceID }

// PrintPayload is the flattened body of a PrintCommand. Only the fields
// relevant to the active command variant are populated; the rest are
// omitted from the wire form.
type PrintPayload struct {
	SequenceID     string `json:"sequence_id"`
	Command        string `json:"command"`
	Param          string `json:"param,omitempty"`
	FilamentID     string `json:"filament_id,omitempty"`
	NozzleDiameter string `json:"nozzle_diameter,omitempty"`
}

// NewPause builds the "pause" print command.
func NewPause(seq string) Command {
	return PrintCommand{Print: PrintPayload{SequenceID: seq, Command: "pause"}}
}

// NewResume builds the "resume" print command.
func NewResume(seq string) Command {
	return PrintCommand{Print: PrintPayload{SequenceID: seq, Command: "resume"}}
}

// NewStop builds the "stop" print command.
func NewStop(seq string) Command {
	return PrintCommand{Print: PrintPayload{SequenceID: seq, Command: "stop"}}
}

// NewPrintSpeed builds the "print_speed" print command, param being the
// speed-profile index as a decimal string.
func NewPrintSpeed(seq, param string) Command {
	return PrintCommand{Print: PrintPayload{SequenceID: seq, Command: "print_speed", Param: param}}
}

// NewGCodeLine builds the "gcode_line" print command, param being the raw
// G-code to execute.
func NewGCodeLine(seq, param string) Command {
	return PrintCommand{Print: PrintPayload{SequenceID: seq, Command: "gcode_line", Param: param}}
}

// NewExtrusionCalibrationGet builds the "extrusion_cali_get" print command.
func NewExtrusionCalibrationGet(seq, filamentID, nozzleDiameter string) Command {
	return PrintCommand{Print: PrintPayload{
		SequenceID:     seq,
		Command:        "extrusion_cali_get",
		FilamentID:     filamentID,
		NozzleDiameter: nozzleDiameter,
	}}
}

// PushingCommand wraps a request to the "pushing" subsystem.
type PushingCommand struct {
	Pushing PushingPayload `json:"pushing"`
}

func (c PushingCommand) SequenceID() string { return c.Pushing.SequenceID }

// PushingPayload is the flattened body of a PushingCommand.
type PushingPayload struct {
	SequenceID string `json:"sequence_id"`
	Command    string `json:"command"`
}

// NewPushAll builds the "pushall" pushing command, requesting a full
// status dump.
func NewPushAll(seq string) Command {
	return PushingCommand{Pushing: PushingPayload{SequenceID: seq, Command: "pushall"}}
}

// NewStartPush builds the "start" pushing command.
func NewStartPush(seq string) Command {
	return PushingCommand{Pushing: PushingPayload{SequenceID: seq, Command: "start"}}
}

// LedNode names a controllable light on the printer.
type LedNode string

// LedNodeChamberLight is the only LedNode this family of printers exposes.
const LedNodeChamberLight LedNode = "chamber_light"

// LedMode is the on/off state passed to LedCtrl.
type LedMode string

const (
	LedModeOn  LedMode = "on"
	LedModeOff LedMode = "off"
)

// AccessoryType filters GetAccessories queries.
type AccessoryType string

const AccessoryTypeNone AccessoryType = "none"

// LedCtrlCommand wraps a "ledctrl" request to the "system" subsystem. Its
// timing fields are never omitted from the wire form, even when zero,
// since a zero loop/interval time is a meaningful value (run once, no
// interval) rather than an absent one.
type LedCtrlCommand struct {
	System LedCtrlPayload `json:"system"`
}

func (c LedCtrlCommand) SequenceID() string { return c.System.SequenceID }

// LedCtrlPayload is the flattened body of a LedCtrlCommand.
type LedCtrlPayload struct {
	SequenceID   string  `json:"sequence_id"`
	Command      string  `json:"command"`
	LedNode      LedNode `json:"led_node"`
	LedMode      LedMode `json:"led_mode"`
	LedOnTime    uint32  `json:"led_on_time"`
	LedOffTime   uint32  `json:"led_off_time"`
	LoopTimes    uint32  `json:"loop_times"`
	IntervalTime uint32  `json:"interval_time"`
}

// LedCtrl describes one chamber-light control request.
type LedCtrl struct {
	LedNode      LedNode
	LedMode      LedMode
	LedOnTime    uint32
	LedOffTime   uint32
	LoopTimes    uint32
	IntervalTime uint32
}

// NewLedCtrl builds the "ledctrl" system command.
func NewLedCtrl(seq string, ctrl LedCtrl) Command {
	return LedCtrlCommand{System: LedCtrlPayload{
		SequenceID:   seq,
		Command:      "ledctrl",
		LedNode:      ctrl.LedNode,
		LedMode:      ctrl.LedMode,
		LedOnTime:    ctrl.LedOnTime,
		LedOffTime:   ctrl.LedOffTime,
		LoopTimes:    ctrl.LoopTimes,
		IntervalTime: ctrl.IntervalTime,
	}}
}

// GetAccessoriesCommand wraps a "get_accessories" request to the "system"
// subsystem.
type GetAccessoriesCommand struct {
	System GetAccessoriesPayload `json:"system"`
}

func (c GetAccessoriesCommand) SequenceID() string { return c.System.SequenceID }

// GetAccessoriesPayload is the flattened body of a GetAccessoriesCommand.
type GetAccessoriesPayload struct {
	SequenceID    string        `json:"sequence_id"`
	Command       string        `json:"command"`
	AccessoryType AccessoryType `json:"accessory_type"`
}

// NewGetAccessories builds the "get_accessories" system command.
func NewGetAccessories(seq string, accessoryType AccessoryType) Command {
	return GetAccessoriesCommand{System: GetAccessoriesPayload{
		SequenceID:    seq,
		Command:       "get_accessories",
		AccessoryType: accessoryType,
	}}
}
