package mqtt

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func marshalToMap(t *testing.T, v any) map[string]any {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	return m
}

func TestGetVersionShape(t *testing.T) {
	got := marshalToMap(t, NewGetVersion("0"))
	assert.Equal(t, map[string]any{
		"info": map[string]any{"sequence_id": "0", "command": "get_version"},
	}, got)
}

func TestPauseShape(t *testing.T) {
	got := marshalToMap(t, NewPause("0"))
	assert.Equal(t, map[string]any{
		"print": map[string]any{"sequence_id": "0", "command": "pause"},
	}, got)
}

func TestResumeShape(t *testing.T) {
	got := marshalToMap(t, NewResume("0"))
	assert.Equal(t, map[string]any{
		"print": map[string]any{"sequence_id": "0", "command": "resume"},
	}, got)
}

func TestStopShape(t *testing.T) {
	got := marshalToMap(t, NewStop("0"))
	assert.Equal(t, map[string]any{
		"print": map[string]any{"sequence_id": "0", "command": "stop"},
	}, got)
}

func TestPushAllShape(t *testing.T) {
	got := marshalToMap(t, NewPushAll("0"))
	assert.Equal(t, map[string]any{
		"pushing": map[string]any{"sequence_id": "0", "command": "pushall"},
	}, got)
}

func TestStartPushShape(t *testing.T) {
	got := marshalToMap(t, NewStartPush("0"))
	assert.Equal(t, map[string]any{
		"pushing": map[string]any{"sequence_id": "0", "command": "start"},
	}, got)
}

func TestLedCtrlOnShape(t *testing.T) {
	cmd := NewLedCtrl("0", LedCtrl{
		LedNode:      LedNodeChamberLight,
		LedMode:      LedModeOn,
		LedOnTime:    500,
		LedOffTime:   500,
		LoopTimes:    1,
		IntervalTime: 1000,
	})
	got := marshalToMap(t, cmd)
	assert.Equal(t, map[string]any{
		"system": map[string]any{
			"sequence_id":   "0",
			"command":       "ledctrl",
			"led_node":      "chamber_light",
			"led_mode":      "on",
			"led_on_time":   float64(500),
			"led_off_time":  float64(500),
			"loop_times":    float64(1),
			"interval_time": float64(1000),
		},
	}, got)
}

// TestSetChamberLightFixedTimingShape pins the fixed 500/500/0/0
// on/off/loop/interval timing the client always sends, and ensures the
// zero-valued loop_times/interval_time fields are still present in the
// wire form rather than dropped.
func TestSetChamberLightFixedTimingShape(t *testing.T) {
	cmd := NewLedCtrl("0", LedCtrl{
		LedNode:      LedNodeChamberLight,
		LedMode:      LedModeOn,
		LedOnTime:    500,
		LedOffTime:   500,
		LoopTimes:    0,
		IntervalTime: 0,
	})
	got := marshalToMap(t, cmd)
	assert.Equal(t, map[string]any{
		"system": map[string]any{
			"sequence_id":   "0",
			"command":       "ledctrl",
			"led_node":      "chamber_light",
			"led_mode":      "on",
			"led_on_time":   float64(500),
			"led_off_time":  float64(500),
			"loop_times":    float64(0),
			"interval_time": float64(0),
		},
	}, got)
}

func TestPrintSpeedShape(t *testing.T) {
	got := marshalToMap(t, NewPrintSpeed("0", "2"))
	assert.Equal(t, map[string]any{
		"print": map[string]any{"sequence_id": "0", "command": "print_speed", "param": "2"},
	}, got)
}

func TestGCodeLineShape(t *testing.T) {
	got := marshalToMap(t, NewGCodeLine("0", "G28\n"))
	assert.Equal(t, map[string]any{
		"print": map[string]any{"sequence_id": "0", "command": "gcode_line", "param": "G28\n"},
	}, got)
}

func TestExtrusionCalibrationGetShape(t *testing.T) {
	got := marshalToMap(t, NewExtrusionCalibrationGet("0", "GFL96", "0.4"))
	assert.Equal(t, map[string]any{
		"print": map[string]any{
			"sequence_id":     "0",
			"command":         "extrusion_cali_get",
			"filament_id":     "GFL96",
			"nozzle_diameter": "0.4",
		},
	}, got)
}

func TestGetAccessoriesShape(t *testing.T) {
	got := marshalToMap(t, NewGetAccessories("0", AccessoryTypeNone))
	assert.Equal(t, map[string]any{
		"system": map[string]any{
			"sequence_id":    "0",
			"command":        "get_accessories",
			"accessory_type": "none",
		},
	}, got)
}

func TestSequenceIDAccessor(t *testing.T) {
	assert.Equal(t, "42", NewPause("42").SequenceID())
	assert.Equal(t, "42", NewGetVersion("42").SequenceID())
	assert.Equal(t, "42", NewPushAll("42").SequenceID())
	assert.Equal(t, "42", NewGetAccessories("42", AccessoryTypeNone).SequenceID())
}
