package sequence

import (
	"context"
	"image"
)

// LastFrameDuration is how long the final frame of a sequence stays on
// screen, in seconds. It has no successor to measure against.
const LastFrameDuration = 1.0

// Status texts reported through Hooks.Status.
const (
	MsgNoFrames = "No frames in scene."
	MsgReset    = "Reset."
)

// Frame is one loaded point cloud placed on the playback timeline.
type Frame struct {
	Timestamp float64 `json:"timestamp"` // seconds; 0 for the first frame once normalized
	Duration  float64 `json:"duration"`  // seconds until the next frame
	Path      string  `json:"path"`
	Scene     string  `json:"scene"`
	Payload   any     `json:"-"`
}

// FrameSpec is a raw load request for a single frame.
type FrameSpec struct {
	Timestamp float64 `json:"timestamp"`
	Path      string  `json:"path"`
}

// SceneFrame is a frame of a scene descriptor. Clouds maps a cloud type
// (e.g. "color", "intensity") to the path of its payload.
type SceneFrame struct {
	Timestamp float64           `json:"timestamp"`
	Clouds    map[string]string `json:"clouds"`
}

// PlayerState enumerates playback states.
type PlayerState string

const (
	Idle    PlayerState = "idle"    // nothing loaded
	Paused  PlayerState = "paused"  // loaded, timer not armed
	Playing PlayerState = "playing" // loaded, timer armed
)

// Renderer is the narrow view of the rendering pipeline the Player drives.
// Load is called from loader goroutines; every other method is called from
// the Player's loop.
type Renderer interface {
	Load(ctx context.Context, path string) (any, error)
	Attach(payload any)
	Detach()
	Render() error
	CaptureImage() (image.Image, error)
}

// Hooks are dependency-injected callbacks into the controlling layer. They
// run on the Player's loop and must not call back into blocking Player
// methods. Nil hooks are skipped.
type Hooks struct {
	// Status receives human readable progress text.
	Status func(text string)
	// PostRender is invoked once per displayed frame with a captured image.
	PostRender func(img image.Image, index int, timestamp float64, path, scene string)
	// LoadFailed reports a frame of the active scene that could not be loaded.
	LoadFailed func(path string, err error)
}

// Snapshot is a copy of the Player state taken on its loop.
type Snapshot struct {
	State      PlayerState `json:"state"`
	Session    uint64      `json:"session"`
	Scene      string      `json:"scene"`
	Loaded     bool        `json:"loaded"`
	Playing    bool        `json:"playing"`
	Index      int         `json:"index"`
	TimerArmed bool        `json:"timerArmed"`
	Expected   int         `json:"expected"`
	Received   int         `json:"received"`
	Frames     []Frame     `json:"frames"`
}
