package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	diag "github.com/coreman2200/scenereel/internal/diagnostics"
	"github.com/coreman2200/scenereel/internal/scene"
	"github.com/coreman2200/scenereel/internal/sequence"
)

const (
	writeWait = 200 * time.Millisecond
	// sendQueue is how many messages a broadcast client may fall behind
	// before new ones are dropped for it.
	sendQueue = 16
)

// Controller is what control clients drive.
type Controller interface {
	LoadScene(id, cloudType string) error
	LoadFrame(path string) error
	Play() bool
	Pause() bool
	Next() bool
	Prev() bool
	Reset() error
	RunPattern(name string) error
	Snapshot() sequence.Snapshot
	Scenes() []scene.Scene
}

// Command is one control message.
type Command struct {
	Cmd     string `json:"cmd"`
	Scene   string `json:"scene,omitempty"`
	Type    string `json:"type,omitempty"`
	Path    string `json:"path,omitempty"`
	Pattern string `json:"pattern,omitempty"`
}

// Reply answers every control message.
type Reply struct {
	Cmd   string             `json:"cmd"`
	OK    bool               `json:"ok"`
	Error string             `json:"error,omitempty"`
	State *sequence.Snapshot `json:"state,omitempty"`
}

type event struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Hub fans preview frames and diagnostics out to websocket clients and
// feeds control messages to a Controller.
type Hub struct {
	ctrl Controller
	log  zerolog.Logger

	// Extra, if set, is merged into the health document.
	Extra func() map[string]any

	mu          sync.Mutex
	frames      map[*client]bool
	diagClients map[*client]bool
	lastStatus  *diag.Diagnostic
	frameID     uint64
	dropped     uint64
	startTime   time.Time
	up          websocket.Upgrader
}

func NewHub(ctrl Controller, log zerolog.Logger) *Hub {
	return &Hub{
		ctrl:        ctrl,
		log:         log,
		frames:      map[*client]bool{},
		diagClients: map[*client]bool{},
		startTime:   time.Now(),
		up:          websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}
}

// client is a broadcast subscriber. Broadcasts only queue onto send; the
// client's own pump does the socket writes.
type client struct {
	conn *websocket.Conn
	send chan []byte
}

func newClient(conn *websocket.Conn) *client {
	return &client{conn: conn, send: make(chan []byte, sendQueue)}
}

// pump writes queued messages until send is closed. After a failed write the
// connection is closed so the read side notices and unregisters.
func (c *client) pump(log zerolog.Logger) {
	defer c.conn.Close()
	for b := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
			log.Debug().Err(err).Msg("write to client")
			c.conn.Close()
		}
	}
}

func (h *Hub) HandleFramesWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := newClient(conn)
	h.mu.Lock()
	h.frames[c] = true
	h.mu.Unlock()
	go c.pump(h.log)
	go h.drain(c, h.frames)
}

// HandleStatusWS streams diagnostics. The latest status line is replayed on
// connect so a fresh client knows where the player is.
func (h *Hub) HandleStatusWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := newClient(conn)
	h.mu.Lock()
	h.diagClients[c] = true
	if h.lastStatus != nil {
		if b, err := json.Marshal(h.lastStatus); err == nil {
			h.enqueue(c, b)
		}
	}
	h.mu.Unlock()
	go c.pump(h.log)
	go h.drain(c, h.diagClients)
}

// drain reads until the client goes away, then forgets it.
func (h *Hub) drain(c *client, set map[*client]bool) {
	defer func() {
		h.mu.Lock()
		if set[c] {
			delete(set, c)
			close(c.send)
		}
		h.mu.Unlock()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) HandleControlWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var cmd Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			h.Status(diag.ControlError("decode", err))
			_ = conn.WriteJSON(Reply{Cmd: "", Error: err.Error()})
			continue
		}
		reply := h.apply(cmd)
		_ = conn.SetWriteDeadline(time.Now().Add(time.Second))
		if err := conn.WriteJSON(reply); err != nil {
			h.log.Debug().Err(err).Msg("write control reply")
			return
		}
	}
}

func (h *Hub) apply(c Command) Reply {
	rep := Reply{Cmd: c.Cmd, OK: true}
	var err error
	switch c.Cmd {
	case "load":
		err = h.ctrl.LoadScene(c.Scene, c.Type)
	case "load_frame":
		err = h.ctrl.LoadFrame(c.Path)
	case "play":
		rep.OK = h.ctrl.Play()
	case "pause":
		rep.OK = h.ctrl.Pause()
	case "next":
		rep.OK = h.ctrl.Next()
	case "prev":
		rep.OK = h.ctrl.Prev()
	case "reset":
		err = h.ctrl.Reset()
	case "pattern":
		err = h.ctrl.RunPattern(c.Pattern)
	case "state":
	default:
		h.Status(diag.ControlUnknown(c.Cmd))
		return Reply{Cmd: c.Cmd, Error: "unknown command"}
	}
	if err != nil {
		h.log.Warn().Err(err).Str("cmd", c.Cmd).Msg("control command failed")
		h.Status(diag.ControlError(c.Cmd, err))
		rep.OK = false
		rep.Error = err.Error()
	}
	snap := h.ctrl.Snapshot()
	rep.State = &snap
	return rep
}

func (h *Hub) HandleHealth(w http.ResponseWriter, r *http.Request) {
	snap := h.ctrl.Snapshot()
	h.mu.Lock()
	resp := map[string]any{
		"frame_id":       h.frameID,
		"uptime_s":       time.Since(h.startTime).Seconds(),
		"frame_clients":  len(h.frames),
		"status_clients": len(h.diagClients),
		"dropped":        h.dropped,
		"player":         snap,
	}
	h.mu.Unlock()
	if h.Extra != nil {
		for k, v := range h.Extra() {
			resp[k] = v
		}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (h *Hub) HandleScenes(w http.ResponseWriter, r *http.Request) {
	type entry struct {
		ID         string   `json:"id"`
		Name       string   `json:"name"`
		Frames     int      `json:"frames"`
		CloudTypes []string `json:"cloud_types"`
	}
	scenes := h.ctrl.Scenes()
	out := make([]entry, 0, len(scenes))
	for _, s := range scenes {
		out = append(out, entry{ID: s.ID, Name: s.Name, Frames: len(s.Frames), CloudTypes: s.CloudTypes()})
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

// Emit broadcasts an event to frame clients.
func (h *Hub) Emit(name string, payload any) {
	b, err := json.Marshal(event{Event: name, Data: payload})
	if err != nil {
		h.log.Error().Err(err).Str("event", name).Msg("marshal event")
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.frameID++
	for c := range h.frames {
		h.enqueue(c, b)
	}
}

// Status broadcasts a diagnostic to status clients.
func (h *Hub) Status(d diag.Diagnostic) {
	b, err := json.Marshal(d)
	if err != nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if d.Code == diag.CodeStatus {
		h.lastStatus = &d
	}
	for c := range h.diagClients {
		h.enqueue(c, b)
	}
}

// enqueue must be called with h.mu held. It never blocks: a client whose
// queue is full misses the message.
func (h *Hub) enqueue(c *client, b []byte) {
	select {
	case c.send <- b:
	default:
		h.dropped++
	}
}
