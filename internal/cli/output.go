package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
	errW   io.Writer
}

// NewOutput creates an Output formatter over the given writers
func NewOutput(format string, w, errW io.Writer) *Output {
	return &Output{format: format, w: w, errW: errW}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		_, _ = fmt.Fprintln(o.errW, string(data))
	} else {
		_, _ = fmt.Fprintf(o.errW, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		_, _ = fmt.Fprintln(o.w, string(data))
	} else {
		_, _ = fmt.Fprintln(o.w, msg)
	}
}

// PrintFrame outputs one WebSocket frame. JSON output is one line per
// frame so a stream can be piped into line-oriented tools.
func (o *Output) PrintFrame(f Frame) {
	if o.format == "json" {
		data, err := json.Marshal(f)
		if err != nil {
			o.PrintError(err)
			return
		}
		_, _ = fmt.Fprintln(o.w, string(data))
		return
	}
	_, _ = fmt.Fprintf(o.w, "[%s] %s %s\n", f.Time.Format("15:04:05"), f.Direction, describeFrame(f.Data))
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Lobby:
		o.printLobby(v)
	case LobbyList:
		o.printLobbyList(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Lobby response type (matches API)
type Lobby struct {
	ID          string    `json:"id"`
	Capacity    int       `json:"capacity"`
	Started     bool      `json:"started"`
	Active      []string  `json:"active"`
	Inactive    []string  `json:"inactive"`
	HasSnapshot bool      `json:"has_snapshot"`
	Connections int       `json:"connections"`
	CreatedAt   time.Time `json:"created_at"`
}

// LobbyList response type
type LobbyList struct {
	Lobbies []Lobby `json:"lobbies"`
}

// HealthResult response type
type HealthResult struct {
	Status  string `json:"status"`
	Lobbies int    `json:"lobbies"`
}

// Frame is one WebSocket message seen by the CLI
type Frame struct {
	Time      time.Time       `json:"time"`
	Direction string          `json:"direction"`
	Data      json.RawMessage `json:"data"`
}

// Frame directions
const (
	FrameSent     = "sent"
	FrameReceived = "received"
)

func (o *Output) printLobby(l Lobby) {
	state := "waiting"
	if l.Started {
		state = "started"
	}
	_, _ = fmt.Fprintf(o.w, "Lobby: %s\n", l.ID)
	_, _ = fmt.Fprintf(o.w, "State: %s\n", state)
	_, _ = fmt.Fprintf(o.w, "Players: %d/%d\n", len(l.Active), l.Capacity)
	for _, name := range l.Active {
		_, _ = fmt.Fprintf(o.w, "  - %s\n", name)
	}
	if len(l.Inactive) > 0 {
		_, _ = fmt.Fprintf(o.w, "Disconnected: %s\n", strings.Join(l.Inactive, ", "))
	}
	_, _ = fmt.Fprintf(o.w, "Connections: %d\n", l.Connections)
	if l.HasSnapshot {
		_, _ = fmt.Fprintln(o.w, "Snapshot: yes")
	}
}

func (o *Output) printLobbyList(ll LobbyList) {
	if len(ll.Lobbies) == 0 {
		_, _ = fmt.Fprintln(o.w, "No lobbies")
		return
	}
	for _, l := range ll.Lobbies {
		state := "waiting"
		if l.Started {
			state = "started"
		}
		_, _ = fmt.Fprintf(o.w, "%s  %d/%d  %s\n", l.ID, len(l.Active), l.Capacity, state)
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	_, _ = fmt.Fprintf(o.w, "Status: %s\n", h.Status)
	_, _ = fmt.Fprintf(o.w, "Lobbies: %d\n", h.Lobbies)
}

// describeFrame renders the server's message shapes readably and falls
// back to the raw payload for anything else.
func describeFrame(data json.RawMessage) string {
	var roster struct {
		RegisteredPlayers *[]string `json:"registeredPlayers"`
	}
	if err := json.Unmarshal(data, &roster); err == nil && roster.RegisteredPlayers != nil {
		return "players: [" + strings.Join(*roster.RegisteredPlayers, ", ") + "]"
	}

	var notice struct {
		Title   *string `json:"title"`
		Message *string `json:"message"`
	}
	if err := json.Unmarshal(data, &notice); err == nil && notice.Title != nil && notice.Message != nil {
		return fmt.Sprintf("%s: %s", *notice.Title, *notice.Message)
	}

	var names []string
	if err := json.Unmarshal(data, &names); err == nil {
		return "game started: [" + strings.Join(names, ", ") + "]"
	}

	return string(data)
}
