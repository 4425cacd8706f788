// Package snapdaemon adapts the teacher's JSON-line-over-Unix-socket
// daemon (daemon.go/protocol.go/types.go) to a minimal long-lived service
// that holds one cdphost.Session open and answers four requests:
// "navigate" (load a page into the held session), "snapshot", "search"
// and "close". Every other command the teacher's protocol
// supported (click, type, drag, tabs, clipboard, ...) is out of scope —
// this daemon exists to keep a browser warm between snapshot/search
// calls, not to drive it.
package snapdaemon

import (
	"encoding/json"
	"fmt"
)

// BaseCommand carries the fields every command shares.
type BaseCommand struct {
	ID     string `json:"id"`
	Action string `json:"action"`
}

// Command is the union type for all requests the daemon accepts.
type Command interface {
	GetID() string
	GetAction() string
}

func (c BaseCommand) GetID() string     { return c.ID }
func (c BaseCommand) GetAction() string { return c.Action }

// NavigateCommand loads a URL into the daemon's held session.
type NavigateCommand struct {
	BaseCommand
	URL string `json:"url"`
}

// SnapshotCommand captures a Snapshot of the current page and renders it
// to text.
type SnapshotCommand struct {
	BaseCommand
	MaxTextLength *int  `json:"maxTextLength,omitempty"`
	IncludeHidden *bool `json:"includeHidden,omitempty"`
}

// SearchCommand runs searchAndFormat against the current page.
type SearchCommand struct {
	BaseCommand
	Query         string `json:"query"`
	ContextLevels int    `json:"contextLevels,omitempty"`
	CaseSensitive bool   `json:"caseSensitive,omitempty"`
	UseGlob       bool   `json:"useGlob,omitempty"`
}

// CloseCommand shuts the daemon down after responding.
type CloseCommand struct {
	BaseCommand
}

// ParseCommand parses one JSON-line request into its typed Command, the
// same dispatch-on-action shape as the teacher's ParseCommand.
func ParseCommand(data []byte) (Command, error) {
	var base BaseCommand
	if err := json.Unmarshal(data, &base); err != nil {
		return nil, fmt.Errorf("snapdaemon: parse command: %w", err)
	}
	if base.ID == "" {
		return nil, fmt.Errorf("snapdaemon: command missing id")
	}
	if base.Action == "" {
		return nil, fmt.Errorf("snapdaemon: command missing action")
	}

	var cmd Command
	var err error
	switch base.Action {
	case "navigate":
		var c NavigateCommand
		err = json.Unmarshal(data, &c)
		cmd = &c
	case "snapshot":
		var c SnapshotCommand
		err = json.Unmarshal(data, &c)
		cmd = &c
	case "search":
		var c SearchCommand
		err = json.Unmarshal(data, &c)
		cmd = &c
	case "close":
		var c CloseCommand
		err = json.Unmarshal(data, &c)
		cmd = &c
	default:
		return nil, fmt.Errorf("snapdaemon: unknown action %q", base.Action)
	}
	if err != nil {
		return nil, fmt.Errorf("snapdaemon: parse %s command: %w", base.Action, err)
	}
	return cmd, nil
}

// Response is the envelope every reply is wrapped in.
type Response struct {
	ID      string          `json:"id"`
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// SnapshotData is the "snapshot" response payload.
type SnapshotData struct {
	Text  string         `json:"text"`
	Stats map[string]int `json:"stats"`
}

// SearchData is the "search" response payload.
type SearchData struct {
	Result string `json:"result"`
}

func SuccessResponse(id string, data interface{}) Response {
	raw, err := json.Marshal(data)
	if err != nil {
		return ErrorResponse(id, fmt.Sprintf("marshal response data: %v", err))
	}
	return Response{ID: id, Success: true, Data: raw}
}

func ErrorResponse(id, message string) Response {
	return Response{ID: id, Success: false, Error: message}
}

func SerializeResponse(resp Response) ([]byte, error) {
	return json.Marshal(resp)
}
