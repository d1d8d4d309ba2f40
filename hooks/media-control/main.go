// Package main is a hotzone hook for macOS that controls volume and media
// playback when a body enters or leaves a hot-zone.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
)

// Request is the engagement event sent by hotzone.
type Request struct {
	Action    string          `json:"action"`
	Event     string          `json:"event"`
	BodyID    uint64          `json:"body_id"`
	BodyIndex int             `json:"body_index"`
	Distance  *float64        `json:"distance,omitempty"`
	Config    json.RawMessage `json:"config,omitempty"`
}

// Response is written back to hotzone.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

type actionHandler func() error

var actionHandlers = map[string]actionHandler{
	"mute":       func() error { return runAppleScript(`set volume output muted true`) },
	"unmute":     func() error { return runAppleScript(`set volume output muted false`) },
	"play-pause": func() error { return keyCode(100) },
	"pause":      pauseMusic,
	"play":       playMusic,
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeResponse(Response{Error: fmt.Sprintf("failed to decode request: %v", err)})
		return
	}

	handler, ok := actionHandlers[req.Action]
	if !ok {
		writeResponse(Response{Error: fmt.Sprintf("unknown action: %s", req.Action)})
		return
	}

	if err := handler(); err != nil {
		writeResponse(Response{Error: fmt.Sprintf("action %s for body %d failed: %v", req.Action, req.BodyID, err)})
		return
	}

	data, _ := json.Marshal(map[string]string{"action": req.Action, "event": req.Event})
	writeResponse(Response{Success: true, Data: data})
}

func writeResponse(resp Response) {
	json.NewEncoder(os.Stdout).Encode(resp)
}

func runAppleScript(script string) error {
	output, err := exec.Command("osascript", "-e", script).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, string(output))
	}
	return nil
}

// keyCode presses a media key through System Events.
func keyCode(code int) error {
	return runAppleScript(fmt.Sprintf("tell application \"System Events\"\n\tkey code %d\nend tell", code))
}

func pauseMusic() error {
	return runAppleScript(`if application "Music" is running then tell application "Music" to pause`)
}

func playMusic() error {
	return runAppleScript(`if application "Music" is running then tell application "Music" to play`)
}
