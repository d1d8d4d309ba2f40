package hook

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

// writeHook creates a hook directory containing a shell script and a manifest.
func writeHook(t *testing.T, dir string, manifest Manifest, script string) *Hook {
	t.Helper()

	hookPath := filepath.Join(dir, manifest.Name)
	if err := os.MkdirAll(hookPath, 0755); err != nil {
		t.Fatalf("failed to create hook dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(hookPath, manifest.Executable), []byte(script), 0755); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}
	data, err := json.Marshal(manifest)
	if err != nil {
		t.Fatalf("failed to marshal manifest: %v", err)
	}
	if err := os.WriteFile(filepath.Join(hookPath, ManifestFile), data, 0644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}

	return &Hook{
		Manifest:   manifest,
		Path:       hookPath,
		Executable: filepath.Join(hookPath, manifest.Executable),
	}
}

func skipOnWindows(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("skipping test on Windows")
	}
}

func TestExecutor_Execute(t *testing.T) {
	skipOnWindows(t)

	h := writeHook(t, t.TempDir(), Manifest{Name: "echo", Executable: "run.sh", OnEnter: "notify"}, `#!/bin/sh
cat <<'EOF'
{"success":true,"data":{"message":"hello"}}
EOF
`)

	resp, err := NewExecutor(5*time.Second).Execute(context.Background(), h, &Request{Action: "notify", Event: EventEntered})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !resp.Success || resp.Error != "" {
		t.Errorf("response = %+v, want success", resp)
	}

	var data map[string]string
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("failed to unmarshal data: %v", err)
	}
	if data["message"] != "hello" {
		t.Errorf("message = %q, want hello", data["message"])
	}
}

func TestExecutor_Execute_ReadsStdin(t *testing.T) {
	skipOnWindows(t)

	// The hook echoes its request back as the response data.
	h := writeHook(t, t.TempDir(), Manifest{Name: "mirror", Executable: "run.sh", OnEnter: "a"}, `#!/bin/sh
req=$(cat)
printf '{"success":true,"data":%s}' "$req"
`)
	h.Manifest.Config = json.RawMessage(`{"volume":3}`)

	ev := Event{BodyID: 42, BodyIndex: 2, Entered: true, Distance: 0.25, At: time.Unix(1700000000, 0).UTC()}
	resp, err := NewExecutor(5*time.Second).Execute(context.Background(), h, NewRequest(h, ev))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	var got Request
	if err := json.Unmarshal(resp.Data, &got); err != nil {
		t.Fatalf("failed to unmarshal echoed request: %v", err)
	}
	if got.Action != "a" || got.Event != EventEntered || got.BodyID != 42 || got.BodyIndex != 2 {
		t.Errorf("echoed request = %+v", got)
	}
	if got.Distance == nil || *got.Distance != 0.25 {
		t.Errorf("Distance = %v, want 0.25", got.Distance)
	}
	if string(got.Config) != `{"volume":3}` {
		t.Errorf("Config = %s", got.Config)
	}
	if !got.Time.Equal(ev.At) {
		t.Errorf("Time = %v, want %v", got.Time, ev.At)
	}
}

func TestExecutor_Timeout(t *testing.T) {
	skipOnWindows(t)

	h := writeHook(t, t.TempDir(), Manifest{Name: "slow", Executable: "run.sh"}, `#!/bin/sh
sleep 5
echo '{"success":true}'
`)

	_, err := NewExecutor(100*time.Millisecond).Execute(context.Background(), h, &Request{})
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("Execute() error = %v, want ErrTimeout", err)
	}
}

func TestExecutor_Failures(t *testing.T) {
	skipOnWindows(t)

	tests := []struct {
		name        string
		script      string
		wantErr     string
		wantFailure string
	}{
		{
			name:        "error response",
			script:      "#!/bin/sh\necho '{\"success\":false,\"error\":\"no player\"}'\n",
			wantFailure: "no player",
		},
		{
			name:    "invalid json",
			script:  "#!/bin/sh\necho 'not json'\n",
			wantErr: "failed to parse hook response",
		},
		{
			name:    "non-zero exit",
			script:  "#!/bin/sh\necho 'boom' >&2\nexit 3\n",
			wantErr: "stderr: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := writeHook(t, t.TempDir(), Manifest{Name: "h", Executable: "run.sh"}, tt.script)

			resp, err := NewExecutor(5*time.Second).Execute(context.Background(), h, &Request{})
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("Execute() error = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Execute() error = %v", err)
			}
			if resp.Success || resp.Error != tt.wantFailure {
				t.Errorf("response = %+v, want failure %q", resp, tt.wantFailure)
			}
		})
	}
}

func TestNewRequest(t *testing.T) {
	h := &Hook{Manifest: Manifest{Name: "h", OnEnter: "pause", OnLeave: "resume"}}

	tests := []struct {
		name       string
		ev         Event
		wantAction string
		wantEvent  string
		wantDist   bool
	}{
		{"entered", Event{Entered: true, Distance: 0.1}, "pause", EventEntered, true},
		{"left while tracked", Event{Distance: 0.9}, "resume", EventLeft, true},
		{"left untracked", Event{Distance: math.Inf(1)}, "resume", EventLeft, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := NewRequest(h, tt.ev)
			if req.Action != tt.wantAction || req.Event != tt.wantEvent {
				t.Errorf("request = %+v, want action %q event %q", req, tt.wantAction, tt.wantEvent)
			}
			if (req.Distance != nil) != tt.wantDist {
				t.Errorf("Distance = %v, want present=%v", req.Distance, tt.wantDist)
			}
			if _, err := json.Marshal(req); err != nil {
				t.Errorf("Marshal() error = %v", err)
			}
		})
	}
}
