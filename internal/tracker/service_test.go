package tracker

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"gocv.io/x/gocv"

	"github.com/ayusman/hotzone/internal/skeleton"
)

func TestDecodeResponse(t *testing.T) {
	cfg := DefaultConfig()

	t.Run("explicit states", func(t *testing.T) {
		line := `{"bodies":[{"id":42,"tracked":true,"joints":[` +
			`{"type":"Head","x":0.1,"y":0.5,"z":2.0,"state":"Tracked"},` +
			`{"type":"HandLeft","x":-0.3,"y":0.0,"z":1.9,"state":"Inferred"},` +
			`{"type":"FootLeft","x":0,"y":0,"z":0,"state":"NotTracked"}]}]}` + "\n"

		bodies, err := decodeResponse([]byte(line), cfg)
		if err != nil {
			t.Fatalf("decodeResponse() error = %v", err)
		}
		if len(bodies) != 1 {
			t.Fatalf("expected 1 body, got %d", len(bodies))
		}

		b := bodies[0]
		if b.ID != 42 || !b.Tracked {
			t.Errorf("body = {ID:%d Tracked:%v}, want {ID:42 Tracked:true}", b.ID, b.Tracked)
		}

		head, ok := b.Joint(skeleton.Head)
		if !ok {
			t.Fatal("head missing")
		}
		if head.Position != (skeleton.Point3D{X: 0.1, Y: 0.5, Z: 2.0}) {
			t.Errorf("head position = %+v", head.Position)
		}
		if head.State != skeleton.Tracked {
			t.Errorf("head state = %v, want Tracked", head.State)
		}
		if j, _ := b.Joint(skeleton.HandLeft); j.State != skeleton.Inferred {
			t.Errorf("hand state = %v, want Inferred", j.State)
		}
		if j, _ := b.Joint(skeleton.FootLeft); j.State != skeleton.NotTracked {
			t.Errorf("foot state = %v, want NotTracked", j.State)
		}
	})

	t.Run("confidence derived states", func(t *testing.T) {
		line := `{"bodies":[{"id":1,"tracked":true,"joints":[` +
			`{"type":"Head","x":0,"y":0,"z":1,"confidence":0.9},` +
			`{"type":"HandLeft","x":0,"y":0,"z":1,"confidence":0.2},` +
			`{"type":"HandRight","x":0,"y":0,"z":1,"confidence":0}]}]}`

		bodies, err := decodeResponse([]byte(line), cfg)
		if err != nil {
			t.Fatalf("decodeResponse() error = %v", err)
		}

		want := map[skeleton.JointType]skeleton.TrackingState{
			skeleton.Head:      skeleton.Tracked,
			skeleton.HandLeft:  skeleton.Inferred,
			skeleton.HandRight: skeleton.NotTracked,
		}
		for jt, state := range want {
			if j, _ := bodies[0].Joint(jt); j.State != state {
				t.Errorf("%v state = %v, want %v", jt, j.State, state)
			}
		}
	})

	t.Run("extra bodies are dropped", func(t *testing.T) {
		var sb strings.Builder
		sb.WriteString(`{"bodies":[`)
		for i := 0; i < skeleton.MaxBodies+2; i++ {
			if i > 0 {
				sb.WriteString(",")
			}
			sb.WriteString(`{"id":1,"tracked":false,"joints":[]}`)
		}
		sb.WriteString(`]}`)

		bodies, err := decodeResponse([]byte(sb.String()), cfg)
		if err != nil {
			t.Fatalf("decodeResponse() error = %v", err)
		}
		if len(bodies) != skeleton.MaxBodies {
			t.Errorf("len(bodies) = %d, want %d", len(bodies), skeleton.MaxBodies)
		}
	})

	t.Run("unknown joint", func(t *testing.T) {
		line := `{"bodies":[{"id":3,"tracked":true,"joints":[{"type":"Tail","x":0,"y":0,"z":1}]}]}`
		if _, err := decodeResponse([]byte(line), cfg); err == nil {
			t.Error("expected error for unknown joint type")
		}
	})

	t.Run("duplicate joint", func(t *testing.T) {
		line := `{"bodies":[{"id":1,"tracked":true,"joints":[` +
			`{"type":"Head","x":0,"y":0,"z":2},` +
			`{"type":"Head","x":9,"y":9,"z":9}]}]}`
		_, err := decodeResponse([]byte(line), cfg)
		if !errors.Is(err, ErrDuplicateJoint) {
			t.Errorf("decodeResponse() error = %v, want %v", err, ErrDuplicateJoint)
		}
	})

	t.Run("unknown state", func(t *testing.T) {
		line := `{"bodies":[{"id":3,"tracked":true,"joints":[{"type":"Head","x":0,"y":0,"z":1,"state":"Maybe"}]}]}`
		if _, err := decodeResponse([]byte(line), cfg); err == nil {
			t.Error("expected error for unknown tracking state")
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		if _, err := decodeResponse([]byte("not json\n"), cfg); err == nil {
			t.Error("expected error for invalid JSON")
		}
	})
}

func TestNewServiceSource(t *testing.T) {
	t.Run("explicit script path", func(t *testing.T) {
		script := filepath.Join(t.TempDir(), ServiceScript)
		if err := os.WriteFile(script, []byte("# placeholder\n"), 0644); err != nil {
			t.Fatalf("write script: %v", err)
		}

		cfg := DefaultConfig()
		cfg.ServicePath = script
		cfg.MaxBodies = 0

		src, err := NewServiceSource(cfg)
		if err != nil {
			t.Fatalf("NewServiceSource() error = %v", err)
		}
		if src.scriptPath != script {
			t.Errorf("scriptPath = %q, want %q", src.scriptPath, script)
		}
		if src.config.MaxBodies != skeleton.MaxBodies {
			t.Errorf("MaxBodies = %d, want %d", src.config.MaxBodies, skeleton.MaxBodies)
		}

		// Close before the process was ever started is a no-op.
		if err := src.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})

	t.Run("script not found", func(t *testing.T) {
		t.Setenv("HOME", t.TempDir())

		_, err := NewServiceSource(DefaultConfig())
		if !errors.Is(err, ErrServiceNotFound) {
			t.Errorf("NewServiceSource() error = %v, want %v", err, ErrServiceNotFound)
		}
	})
}

func TestServiceSource_RestartsAfterHelperExit(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}
	if runtime.GOOS == "windows" {
		t.Skip("skipping test on Windows")
	}

	// The helper exits on its first run and answers with no bodies on
	// every run after that. Each start is counted in a sibling file.
	dir := t.TempDir()
	script := filepath.Join(dir, "helper.sh")
	countFile := filepath.Join(dir, "starts")
	body := "#!/bin/sh\n" +
		"n=$(cat " + countFile + " 2>/dev/null || echo 0)\n" +
		"n=$((n+1))\n" +
		"echo $n > " + countFile + "\n" +
		"if [ \"$n\" -eq 1 ]; then exit 0; fi\n" +
		"echo '{\"bodies\":[]}'\n" +
		"cat > /dev/null\n"
	if err := os.WriteFile(script, []byte(body), 0755); err != nil {
		t.Fatalf("write script: %v", err)
	}

	cfg := DefaultConfig()
	cfg.ServicePath = script
	src, err := NewServiceSource(cfg)
	if err != nil {
		t.Fatalf("NewServiceSource() error = %v", err)
	}
	src.command = func(path string) *exec.Cmd { return exec.Command("/bin/sh", path) }
	defer src.Close()

	frame := gocv.NewMatWithSize(8, 8, gocv.MatTypeCV8UC3)
	defer frame.Close()

	if _, err := src.Track(&frame); err == nil {
		t.Fatal("first Track() expected error from exited helper")
	}
	if src.started {
		t.Error("helper still marked started after pipe error")
	}

	bodies, err := src.Track(&frame)
	if err != nil {
		t.Fatalf("second Track() error = %v", err)
	}
	if len(bodies) != 0 {
		t.Errorf("len(bodies) = %d, want 0", len(bodies))
	}

	data, err := os.ReadFile(countFile)
	if err != nil {
		t.Fatalf("read start count: %v", err)
	}
	if got := strings.TrimSpace(string(data)); got != "2" {
		t.Errorf("helper starts = %s, want 2", got)
	}
}
