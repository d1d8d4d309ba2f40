package tracker

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/hotzone/internal/skeleton"
)

// ServiceScript is the file name of the body tracking helper.
const ServiceScript = "body_tracking_service.py"

var (
	// ErrServiceNotFound is returned when the tracking helper script cannot be located.
	ErrServiceNotFound = errors.New(ServiceScript + " not found")
	// ErrDuplicateJoint is returned when a helper response lists a joint twice for one body.
	ErrDuplicateJoint = errors.New("duplicate joint")
)

// ServiceSource implements Source by delegating to a body tracking helper
// process. Each request is a 4 byte big-endian length followed by a JPEG
// frame on stdin; each response is one JSON line on stdout.
type ServiceSource struct {
	config     Config
	scriptPath string
	cmd        *exec.Cmd
	stdin      io.WriteCloser
	stdout     *bufio.Reader
	mu         sync.Mutex
	started    bool
	idleTimer  *time.Timer

	// command builds the helper process; pythonCommand unless overridden.
	command func(script string) *exec.Cmd
}

// NewServiceSource creates a new ServiceSource.
// The helper process is started lazily on the first Track call.
func NewServiceSource(config Config) (*ServiceSource, error) {
	scriptPath := config.ServicePath
	if scriptPath == "" {
		scriptPath = findServiceScript()
	}
	if scriptPath == "" {
		return nil, ErrServiceNotFound
	}
	if config.MaxBodies <= 0 || config.MaxBodies > skeleton.MaxBodies {
		config.MaxBodies = skeleton.MaxBodies
	}

	return &ServiceSource{
		config:     config,
		scriptPath: scriptPath,
		command:    pythonCommand,
	}, nil
}

// Track sends a frame to the helper and returns the bodies it reports.
func (s *ServiceSource) Track(frame *gocv.Mat) ([]skeleton.Body, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureStarted(); err != nil {
		return nil, err
	}

	buf, err := gocv.IMEncode(".jpg", *frame)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	data := buf.GetBytes()

	header := make([]byte, 4)
	binary.BigEndian.PutUint32(header, uint32(len(data)))

	// A broken pipe means the helper is gone; shut it down so the next
	// call starts a fresh one.
	if _, err := s.stdin.Write(header); err != nil {
		s.shutdown()
		return nil, fmt.Errorf("write length: %w", err)
	}
	if _, err := s.stdin.Write(data); err != nil {
		s.shutdown()
		return nil, fmt.Errorf("write data: %w", err)
	}

	line, err := s.stdout.ReadBytes('\n')
	if err != nil {
		s.shutdown()
		return nil, fmt.Errorf("read response: %w", err)
	}

	bodies, err := decodeResponse(line, s.config)
	if err != nil {
		return nil, err
	}

	s.resetIdleTimer()

	return bodies, nil
}

// Close shuts down the helper process.
func (s *ServiceSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shutdown()
}

func (s *ServiceSource) ensureStarted() error {
	if s.started {
		return nil
	}

	s.cmd = s.command(s.scriptPath)

	stdin, err := s.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("create stdin pipe: %w", err)
	}

	stdout, err := s.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("create stdout pipe: %w", err)
	}

	s.cmd.Stderr = os.Stderr

	if err := s.cmd.Start(); err != nil {
		return fmt.Errorf("start tracking service: %w", err)
	}

	s.stdin = stdin
	s.stdout = bufio.NewReader(stdout)
	s.started = true

	return nil
}

func (s *ServiceSource) shutdown() error {
	if !s.started {
		return nil
	}

	if s.idleTimer != nil {
		s.idleTimer.Stop()
		s.idleTimer = nil
	}

	if s.stdin != nil {
		s.stdin.Close()
	}

	err := s.cmd.Wait()
	s.started = false
	s.cmd = nil
	s.stdin = nil
	s.stdout = nil

	return err
}

func (s *ServiceSource) resetIdleTimer() {
	if s.config.IdleTimeoutSec <= 0 {
		return
	}
	if s.idleTimer != nil {
		s.idleTimer.Stop()
	}
	s.idleTimer = time.AfterFunc(time.Duration(s.config.IdleTimeoutSec)*time.Second, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.shutdown()
	})
}

// jsonResponse is the JSON line written by the helper for each frame.
type jsonResponse struct {
	Bodies []jsonBody `json:"bodies"`
}

type jsonBody struct {
	ID      uint64      `json:"id"`
	Tracked bool        `json:"tracked"`
	Joints  []jsonJoint `json:"joints"`
}

type jsonJoint struct {
	Type       string   `json:"type"`
	X          float64  `json:"x"`
	Y          float64  `json:"y"`
	Z          float64  `json:"z"`
	State      string   `json:"state,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// decodeResponse converts one helper response line into bodies.
// Bodies beyond config.MaxBodies are dropped.
func decodeResponse(line []byte, config Config) ([]skeleton.Body, error) {
	var resp jsonResponse
	if err := json.Unmarshal(line, &resp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	limit := config.MaxBodies
	if limit <= 0 || limit > skeleton.MaxBodies {
		limit = skeleton.MaxBodies
	}
	if len(resp.Bodies) > limit {
		resp.Bodies = resp.Bodies[:limit]
	}

	bodies := make([]skeleton.Body, 0, len(resp.Bodies))
	for _, jb := range resp.Bodies {
		b, err := jb.toBody(config.MinConfidence)
		if err != nil {
			return nil, fmt.Errorf("body %d: %w", jb.ID, err)
		}
		bodies = append(bodies, b)
	}
	return bodies, nil
}

func (jb jsonBody) toBody(minConfidence float64) (skeleton.Body, error) {
	body := skeleton.Body{
		ID:      jb.ID,
		Tracked: jb.Tracked,
		Joints:  make(map[skeleton.JointType]skeleton.Joint, len(jb.Joints)),
	}

	for _, jj := range jb.Joints {
		jt, err := skeleton.ParseJointType(jj.Type)
		if err != nil {
			return skeleton.Body{}, err
		}
		if _, dup := body.Joints[jt]; dup {
			return skeleton.Body{}, fmt.Errorf("%w %v", ErrDuplicateJoint, jt)
		}

		var state skeleton.TrackingState
		switch {
		case jj.State != "":
			state, err = skeleton.ParseTrackingState(jj.State)
			if err != nil {
				return skeleton.Body{}, err
			}
		case jj.Confidence != nil:
			state = stateFromConfidence(*jj.Confidence, minConfidence)
		default:
			state = skeleton.Tracked
		}

		body.Joints[jt] = skeleton.Joint{
			Type:     jt,
			Position: skeleton.Point3D{X: jj.X, Y: jj.Y, Z: jj.Z},
			State:    state,
		}
	}

	return body, nil
}

func stateFromConfidence(confidence, min float64) skeleton.TrackingState {
	switch {
	case confidence <= 0:
		return skeleton.NotTracked
	case confidence < min:
		return skeleton.Inferred
	default:
		return skeleton.Tracked
	}
}

// pythonCommand runs script with the virtual environment's interpreter,
// falling back to python3 on PATH.
func pythonCommand(script string) *exec.Cmd {
	pythonPath := findVenvPython()
	if pythonPath == "" {
		pythonPath = "python3"
	}
	return exec.Command(pythonPath, script)
}

func findServiceScript() string {
	execPath, err := os.Executable()
	var execDir string
	if err == nil {
		execDir = filepath.Dir(execPath)
	}

	candidates := []string{
		filepath.Join("scripts", ServiceScript),
		filepath.Join("..", "scripts", ServiceScript),
		filepath.Join(execDir, "scripts", ServiceScript),
		filepath.Join(os.Getenv("HOME"), ".hotzone", "scripts", ServiceScript),
	}

	return firstExisting(candidates)
}

// findVenvPython looks for a Python interpreter in a virtual environment.
func findVenvPython() string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}
	execDir := filepath.Dir(execPath)

	candidates := []string{
		"venv/bin/python",
		"../venv/bin/python",
		filepath.Join(execDir, "venv/bin/python"),
		filepath.Join(os.Getenv("HOME"), ".hotzone/venv/bin/python"),
	}

	return firstExisting(candidates)
}

func firstExisting(candidates []string) string {
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			absPath, err := filepath.Abs(path)
			if err == nil {
				return absPath
			}
			return path
		}
	}
	return ""
}
