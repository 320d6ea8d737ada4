package inference

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"math"
	"os"
	"strings"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

const roleCount = 3

// Engine runs the three-view airway difficulty model from an ONNX
// checkpoint. The session is created at most once per process; until it
// loads, callers should serve placeholder output instead.
type Engine struct {
	mu sync.Mutex

	checkpointPath string
	libPath        string
	imageSize      int

	session *ort.AdvancedSession
	inputs  []*ort.Tensor[float32]
	output  *ort.Tensor[float32]
	binding [roleCount]int // role -> declared input position
	loaded  bool
}

// NewEngine creates an engine that loads the checkpoint lazily on first
// use, or eagerly via Load.
func NewEngine(checkpointPath, onnxLibPath string, imageSize int) *Engine {
	if imageSize <= 0 {
		imageSize = 224
	}
	return &Engine{
		checkpointPath: checkpointPath,
		libPath:        onnxLibPath,
		imageSize:      imageSize,
	}
}

// CheckpointExists reports whether the checkpoint file is on disk.
func (e *Engine) CheckpointExists() bool {
	_, err := os.Stat(e.checkpointPath)
	return err == nil
}

// Available reports whether the session is loaded and ready to serve.
func (e *Engine) Available() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loaded
}

// Load initializes the ONNX session. Calling it again after a successful
// load is a no-op.
func (e *Engine) Load() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loadLocked()
}

func (e *Engine) loadLocked() error {
	if e.loaded {
		return nil
	}

	if _, err := os.Stat(e.checkpointPath); err != nil {
		return fmt.Errorf("model checkpoint not found at %s: %w", e.checkpointPath, err)
	}

	if e.libPath != "" {
		ort.SetSharedLibraryPath(e.libPath)
	}
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return fmt.Errorf("onnx init environment: %w", err)
		}
	}

	inputs, outputs, err := ort.GetInputOutputInfo(e.checkpointPath)
	if err != nil {
		return fmt.Errorf("onnx get input/output info: %w", err)
	}
	if len(inputs) != roleCount {
		return fmt.Errorf("checkpoint declares %d inputs, want %d (front, open, lateral)", len(inputs), roleCount)
	}
	if len(outputs) == 0 {
		return fmt.Errorf("checkpoint declares no outputs")
	}

	inputNames := make([]string, len(inputs))
	for i := range inputs {
		inputNames[i] = inputs[i].Name
	}
	e.binding = bindInputs(inputNames)

	shape := ort.NewShape(1, 3, int64(e.imageSize), int64(e.imageSize))
	tensors := make([]*ort.Tensor[float32], 0, roleCount)
	destroyAll := func() {
		for _, t := range tensors {
			t.Destroy()
		}
	}
	for i := 0; i < roleCount; i++ {
		t, err := ort.NewEmptyTensor[float32](shape)
		if err != nil {
			destroyAll()
			return fmt.Errorf("onnx new input tensor: %w", err)
		}
		tensors = append(tensors, t)
	}

	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 2))
	if err != nil {
		destroyAll()
		return fmt.Errorf("onnx new output tensor: %w", err)
	}

	values := make([]ort.Value, len(tensors))
	for i, t := range tensors {
		values[i] = t
	}
	session, err := ort.NewAdvancedSession(e.checkpointPath, inputNames, outputNames(outputs),
		values, []ort.Value{outputTensor}, nil)
	if err != nil {
		outputTensor.Destroy()
		destroyAll()
		return fmt.Errorf("onnx new session: %w", err)
	}

	e.inputs = tensors
	e.output = outputTensor
	e.session = session
	e.loaded = true
	return nil
}

func outputNames(outputs []ort.InputOutputInfo) []string {
	// Only the logit output matters; take the first declared one.
	return []string{outputs[0].Name}
}

// bindInputs maps the front/open/lateral roles onto the checkpoint's
// declared inputs: by name when the exporter kept the view names, by
// position otherwise.
func bindInputs(names []string) [roleCount]int {
	binding := [roleCount]int{-1, -1, -1}
	used := make([]bool, len(names))

	for pos, name := range names {
		lower := strings.ToLower(name)
		switch {
		case strings.Contains(lower, "front") && binding[0] < 0:
			binding[0] = pos
			used[pos] = true
		case strings.Contains(lower, "open") && binding[1] < 0:
			binding[1] = pos
			used[pos] = true
		case strings.Contains(lower, "lat") && binding[2] < 0:
			binding[2] = pos
			used[pos] = true
		}
	}

	next := 0
	for r := 0; r < roleCount; r++ {
		if binding[r] >= 0 {
			continue
		}
		for used[next] {
			next++
		}
		binding[r] = next
		used[next] = true
	}
	return binding
}

// Predict runs the model over the front, open-mouth, and lateral views
// and returns the difficulty probability in [0,1]. Calls serialize on
// the engine mutex since the session tensors are shared.
func (e *Engine) Predict(front, open, lateral image.Image) (float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.loadLocked(); err != nil {
		return 0, err
	}

	views := [roleCount]image.Image{front, open, lateral}
	for role, img := range views {
		data := preprocess(img, e.imageSize)
		dst := e.inputs[e.binding[role]].GetData()
		if len(dst) != len(data) {
			return 0, fmt.Errorf("input tensor size %d does not match preprocessed size %d", len(dst), len(data))
		}
		copy(dst, data)
	}

	if err := e.session.Run(); err != nil {
		return 0, fmt.Errorf("inference failed: %w", err)
	}

	logits := e.output.GetData()
	if len(logits) < 2 {
		return 0, fmt.Errorf("unexpected model output size %d", len(logits))
	}
	return softmaxDifficult(logits[0], logits[1]), nil
}

// softmaxDifficult returns P(difficult) for an (easy, difficult) logit
// pair.
func softmaxDifficult(easy, difficult float32) float64 {
	a, b := float64(easy), float64(difficult)
	m := math.Max(a, b)
	ea, eb := math.Exp(a-m), math.Exp(b-m)
	return eb / (ea + eb)
}

// DecodeImage decodes one uploaded image (JPEG or PNG) from r.
func DecodeImage(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, err
	}
	return img, nil
}

// Close releases the session and tensors. Safe on an engine that never
// loaded.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, t := range e.inputs {
		t.Destroy()
	}
	e.inputs = nil
	if e.output != nil {
		e.output.Destroy()
		e.output = nil
	}
	if e.session != nil {
		e.session.Destroy()
		e.session = nil
	}
	if e.loaded {
		ort.DestroyEnvironment()
		e.loaded = false
	}
}
