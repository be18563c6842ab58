package inference

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/df07/go-radiance-estimator/pkg/log"
	ort "github.com/yalue/onnxruntime_go"
)

// LibraryPathEnv names the environment variable consulted when no ONNX
// Runtime shared library path is given explicitly
const LibraryPathEnv = "ONNXRUNTIME_SHARED_LIBRARY_PATH"

// drainTimeout bounds how long Close waits for in-flight model calls
const drainTimeout = 5 * time.Second

// ErrInferenceInFlight is returned by ShutdownONNX while a closed session
// still has a model call running
var ErrInferenceInFlight = errors.New("inference calls still running")

var (
	environmentMu sync.Mutex

	// Sessions closed while a call was still running; they destroy
	// themselves once it returns
	abandonedSessions atomic.Int32
)

// initializeEnvironment sets up the process-wide ONNX Runtime environment once
func initializeEnvironment(libPath string) error {
	environmentMu.Lock()
	defer environmentMu.Unlock()

	if ort.IsInitialized() {
		return nil
	}
	if libPath == "" {
		libPath = os.Getenv(LibraryPathEnv)
	}
	if libPath != "" {
		ort.SetSharedLibraryPath(libPath)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("failed to initialize ONNX Runtime: %w", err)
	}
	return nil
}

// ShutdownONNX releases the ONNX Runtime environment. Sessions must be
// closed first. The environment is kept while an abandoned call is running.
func ShutdownONNX() error {
	environmentMu.Lock()
	defer environmentMu.Unlock()

	if !ort.IsInitialized() {
		return nil
	}
	if n := abandonedSessions.Load(); n > 0 {
		return fmt.Errorf("%w in %d closed session(s)", ErrInferenceInFlight, n)
	}
	return ort.DestroyEnvironment()
}

// graphRunner is the part of *ort.DynamicAdvancedSession a session drives
type graphRunner interface {
	Run(inputs, outputs []ort.Value) error
	Destroy() error
}

// ONNXSession runs the radiance model through ONNX Runtime. It implements
// both Session and BatchSession.
type ONNXSession struct {
	session graphRunner
	logger  log.Logger

	// Dimensions declared by the graph, by input name. Dynamic axes are <= 0.
	inputDims map[string]ort.Shape

	drainTimeout time.Duration

	mu       sync.Mutex
	closed   bool
	inflight sync.WaitGroup
}

// LoadONNXSession loads the model graph at modelPath. libPath may be empty,
// in which case LibraryPathEnv or the platform default is used.
func LoadONNXSession(modelPath, libPath string, intraOpThreads int, logger log.Logger) (*ONNXSession, error) {
	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("model file: %w", err)
	}
	if err := initializeEnvironment(libPath); err != nil {
		return nil, err
	}

	inputDims, err := readInputDims(modelPath, logger)
	if err != nil {
		return nil, err
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("failed to create session options: %w", err)
	}
	defer options.Destroy()
	if intraOpThreads > 0 {
		if err := options.SetIntraOpNumThreads(intraOpThreads); err != nil {
			return nil, fmt.Errorf("failed to set intra-op threads: %w", err)
		}
	}

	session, err := ort.NewDynamicAdvancedSession(modelPath, InputNames, []string{OutputName}, options)
	if err != nil {
		return nil, fmt.Errorf("failed to create session for %s: %w", modelPath, err)
	}
	return &ONNXSession{
		session:      session,
		logger:       logger,
		inputDims:    inputDims,
		drainTimeout: drainTimeout,
	}, nil
}

// readInputDims reads the declared shape of every model input and checks
// that the graph has all of InputNames
func readInputDims(modelPath string, logger log.Logger) (map[string]ort.Shape, error) {
	inputs, _, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read model inputs: %w", err)
	}

	dims := make(map[string]ort.Shape, len(inputs))
	for _, info := range inputs {
		dims[info.Name] = info.Dimensions
	}
	for _, name := range InputNames {
		d, ok := dims[name]
		if !ok {
			return nil, fmt.Errorf("model has no input %q", name)
		}
		if len(d) == 0 {
			logger.Warningf("model input %q is rank-0, which the runtime binding cannot build; feeding it as [1]", name)
		}
		logger.Debugf("model input %q declared as %v", name, d)
	}
	return dims, nil
}

// Run evaluates one request
func (s *ONNXSession) Run(ctx context.Context, req Request) ([]float32, error) {
	return s.run(ctx, EncodeFeeds(req))
}

// RunBatch evaluates reqs as one [n,...] batch
func (s *ONNXSession) RunBatch(ctx context.Context, reqs []Request) ([][]float32, error) {
	feeds, err := EncodeBatchFeeds(reqs)
	if err != nil {
		return nil, err
	}
	out, err := s.run(ctx, feeds)
	if err != nil {
		return nil, err
	}
	return SplitBatchOutput(out, len(reqs))
}

type runResult struct {
	out []float32
	err error
}

// run executes the graph on a separate goroutine so that ctx can abandon a
// call that does not return. The goroutine owns the tensors and releases
// them when the runtime finishes.
func (s *ONNXSession) run(ctx context.Context, feeds []Feed) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrSessionClosed
	}
	s.inflight.Add(1)
	s.mu.Unlock()

	inputs, err := newInputValues(feeds, s.inputDims)
	if err != nil {
		s.inflight.Done()
		return nil, err
	}

	done := make(chan runResult, 1)
	go func() {
		defer s.inflight.Done()
		defer destroyValues(inputs)

		outputs := []ort.Value{nil}
		if err := s.session.Run(inputs, outputs); err != nil {
			done <- runResult{err: fmt.Errorf("run failed: %w", err)}
			return
		}
		defer destroyValues(outputs)

		tensor, ok := outputs[0].(*ort.Tensor[float32])
		if !ok {
			done <- runResult{err: fmt.Errorf("output %q has type %T, want float32 tensor", OutputName, outputs[0])}
			return
		}
		// Copy out before the tensor is destroyed
		data := tensor.GetData()
		out := make([]float32, len(data))
		copy(out, data)
		done <- runResult{out: out}
	}()

	select {
	case result := <-done:
		return result.out, result.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close rejects new runs and destroys the session once in-flight runs have
// finished. If they do not finish within the drain timeout, Close returns
// and the last of them destroys the session.
func (s *ONNXSession) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	if waitTimeout(&s.inflight, s.drainTimeout) {
		return s.session.Destroy()
	}

	s.logger.Warningf("model call still running %v after close; releasing the session when it returns", s.drainTimeout)
	abandonedSessions.Add(1)
	go func() {
		defer abandonedSessions.Add(-1)
		s.inflight.Wait()
		if err := s.session.Destroy(); err != nil {
			s.logger.Warningf("failed to destroy session: %v", err)
		}
	}()
	return nil
}

// bindShape returns the tensor shape for feed under the dimensions the graph
// declares for its input. Dynamic axes are sized so the tensor holds exactly
// the feed's values. The binding cannot build rank-0 tensors, so a scalar
// feed declared rank-0 (or undeclared) becomes [1]. A feed that cannot fit
// the declaration keeps its own shape and the runtime reports the mismatch.
func bindShape(feed Feed, declared []int64) []int64 {
	count := int64(len(feed.Float32) + len(feed.Strings))
	fallback := feed.Shape
	if len(fallback) == 0 {
		fallback = []int64{count}
	}
	if len(declared) == 0 {
		return fallback
	}

	shape := make([]int64, len(declared))
	dynamic := -1
	fixed := int64(1)
	for i, d := range declared {
		switch {
		case d > 0:
			shape[i] = d
			fixed *= d
		case dynamic < 0:
			dynamic = i
		default:
			shape[i] = 1
		}
	}
	if dynamic >= 0 {
		if count%fixed != 0 {
			return fallback
		}
		shape[dynamic] = count / fixed
		return shape
	}
	if fixed != count {
		return fallback
	}
	return shape
}

func newInputValues(feeds []Feed, inputDims map[string]ort.Shape) ([]ort.Value, error) {
	values := make([]ort.Value, 0, len(feeds))
	for _, feed := range feeds {
		shape := ort.NewShape(bindShape(feed, inputDims[feed.Name])...)
		value, err := newInputValue(feed, shape)
		if err != nil {
			destroyValues(values)
			return nil, fmt.Errorf("input %q: %w", feed.Name, err)
		}
		values = append(values, value)
	}
	return values, nil
}

func newInputValue(feed Feed, shape ort.Shape) (ort.Value, error) {
	if feed.Strings != nil {
		tensor, err := ort.NewStringTensor(shape)
		if err != nil {
			return nil, err
		}
		if err := tensor.SetContents(feed.Strings); err != nil {
			tensor.Destroy()
			return nil, err
		}
		return tensor, nil
	}
	return ort.NewTensor(shape, feed.Float32)
}

func destroyValues(values []ort.Value) {
	for _, v := range values {
		if v != nil {
			v.Destroy()
		}
	}
}

// waitTimeout waits for wg and reports whether it finished within timeout
func waitTimeout(wg *sync.WaitGroup, timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}
