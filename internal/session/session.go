package session

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/ironsheep/vision-demo-mcp/internal/config"
	"github.com/ironsheep/vision-demo-mcp/internal/cverr"
	"github.com/ironsheep/vision-demo-mcp/internal/events"
	"github.com/ironsheep/vision-demo-mcp/internal/pipeline"
	"github.com/ironsheep/vision-demo-mcp/internal/vision"
)

// NoDetectionsMessage is shown when a detection run finds nothing above the
// threshold.
const NoDetectionsMessage = "No objects detected with current confidence threshold."

// Models are the selected model ids.
type Models struct {
	Detection      string `json:"detection"`
	Classification string `json:"classification"`
}

// Settings are the user-adjustable parameters of a session.
type Settings struct {
	ConfidenceThreshold float64 `json:"confidence_threshold"`
	Models              Models  `json:"models"`
}

// Snapshot is an immutable copy of the session state.
type Snapshot struct {
	Image           *vision.ImageRef
	Detections      []vision.DetectionResult
	Classifications []vision.ClassificationResult
	Analysis        *vision.Analysis
	Settings        Settings
	Processing      bool
}

// ImageName returns the active image's file name, or "" without an image.
func (s Snapshot) ImageName() string {
	if s.Image == nil {
		return ""
	}
	return s.Image.FileName
}

// Options configures New. Zero fields get defaults.
type Options struct {
	Config    *config.Config
	Runner    *pipeline.Runner
	Bus       *events.Bus
	Generator *vision.Generator
	Logger    *slog.Logger
}

// Session is the owned handle of one workbench session.
type Session struct {
	cfg    *config.Config
	runner *pipeline.Runner
	bus    *events.Bus
	gen    *vision.Generator
	logger *slog.Logger

	gate pipeline.Flag

	mu              sync.RWMutex
	image           *vision.ImageRef
	detections      []vision.DetectionResult
	classifications []vision.ClassificationResult
	analysis        *vision.Analysis
	settings        Settings
}

// New creates an empty session.
func New(opts Options) *Session {
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Runner == nil {
		opts.Runner = pipeline.NewRunner(pipeline.WithLogger(opts.Logger))
	}
	if opts.Bus == nil {
		opts.Bus = events.New()
	}
	if opts.Generator == nil {
		opts.Generator = vision.NewGenerator(nil)
	}

	return &Session{
		cfg:    opts.Config,
		runner: opts.Runner,
		bus:    opts.Bus,
		gen:    opts.Generator,
		logger: opts.Logger,
		settings: Settings{
			ConfidenceThreshold: opts.Config.Defaults.ConfidenceThreshold,
			Models: Models{
				Detection:      opts.Config.Defaults.DetectionModel,
				Classification: opts.Config.Defaults.ClassificationModel,
			},
		},
	}
}

// Bus returns the session's event bus.
func (s *Session) Bus() *events.Bus { return s.bus }

// Ingest validates an upload and makes it the active image. A rejected
// upload publishes an error notification and leaves the session unchanged.
func (s *Session) Ingest(name string, data []byte, declaredMIME string) (*vision.ImageRef, error) {
	ref, err := NewImageRef(name, data, declaredMIME)
	return s.activate(ref, err)
}

// LoadFile reads an image from disk and makes it the active image.
func (s *Session) LoadFile(path string) (*vision.ImageRef, error) {
	ref, err := ReadImageFile(path)
	return s.activate(ref, err)
}

func (s *Session) activate(ref *vision.ImageRef, err error) (*vision.ImageRef, error) {
	if err != nil {
		s.bus.Notify(cverr.UserMessage(err), events.SeverityError)
		return nil, err
	}

	s.mu.Lock()
	s.image = ref
	s.analysis = nil
	s.mu.Unlock()

	s.logger.Info("image loaded", "id", ref.ID, "file", ref.FileName, "size", ref.Size, "mime", ref.MimeType)
	out := *ref
	return &out, nil
}

// Image returns a copy of the active image, or nil.
func (s *Session) Image() *vision.ImageRef {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.image == nil {
		return nil
	}
	out := *s.image
	return &out
}

// Settings returns the current settings.
func (s *Session) Settings() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// SetThreshold sets the detection confidence threshold, which must be in
// [0, 1].
func (s *Session) SetThreshold(t float64) error {
	if t < 0 || t > 1 {
		return cverr.New(cverr.KindInvalidInput, "settings",
			fmt.Sprintf("confidence threshold must be within [0,1], got %g", t))
	}
	s.mu.Lock()
	s.settings.ConfidenceThreshold = t
	s.mu.Unlock()
	return nil
}

// SetModels selects model ids. Empty arguments keep the current choice.
func (s *Session) SetModels(detection, classification string) {
	s.mu.Lock()
	if detection != "" {
		s.settings.Models.Detection = detection
	}
	if classification != "" {
		s.settings.Models.Classification = classification
	}
	models := s.settings.Models
	s.mu.Unlock()

	s.logger.Debug("models updated", "detection", models.Detection, "classification", models.Classification)
}

// IsProcessing reports whether a pipeline is in flight.
func (s *Session) IsProcessing() bool {
	return s.gate.Busy()
}

// Begin acquires the processing flag. It reports false when a run is
// already in flight.
func (s *Session) Begin() bool { return s.gate.Begin() }

// End releases the processing flag.
func (s *Session) End() { s.gate.End() }

// Snapshot copies the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Detections:      slices.Clone(s.detections),
		Classifications: slices.Clone(s.classifications),
		Settings:        s.settings,
		Processing:      s.gate.Busy(),
	}
	if s.image != nil {
		img := *s.image
		snap.Image = &img
	}
	if s.analysis != nil {
		a := *s.analysis
		snap.Analysis = &a
	}
	return snap
}

// Detect runs the detection pipeline and replaces the detection results.
func (s *Session) Detect(ctx context.Context, obs pipeline.Observer) ([]vision.DetectionResult, error) {
	s.mu.RLock()
	hasImage := s.image != nil
	threshold := s.settings.ConfidenceThreshold
	model := s.settings.Models.Detection
	s.mu.RUnlock()

	def := pipeline.Detection(s.cfg.DetectionStepDelay())
	if !hasImage {
		return nil, cverr.New(cverr.KindSkipped, def.Name, "no active image")
	}

	var results []vision.DetectionResult
	err := s.run(ctx, def, obs, func() error {
		results = s.gen.Detections(threshold, model)
		s.mu.Lock()
		s.detections = results
		s.mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(results) == 0 {
		s.bus.Notify(NoDetectionsMessage, events.SeverityInfo)
	}
	return slices.Clone(results), nil
}

// Classify runs the classification pipeline and replaces the
// classification results.
func (s *Session) Classify(ctx context.Context, obs pipeline.Observer) ([]vision.ClassificationResult, error) {
	s.mu.RLock()
	hasImage := s.image != nil
	model := s.settings.Models.Classification
	s.mu.RUnlock()

	def := pipeline.Classification(s.cfg.ClassificationStepDelay())
	if !hasImage {
		return nil, cverr.New(cverr.KindSkipped, def.Name, "no active image")
	}

	var results []vision.ClassificationResult
	err := s.run(ctx, def, obs, func() error {
		results = s.gen.Classifications(model)
		s.mu.Lock()
		s.classifications = results
		s.mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return slices.Clone(results), nil
}

// run executes def under the session gate, mirroring progress onto the bus
// and reporting failures as notifications.
func (s *Session) run(ctx context.Context, def pipeline.Definition, obs pipeline.Observer, produce func() error) error {
	gate := &announcingGate{
		inner: s,
		started: func() {
			s.bus.PublishRun(events.RunEvent{Pipeline: def.Name, Phase: events.RunStarted})
		},
	}

	observer := pipeline.ObserverFunc(func(p pipeline.Progress) {
		s.bus.PublishProgress(events.Progress{
			Pipeline: def.Name,
			Label:    p.Label,
			Percent:  p.Percent,
			Index:    p.Index,
			Total:    p.Total,
		})
		if obs != nil {
			obs.OnProgress(p)
		}
	})

	err := s.runner.Run(ctx, def, gate, observer, produce)
	switch {
	case err == nil:
		s.bus.PublishRun(events.RunEvent{Pipeline: def.Name, Phase: events.RunFinished})
	case cverr.IsKind(err, cverr.KindSkipped):
		// silent
	default:
		s.bus.PublishRun(events.RunEvent{Pipeline: def.Name, Phase: events.RunFailed, Error: err.Error()})
		s.bus.Notify(cverr.UserMessage(err), events.SeverityError)
	}
	return err
}

// announcingGate publishes a run-started event when the gate is acquired.
type announcingGate struct {
	inner   pipeline.Gate
	started func()
}

func (g *announcingGate) Begin() bool {
	if !g.inner.Begin() {
		return false
	}
	g.started()
	return true
}

func (g *announcingGate) End() { g.inner.End() }

// Analyze returns the analysis panel for the active image, computing and
// caching it on first use.
func (s *Session) Analyze() (vision.Analysis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.image == nil {
		return vision.Analysis{}, cverr.New(cverr.KindSkipped, "analyze", "no active image")
	}
	if s.analysis == nil {
		a := vision.NewAnalysis(*s.image)
		s.analysis = &a
	}
	return *s.analysis, nil
}

// Summary returns the results summary panel.
func (s *Session) Summary() vision.Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return vision.NewSummary(s.image, len(s.detections), len(s.classifications),
		s.settings.Models.Detection, s.settings.Models.Classification)
}
