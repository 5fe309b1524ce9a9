package core

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spaghettifunk/anima-skeletal/engine/containers"
)

const AVG_COUNT int = 30

type MetricsConfig struct {
	Enabled       bool   `toml:"enabled"`
	Namespace     string `toml:"namespace"`
	Subsystem     string `toml:"subsystem"`
	ListenAddress string `toml:"listen_address"`
}

// Metrics tracks frame timing and animation bookkeeping. All methods are safe
// to call on a nil *Metrics.
type Metrics struct {
	config   *MetricsConfig
	registry *prometheus.Registry

	frameTimes         *containers.RingQueue[float64]
	msAvg              float64
	frames             int32
	accumulatedFrameMS float64
	fps                float64

	sequencesLoaded   prometheus.Counter
	loadFailures      prometheus.Counter
	animatedInstances prometheus.Gauge
	simulationTicks   prometheus.Counter
	framesPerSecond   prometheus.Gauge
	frameTimeMS       prometheus.Gauge
}

// NewMetrics registers the engine metrics on registry. If registry is nil a
// fresh one is created.
func NewMetrics(cfg *MetricsConfig, registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = "anima"
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = "animation"
	}

	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      name,
			Help:      help,
		})
	}
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      name,
			Help:      help,
		})
	}

	m := &Metrics{
		config:            cfg,
		registry:          registry,
		frameTimes:        containers.NewRingQueue[float64](AVG_COUNT),
		sequencesLoaded:   counter("sequences_loaded_total", "Number of sequences loaded and registered."),
		loadFailures:      counter("sequence_load_failures_total", "Number of sequence loads that failed."),
		animatedInstances: gauge("animated_instances", "Number of live animated instances."),
		simulationTicks:   counter("simulation_ticks_total", "Number of fixed simulation ticks run."),
		framesPerSecond:   gauge("frames_per_second", "Rendered frames over the last second."),
		frameTimeMS:       gauge("frame_time_ms", "Average frame time in milliseconds."),
	}

	registry.MustRegister(
		m.sequencesLoaded,
		m.loadFailures,
		m.animatedInstances,
		m.simulationTicks,
		m.framesPerSecond,
		m.frameTimeMS,
	)
	return m
}

func (m *Metrics) enabled() bool {
	return m != nil && m.config.Enabled
}

// Registry returns the registry the metrics were registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) RecordSequenceLoad(success bool) {
	if !m.enabled() {
		return
	}
	if success {
		m.sequencesLoaded.Inc()
	} else {
		m.loadFailures.Inc()
	}
}

func (m *Metrics) SetAnimatedInstances(count int) {
	if !m.enabled() {
		return
	}
	m.animatedInstances.Set(float64(count))
}

func (m *Metrics) RecordSimulationTick() {
	if !m.enabled() {
		return
	}
	m.simulationTicks.Inc()
}

// Update folds one frame's elapsed seconds into the frame time average and
// frames-per-second counters.
func (m *Metrics) Update(frameElapsedTime float64) {
	if !m.enabled() {
		return
	}

	// Calculate frame ms average
	frameMS := frameElapsedTime * 1000.0
	m.frameTimes.Push(frameMS)
	if m.frameTimes.IsFull() {
		sum := 0.0
		m.frameTimes.Each(func(v float64) { sum += v })
		m.msAvg = sum / float64(m.frameTimes.Len())
		m.frameTimeMS.Set(m.msAvg)
	}

	// Calculate Frames per second.
	m.accumulatedFrameMS += frameMS
	if m.accumulatedFrameMS > 1000 {
		m.fps = float64(m.frames)
		m.accumulatedFrameMS -= 1000
		m.frames = 0
		m.framesPerSecond.Set(m.fps)
	}

	// Count all Frames.
	m.frames++
}

func (m *Metrics) FPS() float64 {
	if m == nil {
		return 0
	}
	return m.fps
}

func (m *Metrics) FrameTime() float64 {
	if m == nil {
		return 0
	}
	return m.msAvg
}
