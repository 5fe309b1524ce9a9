package core

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func testMetricsConfig() *MetricsConfig {
	return &MetricsConfig{
		Enabled:   true,
		Namespace: "test",
		Subsystem: "anim",
	}
}

func TestMetrics_RecordSequenceLoad(t *testing.T) {
	m := NewMetrics(testMetricsConfig(), prometheus.NewRegistry())

	m.RecordSequenceLoad(true)
	m.RecordSequenceLoad(true)
	m.RecordSequenceLoad(false)

	if got := testutil.ToFloat64(m.sequencesLoaded); got != 2 {
		t.Errorf("sequences loaded = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.loadFailures); got != 1 {
		t.Errorf("load failures = %v, want 1", got)
	}
}

func TestMetrics_Disabled(t *testing.T) {
	cfg := testMetricsConfig()
	cfg.Enabled = false
	m := NewMetrics(cfg, nil)

	m.RecordSequenceLoad(true)
	m.SetAnimatedInstances(4)

	if got := testutil.ToFloat64(m.sequencesLoaded); got != 0 {
		t.Errorf("disabled metrics recorded %v loads", got)
	}

	var nilMetrics *Metrics
	nilMetrics.RecordSequenceLoad(true)
	nilMetrics.Update(0.016)
	if nilMetrics.FPS() != 0 {
		t.Error("nil metrics should report 0 fps")
	}
}

func TestMetrics_FrameTiming(t *testing.T) {
	m := NewMetrics(testMetricsConfig(), nil)

	for i := 0; i < AVG_COUNT; i++ {
		m.Update(0.010)
	}
	if got := m.FrameTime(); got < 9.999 || got > 10.001 {
		t.Errorf("FrameTime = %v, want 10ms", got)
	}

	// 100 frames of 11ms crosses the one second boundary
	m = NewMetrics(testMetricsConfig(), nil)
	for i := 0; i < 100; i++ {
		m.Update(0.011)
	}
	if m.FPS() == 0 {
		t.Error("FPS was never computed")
	}
	if got := testutil.ToFloat64(m.framesPerSecond); got != m.FPS() {
		t.Errorf("fps gauge = %v, want %v", got, m.FPS())
	}
}

func TestEventSystem_RegisterFire(t *testing.T) {
	es := NewEventSystem()
	listener := "listener"

	var received EventContext
	calls := 0
	handler := func(code SystemEventCode, sender interface{}, l interface{}, data EventContext) bool {
		calls++
		received = data
		return true
	}

	if !es.Register(EVENT_CODE_SEQUENCE_LOADED, listener, handler) {
		t.Fatal("Register returned false")
	}
	if es.Register(EVENT_CODE_SEQUENCE_LOADED, listener, handler) {
		t.Error("duplicate listener should not register")
	}

	if !es.Fire(EVENT_CODE_SEQUENCE_LOADED, nil, EventContext{Name: "walk"}) {
		t.Error("Fire should report the event as handled")
	}
	if calls != 1 || received.Name != "walk" || received.Type != EVENT_CODE_SEQUENCE_LOADED {
		t.Errorf("handler got %d calls, context %+v", calls, received)
	}

	if es.Fire(EVENT_CODE_INSTANCE_CREATED, nil, EventContext{}) {
		t.Error("event without listeners reported handled")
	}

	if !es.Unregister(EVENT_CODE_SEQUENCE_LOADED, listener) {
		t.Error("Unregister returned false")
	}
	es.Fire(EVENT_CODE_SEQUENCE_LOADED, nil, EventContext{})
	if calls != 1 {
		t.Error("unregistered handler was called")
	}
}

func TestClock(t *testing.T) {
	now := time.Unix(100, 0)
	c := NewClock()
	c.now = func() time.Time { return now }

	c.Update()
	if c.Elapsed() != 0 {
		t.Error("stopped clock should not advance")
	}

	c.Start()
	now = now.Add(1500 * time.Millisecond)
	c.Update()
	if c.Elapsed() != 1.5 {
		t.Errorf("Elapsed = %v, want 1.5", c.Elapsed())
	}

	c.Stop()
	now = now.Add(time.Second)
	c.Update()
	if c.Elapsed() != 1.5 {
		t.Errorf("Elapsed after Stop = %v, want 1.5", c.Elapsed())
	}
}

func TestParseLogLevel(t *testing.T) {
	level, err := ParseLogLevel("debug")
	if err != nil || level != DebugLevel {
		t.Errorf("ParseLogLevel(debug) = %v, %v", level, err)
	}
	if _, err := ParseLogLevel("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}
