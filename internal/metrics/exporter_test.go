package metrics

import (
	"context"
	"errors"
	"sync"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"impostor/internal/app"
)

type fakeSource struct {
	mu      sync.RWMutex
	stats   app.Stats
	dropped uint64
}

func (f *fakeSource) Stats() app.Stats {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.stats
}

func (f *fakeSource) OutcomesDropped() uint64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.dropped
}

func TestExporterRegistersAndCollects(t *testing.T) {
	collector := NewCollector()
	t.Cleanup(func() { _ = collector.Shutdown(context.Background()) })

	src := &fakeSource{
		stats:   app.Stats{Joins: 4, RoundsResolved: 2, CivilianWins: 1, ImpostorWins: 1},
		dropped: 1,
	}

	exp, err := NewExporter(collector.Provider().Meter("impostor-test"), src)
	if err != nil {
		t.Fatalf("NewExporter failed: %v", err)
	}
	defer func() {
		if err := exp.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
	}()

	snapshot, err := collector.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}

	want := map[string]int64{
		"impostor_joins_total":            4,
		"impostor_rounds_resolved_total":  2,
		"impostor_civilian_wins_total":    1,
		"impostor_impostor_wins_total":    1,
		"impostor_outcomes_dropped_total": 1,
		"impostor_votes_total":            0,
	}
	for name, value := range want {
		if got, ok := snapshot[name]; !ok || got != value {
			t.Fatalf("%s = %d (present %v), want %d", name, got, ok, value)
		}
	}

	src.mu.Lock()
	src.stats.Joins = 7
	src.mu.Unlock()

	snapshot, err = collector.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if snapshot["impostor_joins_total"] != 7 {
		t.Fatalf("expected updated joins, got %d", snapshot["impostor_joins_total"])
	}
}

func TestExporterRejectsNilInputs(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	meter := provider.Meter("impostor-test")

	if _, err := NewExporter(meter, nil); !errors.Is(err, ErrNilSource) {
		t.Fatalf("expected ErrNilSource, got %v", err)
	}
	if _, err := NewExporter(nil, &fakeSource{}); !errors.Is(err, ErrNilMeter) {
		t.Fatalf("expected ErrNilMeter, got %v", err)
	}
}

func TestExporterCloseNil(t *testing.T) {
	var exp *Exporter
	if err := exp.Close(); err != nil {
		t.Fatalf("nil exporter Close returned %v", err)
	}
}
