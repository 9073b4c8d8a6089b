package metrics

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/metric"

	"impostor/internal/app"
)

var (
	ErrNilMeter  = errors.New("nil meter")
	ErrNilSource = errors.New("nil stats source")
)

// StatsSource is read on every collection
type StatsSource interface {
	Stats() app.Stats
	OutcomesDropped() uint64
}

type counterDef struct {
	name  string
	help  string
	value func(app.Stats) uint64
}

var counterDefs = []counterDef{
	{"impostor_joins_total", "Participants admitted to the lobby.", func(s app.Stats) uint64 { return s.Joins }},
	{"impostor_joins_rejected_total", "Join attempts rejected by the room.", func(s app.Stats) uint64 { return s.RejectedJoins }},
	{"impostor_rounds_started_total", "Rounds dealt.", func(s app.Stats) uint64 { return s.RoundsStarted }},
	{"impostor_rounds_resolved_total", "Rounds resolved by a full vote.", func(s app.Stats) uint64 { return s.RoundsResolved }},
	{"impostor_civilian_wins_total", "Rounds where the impostor was caught.", func(s app.Stats) uint64 { return s.CivilianWins }},
	{"impostor_impostor_wins_total", "Rounds where the impostor got away.", func(s app.Stats) uint64 { return s.ImpostorWins }},
	{"impostor_votes_total", "Votes recorded.", func(s app.Stats) uint64 { return s.Votes }},
	{"impostor_restarts_total", "Returns to the lobby.", func(s app.Stats) uint64 { return s.Restarts }},
	{"impostor_disconnects_total", "Participants who left the room.", func(s app.Stats) uint64 { return s.Disconnects }},
}

type observedCounter struct {
	def        counterDef
	instrument metric.Int64ObservableCounter
}

// Exporter publishes session counters as OpenTelemetry observable counters
type Exporter struct {
	source       StatsSource
	registration metric.Registration
	counters     []observedCounter
	dropped      metric.Int64ObservableCounter
}

func NewExporter(meter metric.Meter, source StatsSource) (*Exporter, error) {
	if meter == nil {
		return nil, ErrNilMeter
	}
	if source == nil {
		return nil, ErrNilSource
	}

	exporter := &Exporter{
		source:   source,
		counters: make([]observedCounter, 0, len(counterDefs)),
	}

	observables := make([]metric.Observable, 0, len(counterDefs)+1)

	for _, def := range counterDefs {
		ins, err := meter.Int64ObservableCounter(def.name, metric.WithDescription(def.help))
		if err != nil {
			return nil, fmt.Errorf("create observable counter %s: %w", def.name, err)
		}
		exporter.counters = append(exporter.counters, observedCounter{def: def, instrument: ins})
		observables = append(observables, ins)
	}

	dropped, err := meter.Int64ObservableCounter(
		"impostor_outcomes_dropped_total",
		metric.WithDescription("Outcomes dropped because the history queue was full."),
	)
	if err != nil {
		return nil, fmt.Errorf("create dropped outcomes counter: %w", err)
	}
	exporter.dropped = dropped
	observables = append(observables, dropped)

	registration, err := meter.RegisterCallback(func(_ context.Context, observer metric.Observer) error {
		stats := exporter.source.Stats()
		for _, c := range exporter.counters {
			observer.ObserveInt64(c.instrument, int64(c.def.value(stats)))
		}
		observer.ObserveInt64(exporter.dropped, int64(exporter.source.OutcomesDropped()))
		return nil
	}, observables...)
	if err != nil {
		return nil, fmt.Errorf("register callback: %w", err)
	}

	exporter.registration = registration
	return exporter, nil
}

func (e *Exporter) Close() error {
	if e == nil || e.registration == nil {
		return nil
	}
	return e.registration.Unregister()
}
