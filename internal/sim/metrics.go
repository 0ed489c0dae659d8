package sim

import (
	"context"
	"fmt"

	"github.com/fragd/server/internal/world"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/fragd/server/internal/sim"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// Metrics records simulation counters on the global OTel provider, which is
// a no-op unless one is configured. A nil *Metrics records nothing.
type Metrics struct {
	live    metric.Int64ObservableGauge
	ticks   metric.Int64Counter
	damage  metric.Int64Counter
	kills   metric.Int64Counter
	faults  metric.Int64Counter
	tickDur metric.Float64Histogram
}

func NewMetrics(objects *world.Store) (*Metrics, error) {
	m := meter()
	mt := &Metrics{}

	var err error
	mt.live, err = m.Int64ObservableGauge(
		"sim.objects.live",
		metric.WithDescription("Live objects in the arena"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating live gauge: %w", err)
	}
	_, err = m.RegisterCallback(
		func(ctx context.Context, o metric.Observer) error {
			o.ObserveInt64(mt.live, int64(objects.Pool().Live()))
			return nil
		},
		mt.live,
	)
	if err != nil {
		return nil, fmt.Errorf("registering live callback: %w", err)
	}

	mt.ticks, err = m.Int64Counter(
		"sim.ticks",
		metric.WithDescription("Simulation ticks run"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating tick counter: %w", err)
	}
	mt.damage, err = m.Int64Counter(
		"sim.damage.applied",
		metric.WithDescription("Health removed by the combat pipeline"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating damage counter: %w", err)
	}
	mt.kills, err = m.Int64Counter(
		"sim.kills",
		metric.WithDescription("Death transitions"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating kill counter: %w", err)
	}
	mt.faults, err = m.Int64Counter(
		"sim.faults",
		metric.WithDescription("Behaviors aborted by a contract violation"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating fault counter: %w", err)
	}
	mt.tickDur, err = m.Float64Histogram(
		"sim.tick.duration",
		metric.WithDescription("Wall time spent in one tick"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating tick histogram: %w", err)
	}
	return mt, nil
}

func (m *Metrics) Tick(ms float64) {
	if m == nil {
		return
	}
	m.ticks.Add(context.Background(), 1)
	m.tickDur.Record(context.Background(), ms)
}

func (m *Metrics) Damage(amount int, cause world.Cause) {
	if m == nil || amount <= 0 {
		return
	}
	m.damage.Add(context.Background(), int64(amount),
		metric.WithAttributes(attribute.String("cause", string(cause))))
}

func (m *Metrics) Kill(cause world.Cause) {
	if m == nil {
		return
	}
	m.kills.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("cause", string(cause))))
}

func (m *Metrics) Fault(op string) {
	if m == nil {
		return
	}
	m.faults.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("op", op)))
}
