package telemetry

import (
	"log/slog"

	"go-power-towers/internal/energy"
	"go-power-towers/internal/event"
)

// Totals accumulates tick stats over a whole run.
type Totals struct {
	Ticks     uint64
	Generated float64
	Delivered float64
	Loss      float64
	Decayed   float64
	Consumed  float64
}

// LogValue implements slog.LogValuer for structured logging.
func (t Totals) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Uint64("ticks", t.Ticks),
		slog.Float64("generated", t.Generated),
		slog.Float64("delivered", t.Delivered),
		slog.Float64("loss", t.Loss),
		slog.Float64("decayed", t.Decayed),
		slog.Float64("consumed", t.Consumed),
	)
}

// Collector listens for network snapshots and writes every sampleEvery-th
// tick to the output.
type Collector struct {
	sampleEvery uint64
	out         *OutputManager
	logger      *slog.Logger

	totals  Totals
	last    TickRecord
	samples int
	err     error
}

// NewCollector creates a collector. out may be nil, in which case samples are
// only logged.
func NewCollector(sampleEvery int, out *OutputManager, logger *slog.Logger) *Collector {
	if sampleEvery < 1 {
		sampleEvery = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Collector{
		sampleEvery: uint64(sampleEvery),
		out:         out,
		logger:      logger.With("component", "telemetry"),
	}
}

// Attach subscribes the collector to d.
func (c *Collector) Attach(d *event.Dispatcher) {
	d.Subscribe(event.NetworkState, c)
}

// OnEvent implements event.Listener.
func (c *Collector) OnEvent(e event.Event) {
	s, ok := e.Data.(energy.NetworkState)
	if !ok {
		return
	}
	c.Record(s)
}

// Record folds one tick into the totals and samples it when due.
func (c *Collector) Record(s energy.NetworkState) {
	c.totals.Ticks++
	c.totals.Generated += s.Stats.Generated
	c.totals.Delivered += s.Stats.Delivered
	c.totals.Loss += s.Stats.Loss
	c.totals.Decayed += s.Stats.Decayed
	c.totals.Consumed += s.Stats.Consumed

	if s.Tick%c.sampleEvery != 0 {
		return
	}
	r := NewTickRecord(s)
	c.last = r
	c.samples++
	c.logger.Debug("sample", "record", r)

	if c.err != nil {
		return
	}
	if err := c.out.WriteTick(r); err != nil {
		c.fail(err)
		return
	}
	if err := c.out.WriteNodes(NewNodeRecords(s)); err != nil {
		c.fail(err)
	}
}

// fail keeps the first write error; later samples are no longer written.
func (c *Collector) fail(err error) {
	c.err = err
	c.logger.Error("telemetry write failed", "err", err)
}

func (c *Collector) Totals() Totals {
	return c.totals
}

// Last is the most recent sampled record.
func (c *Collector) Last() TickRecord {
	return c.last
}

func (c *Collector) Samples() int {
	return c.samples
}

// Err returns the first write error, if any.
func (c *Collector) Err() error {
	return c.err
}
