package telemetry

import (
	"log/slog"

	"go-power-towers/internal/energy"
)

// TickRecord is one network.csv row.
type TickRecord struct {
	Tick    uint64  `csv:"tick"`
	SimTime float64 `csv:"sim_time"`

	// Totals over the sampled tick
	Generated float64 `csv:"generated"`
	Delivered float64 `csv:"delivered"`
	Loss      float64 `csv:"transfer_loss"`
	Decayed   float64 `csv:"decayed"`
	Consumed  float64 `csv:"consumed"`

	// Network state at the end of the tick
	Nodes             int     `csv:"nodes"`
	Connections       int     `csv:"connections"`
	ActiveConnections int     `csv:"active_connections"`
	Consumers         int     `csv:"consumers"`
	PoweredConsumers  int     `csv:"powered_consumers"`
	TotalGeneration   float64 `csv:"total_generation"`
	TotalStored       float64 `csv:"total_stored"`
	TotalCapacity     float64 `csv:"total_capacity"`
	FillPercent       float64 `csv:"fill_percent"`
}

// NewTickRecord summarises a network snapshot.
func NewTickRecord(s energy.NetworkState) TickRecord {
	r := TickRecord{
		Tick:            s.Tick,
		SimTime:         s.SimTime,
		Generated:       s.Stats.Generated,
		Delivered:       s.Stats.Delivered,
		Loss:            s.Stats.Loss,
		Decayed:         s.Stats.Decayed,
		Consumed:        s.Stats.Consumed,
		Nodes:           len(s.Nodes),
		Connections:     len(s.Connections),
		TotalGeneration: s.TotalGeneration,
		TotalStored:     s.TotalStored,
		TotalCapacity:   s.TotalCapacity,
	}
	for _, c := range s.Connections {
		if c.Active {
			r.ActiveConnections++
		}
	}
	for _, n := range s.Nodes {
		if n.NodeType != energy.CategoryConsumer {
			continue
		}
		r.Consumers++
		if n.Powered {
			r.PoweredConsumers++
		}
	}
	if s.TotalCapacity > 0 {
		r.FillPercent = s.TotalStored / s.TotalCapacity * 100
	}
	return r
}

// LogValue implements slog.LogValuer for structured logging.
func (r TickRecord) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Uint64("tick", r.Tick),
		slog.Float64("sim_time", r.SimTime),
		slog.Float64("generated", r.Generated),
		slog.Float64("delivered", r.Delivered),
		slog.Float64("loss", r.Loss),
		slog.Float64("consumed", r.Consumed),
		slog.Int("connections", r.Connections),
		slog.Int("active", r.ActiveConnections),
		slog.Int("powered", r.PoweredConsumers),
		slog.Int("consumers", r.Consumers),
		slog.Float64("fill_pct", r.FillPercent),
	)
}

// NodeRecord is one nodes.csv row.
type NodeRecord struct {
	Tick        uint64  `csv:"tick"`
	ID          uint64  `csv:"id"`
	Type        string  `csv:"type"`
	Category    string  `csv:"category"`
	GridX       int     `csv:"grid_x"`
	GridY       int     `csv:"grid_y"`
	Stored      float64 `csv:"stored"`
	Capacity    float64 `csv:"capacity"`
	FillPercent float64 `csv:"fill_percent"`
	Level       int     `csv:"level"`
	XP          int     `csv:"xp"`
	Generation  float64 `csv:"generation"`
	Efficiency  float64 `csv:"efficiency"`
	Powered     bool    `csv:"powered"`
	PowerLevel  float64 `csv:"power_level"`
}

// NewNodeRecords flattens the node snapshots of s.
func NewNodeRecords(s energy.NetworkState) []NodeRecord {
	out := make([]NodeRecord, 0, len(s.Nodes))
	for _, n := range s.Nodes {
		out = append(out, NodeRecord{
			Tick:        s.Tick,
			ID:          uint64(n.ID),
			Type:        n.Type,
			Category:    string(n.NodeType),
			GridX:       n.GridX,
			GridY:       n.GridY,
			Stored:      n.Stored,
			Capacity:    n.Capacity,
			FillPercent: n.FillPercent,
			Level:       n.Level,
			XP:          n.XP,
			Generation:  n.Generation,
			Efficiency:  n.Efficiency,
			Powered:     n.Powered,
			PowerLevel:  n.PowerLevel,
		})
	}
	return out
}
