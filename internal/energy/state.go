package energy

import (
	"log/slog"

	"go-power-towers/internal/event"
	"go-power-towers/internal/types"
)

// NodeState is the per-node render snapshot.
type NodeState struct {
	ID             types.EntityID `json:"id"`
	Type           string         `json:"type"`
	NodeType       Category       `json:"node_type"`
	Kind           string         `json:"kind"`
	GridX          int            `json:"grid_x"`
	GridY          int            `json:"grid_y"`
	WorldX         float64        `json:"world_x"`
	WorldY         float64        `json:"world_y"`
	Stored         float64        `json:"stored"`
	Capacity       float64        `json:"capacity"`
	InputRate      float64        `json:"input_rate"`
	OutputRate     float64        `json:"output_rate"`
	Range          float64        `json:"range"`
	InputChannels  int            `json:"input_channels"`
	OutputChannels int            `json:"output_channels"`
	UsedInputs     int            `json:"used_inputs"`
	UsedOutputs    int            `json:"used_outputs"`
	Level          int            `json:"level"`
	XP             int            `json:"xp"`
	FillPercent    float64        `json:"fill_percent"`

	Generation float64 `json:"generation,omitempty"`
	Efficiency float64 `json:"efficiency,omitempty"`
	Powered    bool    `json:"powered,omitempty"`
	PowerLevel float64 `json:"power_level,omitempty"`
}

// ConnectionState is the per-connection render snapshot. Active is true iff
// the source holds energy.
type ConnectionState struct {
	FromID     types.EntityID `json:"from_id"`
	ToID       types.EntityID `json:"to_id"`
	FromX      float64        `json:"from_x"`
	FromY      float64        `json:"from_y"`
	ToX        float64        `json:"to_x"`
	ToY        float64        `json:"to_y"`
	Active     bool           `json:"active"`
	EnergyFlow float64        `json:"energy_flow"`
}

// NetworkState is emitted once per tick.
type NetworkState struct {
	Tick            uint64            `json:"tick"`
	SimTime         float64           `json:"sim_time"`
	TotalGeneration float64           `json:"total_generation"`
	TotalStored     float64           `json:"total_stored"`
	TotalCapacity   float64           `json:"total_capacity"`
	Stats           TickStats         `json:"stats"`
	Nodes           []NodeState       `json:"nodes"`
	Connections     []ConnectionState `json:"connections"`
}

// LogValue keeps per-tick log lines short.
func (s NetworkState) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Uint64("tick", s.Tick),
		slog.Float64("sim_time", s.SimTime),
		slog.Int("nodes", len(s.Nodes)),
		slog.Int("connections", len(s.Connections)),
		slog.Float64("generation", s.TotalGeneration),
		slog.Float64("stored", s.TotalStored),
		slog.Float64("capacity", s.TotalCapacity),
		slog.Float64("loss", s.Stats.Loss),
	)
}

func eventNetworkState(s NetworkState) event.Event {
	return event.Event{Type: event.NetworkState, Data: s}
}

// State returns the snapshot emitted by the last tick.
func (nw *Network) State() NetworkState {
	return nw.state
}

// Snapshot builds a fresh snapshot of the current network.
func (nw *Network) Snapshot() NetworkState {
	s := NetworkState{
		Tick:        nw.tick,
		SimTime:     nw.simTime,
		Stats:       nw.stats,
		Nodes:       make([]NodeState, 0, len(nw.order)),
		Connections: make([]ConnectionState, 0, len(nw.connections)),
	}
	for _, id := range nw.order {
		n := nw.nodes[id]
		ns := nw.nodeState(n)
		s.TotalGeneration += ns.Generation
		s.TotalStored += ns.Stored
		s.TotalCapacity += ns.Capacity
		s.Nodes = append(s.Nodes, ns)
	}
	for _, c := range nw.connections {
		src, dst := nw.nodes[c.From], nw.nodes[c.To]
		s.Connections = append(s.Connections, ConnectionState{
			FromID:     c.From,
			ToID:       c.To,
			FromX:      src.WorldX,
			FromY:      src.WorldY,
			ToX:        dst.WorldX,
			ToY:        dst.WorldY,
			Active:     src.Stored > 0,
			EnergyFlow: nw.flows[c],
		})
	}
	return s
}

func (nw *Network) nodeState(n *Node) NodeState {
	ns := NodeState{
		ID:             n.ID,
		Type:           n.Type,
		NodeType:       n.Category(),
		Kind:           n.Kind.String(),
		GridX:          n.GridX,
		GridY:          n.GridY,
		WorldX:         n.WorldX,
		WorldY:         n.WorldY,
		Stored:         n.Stored,
		Capacity:       n.EffectiveCapacity(),
		InputRate:      n.EffectiveInputRate(),
		OutputRate:     n.EffectiveOutputRate(),
		Range:          n.EffectiveRange(),
		InputChannels:  n.EffectiveInputChannels(),
		OutputChannels: n.EffectiveOutputChannels(),
		UsedInputs:     nw.UsedInputs(n.ID),
		UsedOutputs:    nw.UsedOutputs(n.ID),
		Level:          n.Level,
		XP:             n.XP,
		FillPercent:    n.FillRatio() * 100,
	}
	switch {
	case n.Kind.IsGenerator():
		ns.Generation = n.Generation()
		ns.Efficiency = n.GeneratorEfficiency()
	case n.Kind == KindTransfer:
		ns.Efficiency = n.TransferEfficiency()
	case n.Kind == KindConsumer:
		if a := n.Adapter(); a != nil {
			ns.Powered = a.Powered()
			ns.PowerLevel = a.PowerLevel()
		} else {
			ns.PowerLevel = n.Satisfaction()
			ns.Powered = ns.PowerLevel > 0
		}
	}
	return ns
}
