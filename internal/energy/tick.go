package energy

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// tickEpsilon absorbs float drift so n steps of one tick interval run n ticks.
const tickEpsilon = 1e-9

// TickStats totals the energy moved by one tick.
type TickStats struct {
	Generated float64
	// Removed is energy taken from sources by transfers; it equals
	// Delivered + Loss.
	Removed   float64
	Delivered float64
	Loss      float64
	Decayed   float64
	Consumed  float64
}

// Update advances the simulation clock by dt seconds and runs as many fixed
// ticks as have accumulated. It returns the number of ticks run.
func (nw *Network) Update(dt float64) int {
	if dt <= 0 {
		return 0
	}
	nw.accumulator += dt
	ticks := 0
	for nw.accumulator+tickEpsilon >= nw.tickInterval {
		nw.accumulator -= nw.tickInterval
		nw.ProcessTick(nw.tickInterval)
		ticks++
	}
	if nw.accumulator < 0 {
		nw.accumulator = 0
	}
	return ticks
}

// ProcessTick runs one tick of dt seconds: generation, multi-pass transfer,
// storage decay, consumer settlement, then state emission.
func (nw *Network) ProcessTick(dt float64) {
	var stats TickStats
	for k := range nw.flows {
		delete(nw.flows, k)
	}

	for _, id := range nw.order {
		if n := nw.nodes[id]; n.Kind.IsGenerator() {
			stats.Generated += n.Generate(dt)
		}
	}

	edges := nw.orderedEdges()
	for pass := 0; pass < nw.passes; pass++ {
		for _, c := range edges {
			nw.transfer(c, dt, &stats)
		}
	}

	for _, id := range nw.order {
		if n := nw.nodes[id]; n.Kind == KindStorage {
			stats.Decayed += n.ApplyDecay(dt)
		}
	}
	for _, id := range nw.order {
		if n := nw.nodes[id]; n.Kind == KindConsumer {
			stats.Consumed += n.Settle(dt)
		}
	}

	nw.tick++
	nw.simTime += dt
	nw.stats = stats
	nw.state = nw.Snapshot()
	nw.logger.Debug("tick", "state", nw.state)
	nw.dispatcher.Dispatch(eventNetworkState(nw.state))
}

// transfer moves energy along one edge. Delivery into a relay is scaled by
// the relay's efficiency; the shortfall is counted as loss.
func (nw *Network) transfer(c Connection, dt float64, stats *TickStats) {
	src, dst := nw.nodes[c.From], nw.nodes[c.To]
	amount := math.Min(src.AvailableOutput(dt), dst.AvailableInput(dt))
	if amount <= 0 {
		return
	}
	src.Stored -= amount
	received := dst.ReceiveEnergy(amount * dst.TransferEfficiency())
	stats.Removed += amount
	stats.Delivered += received
	stats.Loss += amount - received
	nw.flows[c] += amount
}

// orderedEdges returns the connections in propagation order.
func (nw *Network) orderedEdges() []Connection {
	if nw.flowOrder == FlowTopological {
		if edges, ok := nw.topologicalEdges(); ok {
			return edges
		}
	}
	return nw.priorityEdges()
}

// priorityEdges sorts edges by source category: generators, storage,
// transfer, consumers. Ties keep creation order.
func (nw *Network) priorityEdges() []Connection {
	edges := nw.Connections()
	sort.SliceStable(edges, func(i, j int) bool {
		return nw.nodes[edges[i].From].Category().flowRank() < nw.nodes[edges[j].From].Category().flowRank()
	})
	return edges
}

// topologicalEdges orders edges by the topological position of their source.
// It reports false when the graph has a cycle.
func (nw *Network) topologicalEdges() ([]Connection, bool) {
	if !nw.topoDirty {
		return nw.topoCache, nw.topoCache != nil || len(nw.connections) == 0
	}
	nw.topoDirty = false
	nw.topoCache = nil

	g := simple.NewDirectedGraph()
	for _, id := range nw.order {
		g.AddNode(simple.Node(int64(id)))
	}
	for _, c := range nw.connections {
		g.SetEdge(g.NewEdge(simple.Node(int64(c.From)), simple.Node(int64(c.To))))
	}
	sorted, err := topo.SortStabilized(g, func(nodes []graph.Node) {
		sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID() < nodes[j].ID() })
	})
	if err != nil {
		if !nw.cycleWarned {
			nw.logger.Warn("network has a cycle, using priority order", "err", err)
			nw.cycleWarned = true
		}
		return nil, false
	}
	nw.cycleWarned = false

	pos := make(map[int64]int, len(sorted))
	for i, n := range sorted {
		pos[n.ID()] = i
	}
	edges := nw.Connections()
	sort.SliceStable(edges, func(i, j int) bool {
		return pos[int64(edges[i].From)] < pos[int64(edges[j].From)]
	})
	nw.topoCache = edges
	return edges, true
}

// Flow is the energy moved along an edge during the last tick.
func (nw *Network) Flow(c Connection) float64 {
	return nw.flows[c]
}

// Stats returns the totals of the last tick.
func (nw *Network) Stats() TickStats {
	return nw.stats
}

// Tick is the number of ticks processed.
func (nw *Network) Tick() uint64 {
	return nw.tick
}

// SimTime is the simulated time consumed by processed ticks.
func (nw *Network) SimTime() float64 {
	return nw.simTime
}

// Accumulator is the simulated time not yet consumed by a tick.
func (nw *Network) Accumulator() float64 {
	return nw.accumulator
}
