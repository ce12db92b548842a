// internal/energy/network.go
package energy

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"go-power-towers/internal/event"
	"go-power-towers/internal/types"
)

var (
	ErrNodeNotFound     = errors.New("energy: node not found")
	ErrDuplicateNode    = errors.New("energy: node already registered")
	ErrInvalidNode      = errors.New("energy: invalid node")
	ErrSelfConnection   = errors.New("energy: cannot connect a node to itself")
	ErrAlreadyConnected = errors.New("energy: nodes already connected")
	ErrNoOutputChannel  = errors.New("energy: no free output channel")
	ErrNoInputChannel   = errors.New("energy: no free input channel")
	ErrOutOfRange       = errors.New("energy: target out of range")
)

// ConnectResult is the outcome of Connect.
type ConnectResult int

const (
	ConnectRejected ConnectResult = iota
	ConnectConnected
	ConnectDisconnected
)

func (r ConnectResult) String() string {
	switch r {
	case ConnectConnected:
		return "connected"
	case ConnectDisconnected:
		return "disconnected"
	default:
		return "rejected"
	}
}

// Connection is a directed edge; energy flows From -> To.
type Connection struct {
	From types.EntityID
	To   types.EntityID
}

// FlowOrder selects how edges are ordered inside a propagation pass.
type FlowOrder string

const (
	FlowPriority    FlowOrder = "priority"
	FlowTopological FlowOrder = "topological"
)

// Options configures a Network.
type Options struct {
	TickRate   float64 // ticks per simulated second
	Passes     int
	FlowOrder  FlowOrder
	Rules      *Rules
	Dispatcher *event.Dispatcher
	Logger     *slog.Logger
}

// DefaultOptions returns a 10 Hz, three-pass, priority-ordered network.
func DefaultOptions() Options {
	return Options{TickRate: 10, Passes: 3, FlowOrder: FlowPriority}
}

// Network owns the node registry and the connection list and runs the
// fixed-rate tick loop.
type Network struct {
	nodes       map[types.EntityID]*Node
	order       []types.EntityID
	connections []Connection

	rules        Rules
	tickInterval float64
	passes       int
	flowOrder    FlowOrder
	accumulator  float64

	tick    uint64
	simTime float64
	flows   map[Connection]float64
	stats   TickStats
	state   NetworkState

	topoCache   []Connection
	topoDirty   bool
	cycleWarned bool

	dispatcher *event.Dispatcher
	logger     *slog.Logger
}

// NewNetwork creates an empty network. Zero option fields take defaults.
func NewNetwork(opts Options) *Network {
	def := DefaultOptions()
	if opts.TickRate <= 0 {
		opts.TickRate = def.TickRate
	}
	if opts.Passes < 1 {
		opts.Passes = def.Passes
	}
	if opts.FlowOrder == "" {
		opts.FlowOrder = def.FlowOrder
	}
	rules := DefaultRules()
	if opts.Rules != nil {
		rules = *opts.Rules
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Network{
		nodes:        make(map[types.EntityID]*Node),
		rules:        rules,
		tickInterval: 1 / opts.TickRate,
		passes:       opts.Passes,
		flowOrder:    opts.FlowOrder,
		flows:        make(map[Connection]float64),
		topoDirty:    true,
		dispatcher:   opts.Dispatcher,
		logger:       logger.With("component", "energy"),
	}
}

// TickInterval is the fixed simulated duration of one tick.
func (nw *Network) TickInterval() float64 {
	return nw.tickInterval
}

func (nw *Network) Passes() int {
	return nw.passes
}

func (nw *Network) FlowOrder() FlowOrder {
	return nw.flowOrder
}

// RegisterNode adds n to the network and applies the network's rules to it.
func (nw *Network) RegisterNode(n *Node) error {
	if n == nil || n.ID == 0 {
		return ErrInvalidNode
	}
	if _, exists := nw.nodes[n.ID]; exists {
		return fmt.Errorf("register node %d: %w", n.ID, ErrDuplicateNode)
	}
	n.SetRules(&nw.rules)
	nw.nodes[n.ID] = n
	nw.order = append(nw.order, n.ID)
	nw.topoDirty = true
	nw.logger.Debug("node registered", "id", n.ID, "type", n.Type, "kind", n.Kind)
	nw.dispatcher.Dispatch(event.Event{Type: event.NodeRegistered, Data: n.ID})
	return nil
}

// UnregisterNode removes the node and every connection touching it.
func (nw *Network) UnregisterNode(id types.EntityID) bool {
	n, exists := nw.nodes[id]
	if !exists {
		return false
	}
	kept := nw.connections[:0]
	var removed []Connection
	for _, c := range nw.connections {
		if c.From == id || c.To == id {
			removed = append(removed, c)
			continue
		}
		kept = append(kept, c)
	}
	nw.connections = kept
	for _, c := range removed {
		delete(nw.flows, c)
		nw.dispatcher.Dispatch(event.Event{Type: event.PowerDisconnected, Data: c})
	}
	if a := n.Adapter(); a != nil {
		a.Detach()
	}
	delete(nw.nodes, id)
	for i, oid := range nw.order {
		if oid == id {
			nw.order = append(nw.order[:i], nw.order[i+1:]...)
			break
		}
	}
	nw.topoDirty = true
	nw.logger.Debug("node unregistered", "id", id, "connections_removed", len(removed))
	nw.dispatcher.Dispatch(event.Event{Type: event.NodeUnregistered, Data: id})
	return true
}

// Node looks up a registered node.
func (nw *Network) Node(id types.EntityID) (*Node, bool) {
	n, ok := nw.nodes[id]
	return n, ok
}

// Nodes returns registered nodes in registration order.
func (nw *Network) Nodes() []*Node {
	out := make([]*Node, 0, len(nw.order))
	for _, id := range nw.order {
		out = append(out, nw.nodes[id])
	}
	return out
}

func (nw *Network) NodeCount() int {
	return len(nw.nodes)
}

// Connections returns a copy of the connection list in creation order.
func (nw *Network) Connections() []Connection {
	return append([]Connection(nil), nw.connections...)
}

// HasConnection reports whether the directed edge exists.
func (nw *Network) HasConnection(from, to types.EntityID) bool {
	return nw.indexOf(from, to) >= 0
}

func (nw *Network) indexOf(from, to types.EntityID) int {
	for i, c := range nw.connections {
		if c.From == from && c.To == to {
			return i
		}
	}
	return -1
}

// UsedOutputs counts connections sourced at id.
func (nw *Network) UsedOutputs(id types.EntityID) int {
	count := 0
	for _, c := range nw.connections {
		if c.From == id {
			count++
		}
	}
	return count
}

// UsedInputs counts connections sinking into id.
func (nw *Network) UsedInputs(id types.EntityID) int {
	count := 0
	for _, c := range nw.connections {
		if c.To == id {
			count++
		}
	}
	return count
}

// CanConnect reports why a new edge from -> to would be rejected, or nil.
func (nw *Network) CanConnect(from, to types.EntityID) error {
	src, ok := nw.nodes[from]
	if !ok {
		return fmt.Errorf("source %d: %w", from, ErrNodeNotFound)
	}
	dst, ok := nw.nodes[to]
	if !ok {
		return fmt.Errorf("target %d: %w", to, ErrNodeNotFound)
	}
	if from == to {
		return ErrSelfConnection
	}
	if nw.HasConnection(from, to) {
		return ErrAlreadyConnected
	}
	if nw.UsedOutputs(from) >= src.EffectiveOutputChannels() {
		return fmt.Errorf("source %d: %w", from, ErrNoOutputChannel)
	}
	if nw.UsedInputs(to) >= dst.EffectiveInputChannels() {
		return fmt.Errorf("target %d: %w", to, ErrNoInputChannel)
	}
	if d := src.Distance(dst); d > src.EffectiveRange() {
		return fmt.Errorf("distance %.2f > range %.2f: %w", d, src.EffectiveRange(), ErrOutOfRange)
	}
	return nil
}

// Connect toggles the edge from -> to. An existing edge is removed; otherwise
// the edge is created if it passes channel and range checks. Rejections leave
// the network unchanged.
func (nw *Network) Connect(from, to types.EntityID) ConnectResult {
	if _, ok := nw.nodes[from]; !ok {
		return ConnectRejected
	}
	if _, ok := nw.nodes[to]; !ok {
		return ConnectRejected
	}
	if nw.Disconnect(from, to) {
		return ConnectDisconnected
	}
	if err := nw.CanConnect(from, to); err != nil {
		nw.logger.Debug("connect rejected", "from", from, "to", to, "err", err)
		return ConnectRejected
	}
	c := Connection{From: from, To: to}
	nw.connections = append(nw.connections, c)
	nw.topoDirty = true
	nw.logger.Debug("connected", "from", from, "to", to)
	nw.dispatcher.Dispatch(event.Event{Type: event.PowerConnected, Data: c})
	return ConnectConnected
}

// Disconnect removes the edge from -> to and reports whether it existed.
func (nw *Network) Disconnect(from, to types.EntityID) bool {
	i := nw.indexOf(from, to)
	if i < 0 {
		return false
	}
	c := nw.connections[i]
	nw.connections = append(nw.connections[:i], nw.connections[i+1:]...)
	delete(nw.flows, c)
	nw.topoDirty = true
	nw.logger.Debug("disconnected", "from", from, "to", to)
	nw.dispatcher.Dispatch(event.Event{Type: event.PowerDisconnected, Data: c})
	return true
}

// NodeDistance pairs a node with its distance from a query point.
type NodeDistance struct {
	Node     *Node
	Distance float64
}

// NodesInRange returns nodes within r cells of (x, y), nearest first. Ties
// keep registration order.
func (nw *Network) NodesInRange(x, y int, r float64) []NodeDistance {
	var out []NodeDistance
	for _, id := range nw.order {
		n := nw.nodes[id]
		if d := gridDistance(x, y, n.GridX, n.GridY); d <= r {
			out = append(out, NodeDistance{Node: n, Distance: d})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Distance < out[j].Distance
	})
	return out
}

// Candidates lists legal new connections for a node.
type Candidates struct {
	// Inputs are nodes that could feed the node.
	Inputs []NodeDistance
	// Outputs are nodes the node could feed.
	Outputs []NodeDistance
}

// AvailableConnections evaluates Connect's rules against every other node
// without changing anything.
func (nw *Network) AvailableConnections(id types.EntityID) Candidates {
	var res Candidates
	n, ok := nw.nodes[id]
	if !ok {
		return res
	}
	for _, oid := range nw.order {
		if oid == id {
			continue
		}
		other := nw.nodes[oid]
		d := n.Distance(other)
		if nw.CanConnect(id, oid) == nil {
			res.Outputs = append(res.Outputs, NodeDistance{Node: other, Distance: d})
		}
		if nw.CanConnect(oid, id) == nil {
			res.Inputs = append(res.Inputs, NodeDistance{Node: other, Distance: d})
		}
	}
	byDistance := func(s []NodeDistance) {
		sort.SliceStable(s, func(i, j int) bool { return s[i].Distance < s[j].Distance })
	}
	byDistance(res.Inputs)
	byDistance(res.Outputs)
	return res
}

// Reset drops all nodes and connections and rewinds the clock.
func (nw *Network) Reset() {
	for _, id := range append([]types.EntityID(nil), nw.order...) {
		nw.UnregisterNode(id)
	}
	nw.accumulator = 0
	nw.tick = 0
	nw.simTime = 0
	nw.stats = TickStats{}
	nw.state = NetworkState{}
	nw.cycleWarned = false
}
