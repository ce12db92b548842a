package energy

import "math"

// StorageParams configures a storage node.
type StorageParams struct {
	// DecayRate is the fraction of stored energy lost per decay interval
	// (one minute by default).
	DecayRate float64 `json:"decay_rate" yaml:"decay_rate"`
}

type storageState struct {
	decayRate       float64
	stackMultiplier float64
	adjacent        int
	decayed         float64
}

func newStorageState(p StorageParams) *storageState {
	return &storageState{decayRate: p.DecayRate, stackMultiplier: 1}
}

// DecayRate is the per-interval decay fraction after decay upgrades.
func (n *Node) DecayRate() float64 {
	if n.storage == nil {
		return 0
	}
	return n.storage.decayRate * math.Pow(n.rules.DecayFactorPerLevel, float64(n.Upgrades.Decay))
}

// ApplyDecay ages stored energy by dt seconds and returns the amount lost.
func (n *Node) ApplyDecay(dt float64) float64 {
	b := behaviors[n.Kind].decay
	if b == nil || dt <= 0 {
		return 0
	}
	return b(n, dt)
}

func decayStorage(n *Node, dt float64) float64 {
	if n.Stored <= 0 {
		return 0
	}
	interval := n.rules.StorageDecayInterval
	if interval <= 0 {
		interval = 60
	}
	lost := math.Min(n.Stored, n.Stored*n.DecayRate()*dt/interval)
	n.Stored -= lost
	n.storage.decayed += lost
	return lost
}

// TotalDecayed is the lifetime energy lost to decay.
func (n *Node) TotalDecayed() float64 {
	if n.storage == nil {
		return 0
	}
	return n.storage.decayed
}

// SetStacking records how many storage nodes sit next to this one. Capacity
// scales by 1 + adjacent*bonus; stored energy is clamped when it shrinks.
func (n *Node) SetStacking(adjacent int, bonus float64) {
	if n.storage == nil {
		return
	}
	if adjacent < 0 {
		adjacent = 0
	}
	n.storage.adjacent = adjacent
	n.storage.stackMultiplier = 1 + float64(adjacent)*bonus
	if c := n.EffectiveCapacity(); n.Stored > c {
		n.Stored = c
	}
}

// StackMultiplier is the current capacity multiplier from adjacent storage.
func (n *Node) StackMultiplier() float64 {
	if n.storage == nil {
		return 1
	}
	return n.storage.stackMultiplier
}

// AdjacentStorage is the neighbour count last passed to SetStacking.
func (n *Node) AdjacentStorage() int {
	if n.storage == nil {
		return 0
	}
	return n.storage.adjacent
}

// TransferParams configures a relay.
type TransferParams struct {
	Efficiency float64 `json:"efficiency" yaml:"efficiency"`
}

type transferState struct {
	efficiency float64
}

func newTransferState(p TransferParams) *transferState {
	eff := p.Efficiency
	if eff <= 0 || eff > 1 {
		eff = 1
	}
	return &transferState{efficiency: eff}
}

// TransferEfficiency is the fraction of energy that survives delivery into
// this node. It is 1 for everything but relays.
func (n *Node) TransferEfficiency() float64 {
	if n.transfer == nil {
		return 1
	}
	return math.Min(1, n.transfer.efficiency+float64(n.Upgrades.Efficiency)*n.rules.RelayEfficiencyPerLevel)
}
