package building

import (
	"fmt"

	"go-power-towers/internal/energy"
	"go-power-towers/internal/event"
	"go-power-towers/internal/types"
)

// StartConnection enters connection mode from source and returns the nodes it
// can feed.
func (m *Manager) StartConnection(source types.EntityID) ([]energy.NodeDistance, error) {
	if _, ok := m.deps.Network.Node(source); !ok {
		return nil, fmt.Errorf("start connection %d: %w", source, energy.ErrNodeNotFound)
	}
	m.connecting = true
	m.source = source

	targets := m.deps.Network.AvailableConnections(source).Outputs
	ids := make([]types.EntityID, 0, len(targets))
	for _, t := range targets {
		ids = append(ids, t.Node.ID)
	}
	m.dispatch(event.ConnectionMode, ConnectionModeState{Active: true, Source: source, Targets: ids})
	return targets, nil
}

// Connecting returns the connection-mode source, if any.
func (m *Manager) Connecting() (types.EntityID, bool) {
	return m.source, m.connecting
}

// EndConnection toggles the link from the connection-mode source to target
// and leaves connection mode.
func (m *Manager) EndConnection(target types.EntityID) (energy.ConnectResult, error) {
	if !m.connecting {
		return energy.ConnectRejected, ErrNotConnecting
	}
	source := m.source
	reason := m.deps.Network.CanConnect(source, target)
	res := m.deps.Network.Connect(source, target)
	switch res {
	case energy.ConnectConnected:
		m.toast("Connected!", event.ToastSuccess)
	case energy.ConnectDisconnected:
		m.toast("Disconnected", event.ToastSuccess)
	default:
		m.logger.Debug("connection failed", "from", source, "to", target, "err", reason)
		m.toast("Connection failed!", event.ToastError)
	}
	m.CancelConnection()
	return res, nil
}

// CancelConnection leaves connection mode.
func (m *Manager) CancelConnection() {
	m.connecting = false
	m.source = 0
	m.dispatch(event.ConnectionMode, ConnectionModeState{Active: false})
}
