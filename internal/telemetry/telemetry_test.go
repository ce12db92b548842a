package telemetry

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-power-towers/internal/config"
	"go-power-towers/internal/energy"
	"go-power-towers/internal/event"
	"go-power-towers/internal/types"
)

func poweredNetwork(t *testing.T, d *event.Dispatcher) *energy.Network {
	t.Helper()
	nw := energy.NewNetwork(energy.Options{Dispatcher: d, Logger: slog.New(slog.DiscardHandler)})
	for i, kind := range []energy.Kind{energy.KindStable, energy.KindConsumer} {
		cfg := energy.DefaultNodeConfig(kind)
		cfg.ID = types.EntityID(i + 1)
		cfg.GridX = i
		require.NoError(t, nw.RegisterNode(energy.NewNode(cfg)))
	}
	require.Equal(t, energy.ConnectConnected, nw.Connect(1, 2))
	return nw
}

func TestNewTickRecord(t *testing.T) {
	s := energy.NetworkState{
		Tick:          7,
		SimTime:       0.7,
		TotalStored:   25,
		TotalCapacity: 100,
		Stats:         energy.TickStats{Generated: 0.5, Delivered: 0.4, Loss: 0.1},
		Nodes: []energy.NodeState{
			{ID: 1, NodeType: energy.CategoryGenerator},
			{ID: 2, NodeType: energy.CategoryConsumer, Powered: true},
			{ID: 3, NodeType: energy.CategoryConsumer},
		},
		Connections: []energy.ConnectionState{
			{FromID: 1, ToID: 2, Active: true},
			{FromID: 1, ToID: 3},
		},
	}

	r := NewTickRecord(s)
	assert.Equal(t, uint64(7), r.Tick)
	assert.Equal(t, 3, r.Nodes)
	assert.Equal(t, 2, r.Connections)
	assert.Equal(t, 1, r.ActiveConnections)
	assert.Equal(t, 2, r.Consumers)
	assert.Equal(t, 1, r.PoweredConsumers)
	assert.Equal(t, 0.1, r.Loss)
	assert.InDelta(t, 25.0, r.FillPercent, 1e-9)

	rows := NewNodeRecords(s)
	require.Len(t, rows, 3)
	assert.Equal(t, "consumer", rows[1].Category)
	assert.Equal(t, uint64(7), rows[2].Tick)
}

func TestCollectorWritesSampledTicks(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	out, err := NewOutputManager(dir)
	require.NoError(t, err)

	d := event.NewDispatcher()
	c := NewCollector(5, out, slog.New(slog.DiscardHandler))
	c.Attach(d)
	nw := poweredNetwork(t, d)

	for i := 0; i < 10; i++ {
		nw.ProcessTick(nw.TickInterval())
	}
	require.NoError(t, out.Close())
	require.NoError(t, c.Err())

	assert.Equal(t, 2, c.Samples())
	assert.Equal(t, uint64(10), c.Totals().Ticks)
	assert.InDelta(t, 5.0, c.Totals().Generated, 1e-9)
	assert.InDelta(t, 5.0, c.Totals().Consumed, 1e-9)
	assert.Equal(t, uint64(10), c.Last().Tick)

	data, err := os.ReadFile(filepath.Join(dir, "network.csv"))
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "tick,sim_time"))

	var rows []*TickRecord
	require.NoError(t, gocsv.UnmarshalBytes(data, &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, uint64(5), rows[0].Tick)
	assert.Equal(t, uint64(10), rows[1].Tick)
	assert.Equal(t, 1, rows[1].PoweredConsumers)

	f, err := os.Open(filepath.Join(dir, "nodes.csv"))
	require.NoError(t, err)
	defer f.Close()
	var nodes []*NodeRecord
	require.NoError(t, gocsv.UnmarshalFile(f, &nodes))
	assert.Len(t, nodes, 4)
}

func TestCollectorWithoutOutput(t *testing.T) {
	d := event.NewDispatcher()
	c := NewCollector(0, nil, slog.New(slog.DiscardHandler))
	c.Attach(d)
	nw := poweredNetwork(t, d)
	nw.ProcessTick(nw.TickInterval())
	nw.ProcessTick(nw.TickInterval())

	assert.Equal(t, 2, c.Samples())
	assert.NoError(t, c.Err())
}

func TestNewRunOutput(t *testing.T) {
	base := t.TempDir()
	out, err := NewRunOutput(base)
	require.NoError(t, err)
	defer out.Close()

	_, err = uuid.Parse(out.RunID())
	assert.NoError(t, err)
	assert.Equal(t, filepath.Join(base, out.RunID()), out.Dir())

	cfg, err := config.Load("")
	require.NoError(t, err)
	require.NoError(t, out.WriteConfig(cfg))

	loaded, err := config.Load(filepath.Join(out.Dir(), "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, cfg.Network, loaded.Network)

	none, err := NewRunOutput("")
	assert.NoError(t, err)
	assert.Nil(t, none)
	assert.NoError(t, none.WriteTick(TickRecord{}))
	assert.NoError(t, none.Close())
}
