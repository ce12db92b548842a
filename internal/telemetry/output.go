package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"

	"go-power-towers/internal/config"
)

// OutputManager writes a run's CSV files and metadata.
type OutputManager struct {
	dir         string
	runID       string
	networkFile *os.File
	nodesFile   *os.File

	// Track if headers have been written
	networkHeaderWritten bool
	nodesHeaderWritten   bool
}

// NewRunOutput creates a fresh run directory named by a random UUID under
// base. Returns nil if base is empty (output disabled).
func NewRunOutput(base string) (*OutputManager, error) {
	if base == "" {
		return nil, nil
	}
	id := uuid.NewString()
	om, err := NewOutputManager(filepath.Join(base, id))
	if err != nil {
		return nil, err
	}
	om.runID = id
	return om, nil
}

// NewOutputManager creates dir and opens network.csv and nodes.csv in it.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir, runID: filepath.Base(dir)}

	f, err := os.Create(filepath.Join(dir, "network.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating network.csv: %w", err)
	}
	om.networkFile = f

	f, err = os.Create(filepath.Join(dir, "nodes.csv"))
	if err != nil {
		om.networkFile.Close()
		return nil, fmt.Errorf("creating nodes.csv: %w", err)
	}
	om.nodesFile = f

	return om, nil
}

// WriteConfig saves the effective configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteTick appends a row to network.csv.
func (om *OutputManager) WriteTick(r TickRecord) error {
	if om == nil {
		return nil
	}
	if err := marshal([]TickRecord{r}, om.networkFile, &om.networkHeaderWritten); err != nil {
		return fmt.Errorf("writing network: %w", err)
	}
	return nil
}

// WriteNodes appends rows to nodes.csv.
func (om *OutputManager) WriteNodes(rs []NodeRecord) error {
	if om == nil || len(rs) == 0 {
		return nil
	}
	if err := marshal(rs, om.nodesFile, &om.nodesHeaderWritten); err != nil {
		return fmt.Errorf("writing nodes: %w", err)
	}
	return nil
}

// marshal writes the header only on the first call per file.
func marshal(records interface{}, f *os.File, headerWritten *bool) error {
	if !*headerWritten {
		if err := gocsv.Marshal(records, f); err != nil {
			return err
		}
		*headerWritten = true
		return nil
	}
	return gocsv.MarshalWithoutHeaders(records, f)
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// RunID is the run directory name.
func (om *OutputManager) RunID() string {
	if om == nil {
		return ""
	}
	return om.runID
}

// Close closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var firstErr error
	for _, f := range []*os.File{om.networkFile, om.nodesFile} {
		if f == nil {
			continue
		}
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
