package dataset

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"
	"github.com/olekukonko/tablewriter"
)

// Dataset is a finite, indexable source of training records.
type Dataset interface {
	Name() string

	// Len is the sampling length; RealLen is the number of distinct
	// underlying examples, which may be smaller when a source is
	// oversampled.
	Len() int
	RealLen() int

	Get(i int) (Record, error)
}

// Builder constructs a dataset from a decoded configuration map.
type Builder func(cfg map[string]any) (Dataset, error)

var (
	buildersMu sync.RWMutex
	builders   = map[string]Builder{}
)

// Register makes a dataset kind available to Build. Registering the
// same kind twice panics, as it hides a wiring mistake.
func Register(kind string, b Builder) {
	buildersMu.Lock()
	defer buildersMu.Unlock()

	if _, ok := builders[kind]; ok {
		panic("dataset: duplicate builder registration for " + kind)
	}
	builders[kind] = b
}

// Build constructs a dataset from a configuration map whose "type" key
// selects the registered builder; the remaining keys belong to it.
func Build(cfg map[string]any) (Dataset, error) {
	var header struct {
		Type string `mapstructure:"type"`
	}
	if err := mapstructure.Decode(cfg, &header); err != nil {
		return nil, fmt.Errorf("decoding dataset config: %w", err)
	}
	if header.Type == "" {
		return nil, fmt.Errorf("dataset config has no type")
	}

	buildersMu.RLock()
	b, ok := builders[header.Type]
	var kinds []string
	if !ok {
		kinds = registeredKinds()
	}
	buildersMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no dataset builder registered for type %q (have %v)", header.Type, kinds)
	}

	return b(cfg)
}

func registeredKinds() []string {
	kinds := make([]string, 0, len(builders))
	for k := range builders {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// ConcatDataset concatenates sub-datasets built from configuration
// maps. It owns its children; indexing spans them in build order.
type ConcatDataset struct {
	id       string
	datasets []Dataset
	offsets  []int // cumulative lengths, offsets[i] = length of datasets[:i+1]
}

// Concat builds every configuration and concatenates the results.
func Concat(cfgs []map[string]any) (*ConcatDataset, error) {
	c := &ConcatDataset{id: uuid.NewString()}

	total := 0
	for i, cfg := range cfgs {
		ds, err := Build(cfg)
		if err != nil {
			return nil, fmt.Errorf("building dataset %d: %w", i, err)
		}

		total += ds.Len()
		c.datasets = append(c.datasets, ds)
		c.offsets = append(c.offsets, total)
	}

	slog.Info("initialized concat dataset", "id", c.id, "datasets", len(c.datasets), "samples", total)
	for _, ds := range c.datasets {
		slog.Info("concat dataset member", "id", c.id, "name", ds.Name(), "samples", ds.Len(), "real_length", ds.RealLen())
	}

	return c, nil
}

func (c *ConcatDataset) Name() string { return "concat:" + c.id }

func (c *ConcatDataset) Len() int {
	if len(c.offsets) == 0 {
		return 0
	}
	return c.offsets[len(c.offsets)-1]
}

func (c *ConcatDataset) RealLen() int {
	var n int
	for _, ds := range c.datasets {
		n += ds.RealLen()
	}
	return n
}

// Get maps a global index onto the owning sub-dataset.
func (c *ConcatDataset) Get(i int) (Record, error) {
	if i < 0 || i >= c.Len() {
		return Record{}, fmt.Errorf("index %d out of range [0, %d)", i, c.Len())
	}

	member := sort.SearchInts(c.offsets, i+1)
	prev := 0
	if member > 0 {
		prev = c.offsets[member-1]
	}

	return c.datasets[member].Get(i - prev)
}

// Summary renders a per-dataset table to w.
func (c *ConcatDataset) Summary(w io.Writer) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"NAME", "SAMPLES", "REAL LENGTH"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")

	for _, ds := range c.datasets {
		table.Append([]string{ds.Name(), strconv.Itoa(ds.Len()), strconv.Itoa(ds.RealLen())})
	}

	table.Render()
}
