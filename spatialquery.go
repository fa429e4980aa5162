// Package spatialquery ties together the geometry, index, pipeline,
// and worker layers behind the external interface's API surface:
// Init/Finalize/PrepareDataset/Partition/BuildIndex/UnloadDataset/
// Query/QueryBatch/LoadRangeQueriesFromFile/LoadKNNQueriesFromFile.
//
// Per Design Notes §9, the original's global mutable configuration is
// replaced with an immutable Config threaded explicitly through a
// Registry value -- the same way vargrid.go's VarGridConfig is a
// plain struct passed as an explicit argument/receiver rather than a
// package global. Dataset geometries live in an arena.Store so a
// dataset's entire lifetime is owned by one Registry and nothing
// outside it holds a raw pointer across an UnloadDataset call.
//
// init()/finalize() in the external interface describe an MPI-style
// process-wide fleet boot; that has no Go library analog, so Init is
// an ordinary constructor returning a *Registry rather than a
// package-level singleton -- multiple independent registries can
// coexist, each idempotent in the sense that constructing one never
// mutates shared state.
package spatialquery

import (
	"sync"

	"github.com/geodex/spatialquery/april"
	"github.com/geodex/spatialquery/arena"
	"github.com/geodex/spatialquery/partition"
	"github.com/geodex/spatialquery/shape"
	"github.com/geodex/spatialquery/status"
	"github.com/geodex/spatialquery/storage"
	"github.com/geodex/spatialquery/store"
	"github.com/geodex/spatialquery/worker"
)

// IndexType selects the candidate-generation structure BuildIndex
// constructs for a dataset.
type IndexType uint8

const (
	TwoLayer IndexType = iota
	UniformGrid
)

// FileFormat selects the on-disk encoding PrepareDataset's Decoder
// collaborator is expected to parse.
type FileFormat uint8

const (
	CSV FileFormat = iota
	WKT
)

// Config is the immutable fleet/engine configuration supplied to
// Init, matching the init(numWorkers, hosts[]) signature of the
// external interface plus the grid/filter knobs spec §4.5's
// partitioner and §4.4's APRIL filter need.
type Config struct {
	NumWorkers uint32
	Hosts      []string

	// GridD is the coarse distribution grid's per-axis cell count;
	// GridP is the fine partitioning grid's per-axis subdivisions
	// within each coarse cell (spec §4.5).
	GridD, GridP uint32

	// HilbertOrder is the APRIL raster order N (spec §4.1/Glossary).
	HilbertOrder uint8

	// UseAPRILFilter toggles the intermediate filter stage of the
	// pair pipeline (spec §4.4/§4.7); false routes every candidate
	// pair straight to exact refinement.
	UseAPRILFilter bool
}

func (c Config) validate() error {
	if c.NumWorkers == 0 {
		return status.New(status.InvalidParameter, "spatialquery: NumWorkers must be positive")
	}
	if c.GridD == 0 || c.GridP == 0 {
		return status.New(status.InvalidParameter, "spatialquery: GridD and GridP must be positive, got D=%d P=%d", c.GridD, c.GridP)
	}
	if c.HilbertOrder == 0 {
		return status.New(status.InvalidParameter, "spatialquery: HilbertOrder must be positive")
	}
	return nil
}

// DatasetID is the opaque handle PrepareDataset hands back; the
// external interface's datasetId is just this value, not a UUID --
// see DESIGN.md for why google/uuid was dropped before use.
type DatasetID uint32

// dataset holds everything the registry tracks for one loaded
// dataset: its geometries (by arena Handle, never by pointer),
// partitioner, index, and (optionally) APRIL approximations.
type dataset struct {
	id        DatasetID
	kind      shape.Kind
	handles   []arena.Handle
	dataspace shape.MBR

	partitioner *partition.Partitioner
	indexType   IndexType
	twoLayer    *store.TwoLayerIndex
	uniform     *store.UniformGridIndex

	aprilData map[uint64]*april.Data
}

// Registry is the handle-based dataset table: the state Init
// constructs and every other API surface operation mutates.
type Registry struct {
	cfg   Config
	rank  uint32
	arena arena.Store[*shape.Shape]

	mu       sync.RWMutex
	datasets map[DatasetID]*dataset
	nextID   DatasetID

	transport worker.Transport
}

// Init validates cfg and constructs a Registry, the Go analog of the
// external interface's init(numWorkers, hosts[]) fleet boot.
func Init(cfg Config) (*Registry, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Registry{
		cfg:      cfg,
		datasets: make(map[DatasetID]*dataset),
	}, nil
}

// Finalize releases every dataset the registry holds, the Go analog
// of the external interface's finalize(). The Registry is unusable
// afterward; construct a new one with Init to continue.
func (r *Registry) Finalize() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.datasets = nil
}

// SetTransport wires a worker.Transport for cross-node distance-join
// border exchange (spec §4.8/§5). Process spawn/boot of the fleet
// itself is out of scope (spec §1); callers that stand up their own
// net/rpc peers pass the resulting worker.RPCWorker here. SelfRank
// identifies this node among cfg.NumWorkers peers.
func (r *Registry) SetTransport(selfRank uint32, t worker.Transport) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rank = selfRank
	r.transport = t
}

// mbrOfAll returns the tight MBR enclosing every shape's own MBR, the
// dataspace a fresh Partition call derives when the caller hasn't
// already fixed one explicitly.
func mbrOfAll(shapes []*shape.Shape) shape.MBR {
	m := shape.MBR{}
	first := true
	for _, s := range shapes {
		if first {
			m = s.MBR
			first = false
			continue
		}
		if s.MBR.MinX < m.MinX {
			m.MinX = s.MBR.MinX
		}
		if s.MBR.MinY < m.MinY {
			m.MinY = s.MBR.MinY
		}
		if s.MBR.MaxX > m.MaxX {
			m.MaxX = s.MBR.MaxX
		}
		if s.MBR.MaxY > m.MaxY {
			m.MaxY = s.MBR.MaxY
		}
	}
	return m
}

// PrepareDataset decodes path via dec, stores every resulting shape
// in the registry's arena, and returns a new DatasetID -- the
// external interface's prepareDataset(path, fileFormat, dataType).
// Parsing the source file is out of scope (spec §1); dec is the
// caller-supplied collaborator spec.md's storage.Decoder seam names.
func (r *Registry) PrepareDataset(dec storage.Decoder, path string, format FileFormat, kind shape.Kind) (DatasetID, error) {
	shapes, err := dec.Decode(path)
	if err != nil {
		return 0, status.Wrap(status.DiskRead, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	handles := make([]arena.Handle, 0, len(shapes))
	for _, s := range shapes {
		handles = append(handles, r.arena.Put(s))
	}
	id := r.nextID
	r.nextID++
	r.datasets[id] = &dataset{
		id:        id,
		kind:      kind,
		handles:   handles,
		dataspace: mbrOfAll(shapes),
		aprilData: make(map[uint64]*april.Data),
	}
	return id, nil
}

func (r *Registry) get(id DatasetID) (*dataset, error) {
	ds, ok := r.datasets[id]
	if !ok {
		return nil, status.New(status.InvalidParameter, "spatialquery: unknown dataset id %d", id)
	}
	return ds, nil
}

func (r *Registry) shapesOf(ds *dataset) []*shape.Shape {
	out := make([]*shape.Shape, 0, len(ds.handles))
	for _, h := range ds.handles {
		s, ok := r.arena.Get(h)
		if ok {
			out = append(out, s)
		}
	}
	return out
}

// Partition builds one shared two-grid Partitioner over the union of
// every named dataset's dataspace and assigns every one of their
// shapes against it, the external interface's partition(datasetIds[])
// -- shared so cross-dataset queries satisfy the congruent-grid
// invariant of spec §5.
func (r *Registry) Partition(ids []DatasetID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	dss := make([]*dataset, 0, len(ids))
	combined := shape.MBR{}
	first := true
	for _, id := range ids {
		ds, err := r.get(id)
		if err != nil {
			return err
		}
		dss = append(dss, ds)
		if first {
			combined = ds.dataspace
			first = false
			continue
		}
		if ds.dataspace.MinX < combined.MinX {
			combined.MinX = ds.dataspace.MinX
		}
		if ds.dataspace.MinY < combined.MinY {
			combined.MinY = ds.dataspace.MinY
		}
		if ds.dataspace.MaxX > combined.MaxX {
			combined.MaxX = ds.dataspace.MaxX
		}
		if ds.dataspace.MaxY > combined.MaxY {
			combined.MaxY = ds.dataspace.MaxY
		}
	}

	part, err := partition.New(
		partition.Dataspace{MinX: combined.MinX, MinY: combined.MinY, MaxX: combined.MaxX, MaxY: combined.MaxY},
		partition.Grid{D: r.cfg.GridD, P: r.cfg.GridP},
	)
	if err != nil {
		return err
	}

	for _, ds := range dss {
		ds.dataspace = combined
		ds.partitioner = part
		for _, s := range r.shapesOf(ds) {
			s.Partitions = nil
			part.Assign(s)
		}
	}
	return nil
}

// BuildIndex constructs the chosen index structure (and, when the
// registry is configured to use the APRIL filter, the per-shape
// APRIL approximation) for every named dataset -- the external
// interface's buildIndex(datasetIds[], indexType).
func (r *Registry) BuildIndex(ids []DatasetID, indexType IndexType) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range ids {
		ds, err := r.get(id)
		if err != nil {
			return err
		}
		if ds.partitioner == nil {
			return status.New(status.InvalidParameter, "spatialquery: dataset %d must be partitioned before BuildIndex", id)
		}
		shapes := r.shapesOf(ds)
		ds.indexType = indexType
		switch indexType {
		case TwoLayer:
			idx := store.NewTwoLayerIndex()
			for _, s := range shapes {
				idx.Insert(s)
			}
			idx.Finalize()
			ds.twoLayer = idx
		case UniformGrid:
			idx := store.NewUniformGridIndex()
			for _, s := range shapes {
				idx.Insert(s)
			}
			ds.uniform = idx
		default:
			return status.New(status.InvalidParameter, "spatialquery: unknown index type %d", indexType)
		}

		if r.cfg.UseAPRILFilter {
			for _, s := range shapes {
				if s.Kind == shape.Point || s.Kind == shape.LineString {
					continue
				}
				d, err := april.Generate(s, r.cfg.HilbertOrder, ds.dataspace)
				if err != nil {
					// Recoverable per spec §7: skip this object's APRIL
					// data, the filter falls back to exact refinement
					// for any pair involving it.
					continue
				}
				d.Section = uint32(id)
				ds.aprilData[s.RecID] = d
			}
		}
	}
	return nil
}

// UnloadDataset forgets a dataset -- the external interface's
// unloadDataset(datasetId). The arena entries themselves are not
// reclaimed (the arena is append-only, per package arena's design),
// but nothing in the registry can reach them through this id again.
func (r *Registry) UnloadDataset(id DatasetID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := r.get(id); err != nil {
		return err
	}
	delete(r.datasets, id)
	return nil
}
