// Package storage implements the binary codecs for the two persisted
// formats of the external interface (partition file, APRIL file): a
// little-endian fixed layout read and written with stdlib
// encoding/binary, exactly as the record-at-a-time streaming reads in
// wrf2inmap/wrf2inmap.go walk flat binary met fields.
//
// Dataset source parsing (CSV/WKT) is an explicit out-of-scope seam:
// Decoder names the collaborator a caller supplies, with no concrete
// implementation here.
package storage

import (
	"encoding/binary"
	"io"

	"github.com/ctessum/geom"

	"github.com/geodex/spatialquery/april"
	"github.com/geodex/spatialquery/interval"
	"github.com/geodex/spatialquery/shape"
	"github.com/geodex/spatialquery/status"
)

// Decoder turns a caller-supplied dataset file into shapes. Parsing
// CSV/WKT source files is out of scope; callers needing it supply
// their own Decoder.
type Decoder interface {
	Decode(path string) ([]*shape.Shape, error)
}

// DatasetHeader precedes a partition file's object records.
type DatasetHeader struct {
	TotalObjects uint64
	SpatialType  shape.Kind
	Dataspace    shape.MBR
}

// WriteDatasetHeader writes h to w.
func WriteDatasetHeader(w io.Writer, h DatasetHeader) error {
	fields := []interface{}{
		h.TotalObjects,
		uint8(h.SpatialType),
		h.Dataspace.MinX, h.Dataspace.MinY, h.Dataspace.MaxX, h.Dataspace.MaxY,
	}
	for _, f := range fields {
		if err := binary.Write(w, binary.LittleEndian, f); err != nil {
			return status.Wrap(status.DiskWrite, err)
		}
	}
	return nil
}

// ReadDatasetHeader reads a DatasetHeader from r.
func ReadDatasetHeader(r io.Reader) (DatasetHeader, error) {
	var h DatasetHeader
	var kind uint8
	if err := binary.Read(r, binary.LittleEndian, &h.TotalObjects); err != nil {
		return h, status.Wrap(status.DiskRead, err)
	}
	if err := binary.Read(r, binary.LittleEndian, &kind); err != nil {
		return h, status.Wrap(status.DiskRead, err)
	}
	h.SpatialType = shape.Kind(kind)
	for _, f := range []*float64{&h.Dataspace.MinX, &h.Dataspace.MinY, &h.Dataspace.MaxX, &h.Dataspace.MaxY} {
		if err := binary.Read(r, binary.LittleEndian, f); err != nil {
			return h, status.Wrap(status.DiskRead, err)
		}
	}
	return h, nil
}

// WriteShape writes one object record: recID, spatial type, partition
// list, then the vertex buffer, per the external interface's partition
// file layout.
func WriteShape(w io.Writer, s *shape.Shape) error {
	if err := binary.Write(w, binary.LittleEndian, s.RecID); err != nil {
		return status.Wrap(status.DiskWrite, err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint8(s.Kind)); err != nil {
		return status.Wrap(status.DiskWrite, err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(s.Partitions))); err != nil {
		return status.Wrap(status.DiskWrite, err)
	}
	for _, ref := range s.Partitions {
		if err := binary.Write(w, binary.LittleEndian, ref.PartitionID); err != nil {
			return status.Wrap(status.DiskWrite, err)
		}
		if err := binary.Write(w, binary.LittleEndian, uint8(ref.Class)); err != nil {
			return status.Wrap(status.DiskWrite, err)
		}
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(s.Vertices))); err != nil {
		return status.Wrap(status.DiskWrite, err)
	}
	for _, v := range s.Vertices {
		if err := binary.Write(w, binary.LittleEndian, v.X); err != nil {
			return status.Wrap(status.DiskWrite, err)
		}
		if err := binary.Write(w, binary.LittleEndian, v.Y); err != nil {
			return status.Wrap(status.DiskWrite, err)
		}
	}
	return nil
}

// ReadShape reads one object record and reconstructs a Shape with its
// corrected vertex buffer (shape.New re-derives MBR/ring orientation);
// the record's own partition list is reattached afterward since it was
// produced by a partitioner pass that predates this read.
func ReadShape(r io.Reader) (*shape.Shape, error) {
	var recID uint64
	var kindByte uint8
	if err := binary.Read(r, binary.LittleEndian, &recID); err != nil {
		return nil, status.Wrap(status.DiskRead, err)
	}
	if err := binary.Read(r, binary.LittleEndian, &kindByte); err != nil {
		return nil, status.Wrap(status.DiskRead, err)
	}
	var partitionCount uint32
	if err := binary.Read(r, binary.LittleEndian, &partitionCount); err != nil {
		return nil, status.Wrap(status.DiskRead, err)
	}
	refs := make([]shape.PartitionRef, partitionCount)
	for i := range refs {
		if err := binary.Read(r, binary.LittleEndian, &refs[i].PartitionID); err != nil {
			return nil, status.Wrap(status.DiskRead, err)
		}
		var classByte uint8
		if err := binary.Read(r, binary.LittleEndian, &classByte); err != nil {
			return nil, status.Wrap(status.DiskRead, err)
		}
		refs[i].Class = shape.Class(classByte)
	}
	var vertexCount uint32
	if err := binary.Read(r, binary.LittleEndian, &vertexCount); err != nil {
		return nil, status.Wrap(status.DiskRead, err)
	}
	verts := make([]geom.Point, vertexCount)
	for i := range verts {
		if err := binary.Read(r, binary.LittleEndian, &verts[i].X); err != nil {
			return nil, status.Wrap(status.DiskRead, err)
		}
		if err := binary.Read(r, binary.LittleEndian, &verts[i].Y); err != nil {
			return nil, status.Wrap(status.DiskRead, err)
		}
	}
	s, err := shape.New(recID, shape.Kind(kindByte), verts)
	if err != nil {
		return nil, err
	}
	s.Partitions = refs
	return s, nil
}

// writeAprilRecord writes one object's APRIL record: recID, section,
// interval counts, then the ALL/FULL interval lists themselves.
func writeAprilRecord(w io.Writer, d *april.Data) error {
	if err := binary.Write(w, binary.LittleEndian, d.RecID); err != nil {
		return status.Wrap(status.DiskWrite, err)
	}
	if err := binary.Write(w, binary.LittleEndian, d.Section); err != nil {
		return status.Wrap(status.DiskWrite, err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(d.IntervalsALL))); err != nil {
		return status.Wrap(status.DiskWrite, err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(d.IntervalsFULL))); err != nil {
		return status.Wrap(status.DiskWrite, err)
	}
	if err := writeIntervals(w, d.IntervalsALL); err != nil {
		return err
	}
	return writeIntervals(w, d.IntervalsFULL)
}

func writeIntervals(w io.Writer, list interval.List) error {
	for _, iv := range list {
		if err := binary.Write(w, binary.LittleEndian, iv.Start); err != nil {
			return status.Wrap(status.DiskWrite, err)
		}
		if err := binary.Write(w, binary.LittleEndian, iv.End); err != nil {
			return status.Wrap(status.DiskWrite, err)
		}
	}
	return nil
}

func readIntervals(r io.Reader, n uint32) (interval.List, error) {
	list := make(interval.List, n)
	for i := range list {
		if err := binary.Read(r, binary.LittleEndian, &list[i].Start); err != nil {
			return nil, status.Wrap(status.DiskRead, err)
		}
		if err := binary.Read(r, binary.LittleEndian, &list[i].End); err != nil {
			return nil, status.Wrap(status.DiskRead, err)
		}
	}
	return list, nil
}

func readAprilRecord(r io.Reader) (*april.Data, error) {
	d := &april.Data{}
	if err := binary.Read(r, binary.LittleEndian, &d.RecID); err != nil {
		return nil, status.Wrap(status.DiskRead, err)
	}
	if err := binary.Read(r, binary.LittleEndian, &d.Section); err != nil {
		return nil, status.Wrap(status.DiskRead, err)
	}
	var numALL, numFULL uint32
	if err := binary.Read(r, binary.LittleEndian, &numALL); err != nil {
		return nil, status.Wrap(status.DiskRead, err)
	}
	if err := binary.Read(r, binary.LittleEndian, &numFULL); err != nil {
		return nil, status.Wrap(status.DiskRead, err)
	}
	all, err := readIntervals(r, numALL)
	if err != nil {
		return nil, err
	}
	full, err := readIntervals(r, numFULL)
	if err != nil {
		return nil, err
	}
	d.IntervalsALL = all
	d.IntervalsFULL = full
	return d, nil
}

// WriteAprilFile writes the APRIL file header (total object count)
// followed by every record in data.
func WriteAprilFile(w io.Writer, data []*april.Data) error {
	if err := binary.Write(w, binary.LittleEndian, uint64(len(data))); err != nil {
		return status.Wrap(status.DiskWrite, err)
	}
	for _, d := range data {
		if err := writeAprilRecord(w, d); err != nil {
			return err
		}
	}
	return nil
}

// ReadAprilFile reads an APRIL file back into its per-object records.
func ReadAprilFile(r io.Reader) ([]*april.Data, error) {
	var total uint64
	if err := binary.Read(r, binary.LittleEndian, &total); err != nil {
		return nil, status.Wrap(status.DiskRead, err)
	}
	out := make([]*april.Data, total)
	for i := range out {
		d, err := readAprilRecord(r)
		if err != nil {
			return nil, err
		}
		out[i] = d
	}
	return out, nil
}
