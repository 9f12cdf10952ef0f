package graphio

import (
	"io"

	"github.com/lkarlslund/tagcamps/modules/cooc"
	"github.com/pierrec/lz4/v4"
	"github.com/pkg/errors"
	"github.com/tinylib/msgp/msgp"
)

// The binary format is an lz4 frame holding one msgpack map. Vertices are
// [name, count] pairs and edges [source, target, weight] or, for annotated
// graphs, [source, target, weight, significance].

const msgpFormatVersion = 1

func writeMsgp(w io.Writer, g *cooc.Graph) error {
	bw := lz4.NewWriter(w)
	lz4options := []lz4.Option{
		lz4.BlockChecksumOption(true),
		lz4.ChecksumOption(true),
		lz4.CompressionLevelOption(lz4.Level9),
		lz4.ConcurrencyOption(-1),
	}
	if err := bw.Apply(lz4options...); err != nil {
		return err
	}
	e := msgp.NewWriter(bw)

	e.WriteMapHeader(8)
	e.WriteString("version")
	e.WriteInt(msgpFormatVersion)
	e.WriteString("Ntweets")
	e.WriteInt64(g.TotalOccasions)
	e.WriteString("weight_threshold")
	e.WriteInt64(g.WeightThreshold)
	e.WriteString("p0")
	if g.Annotated() {
		e.WriteFloat64(g.P0)
	} else {
		e.WriteFloat64(0)
	}
	e.WriteString("start_date")
	e.WriteString(g.StartDate)
	e.WriteString("stop_date")
	e.WriteString(g.StopDate)

	e.WriteString("vertices")
	e.WriteArrayHeader(uint32(g.Order()))
	for v := 0; v < g.Order(); v++ {
		e.WriteArrayHeader(2)
		e.WriteString(g.Name(v))
		e.WriteInt64(g.Count(v))
	}

	e.WriteString("edges")
	e.WriteArrayHeader(uint32(g.Size()))
	fields := uint32(3)
	if g.Annotated() {
		fields = 4
	}
	for i := 0; i < g.Size(); i++ {
		edge := g.Edge(i)
		e.WriteArrayHeader(fields)
		e.WriteInt(edge.U)
		e.WriteInt(edge.V)
		e.WriteInt64(edge.Weight)
		if fields == 4 {
			if err := e.WriteFloat64(g.Significance(i)); err != nil {
				return err
			}
		}
	}

	if err := e.Flush(); err != nil {
		return err
	}
	return bw.Close()
}

func readMsgp(r io.Reader) (*cooc.Graph, error) {
	br := lz4.NewReader(r)
	lz4options := []lz4.Option{lz4.ConcurrencyOption(-1)}
	if err := br.Apply(lz4options...); err != nil {
		return nil, err
	}
	d := msgp.NewReaderSize(br, 4*1024*1024)

	entries, err := d.ReadMapHeader()
	if err != nil {
		return nil, errors.Wrap(msgp.Cause(err), "reading graph header")
	}

	var a *assembler
	var total, threshold int64
	var p0 float64
	var startDate, stopDate string
	ensure := func() {
		if a == nil {
			a = newAssembler(total, threshold)
		}
	}
	for ; entries > 0; entries-- {
		key, err := d.ReadString()
		if err != nil {
			return nil, err
		}
		switch key {
		case "version":
			var version int
			if version, err = d.ReadInt(); err == nil && version != msgpFormatVersion {
				err = errors.Errorf("unsupported graph format version %v", version)
			}
		case "Ntweets":
			total, err = d.ReadInt64()
		case "weight_threshold":
			threshold, err = d.ReadInt64()
		case "p0":
			p0, err = d.ReadFloat64()
		case "start_date":
			startDate, err = d.ReadString()
		case "stop_date":
			stopDate, err = d.ReadString()
		case "vertices":
			ensure()
			err = readMsgpVertices(d, a)
		case "edges":
			ensure()
			err = readMsgpEdges(d, a)
		default:
			err = d.Skip()
		}
		if err != nil {
			return nil, errors.Wrapf(err, "reading %v", key)
		}
	}
	ensure()
	a.g.TotalOccasions, a.g.WeightThreshold = total, threshold
	a.g.StartDate, a.g.StopDate = startDate, stopDate
	return a.finish(p0)
}

func readMsgpVertices(d *msgp.Reader, a *assembler) error {
	count, err := d.ReadArrayHeader()
	if err != nil {
		return err
	}
	for i := 0; i < int(count); i++ {
		fields, err := d.ReadArrayHeader()
		if err != nil {
			return err
		}
		if fields != 2 {
			return errors.Errorf("vertex %v has %v fields", i, fields)
		}
		name, err := d.ReadString()
		if err != nil {
			return err
		}
		vertexCount, err := d.ReadInt64()
		if err != nil {
			return err
		}
		if err = a.vertex(i, name, vertexCount); err != nil {
			return err
		}
	}
	return nil
}

func readMsgpEdges(d *msgp.Reader, a *assembler) error {
	count, err := d.ReadArrayHeader()
	if err != nil {
		return err
	}
	for i := 0; i < int(count); i++ {
		fields, err := d.ReadArrayHeader()
		if err != nil {
			return err
		}
		if fields != 3 && fields != 4 {
			return errors.Errorf("edge %v has %v fields", i, fields)
		}
		u, err := d.ReadInt()
		if err != nil {
			return err
		}
		v, err := d.ReadInt()
		if err != nil {
			return err
		}
		weight, err := d.ReadInt64()
		if err != nil {
			return err
		}
		var significance *float64
		if fields == 4 {
			s, err := d.ReadFloat64()
			if err != nil {
				return err
			}
			significance = &s
		}
		if err = a.edge(u, v, weight, significance); err != nil {
			return err
		}
	}
	return nil
}
