package graphio

import (
	"encoding/xml"
	"io"
	"strconv"
	"strings"

	"github.com/lkarlslund/tagcamps/modules/cooc"
	"github.com/pkg/errors"
)

type GraphML struct {
	XMLName xml.Name     `xml:"graphml"`
	XMLNS   string       `xml:"xmlns,attr"`
	Keys    []GraphMLKey `xml:"key"`
	Graph   GraphMLGraph `xml:"graph"`
}

type GraphMLKey struct {
	ID   string `xml:"id,attr"`
	For  string `xml:"for,attr"`
	Name string `xml:"attr.name,attr"`
	Type string `xml:"attr.type,attr"`
}

type GraphMLGraph struct {
	ID          string        `xml:"id,attr,omitempty"`
	EdgeDefault string        `xml:"edgedefault,attr"`
	Data        []GraphMLData `xml:"data"`
	Nodes       []GraphMLNode `xml:"node"`
	Edges       []GraphMLEdge `xml:"edge"`
}

type GraphMLNode struct {
	ID   string        `xml:"id,attr"`
	Data []GraphMLData `xml:"data"`
}

type GraphMLEdge struct {
	Source string        `xml:"source,attr"`
	Target string        `xml:"target,attr"`
	Data   []GraphMLData `xml:"data"`
}

type GraphMLData struct {
	Key   string `xml:"key,attr"`
	Value string `xml:",chardata"`
}

func writeGraphML(w io.Writer, g *cooc.Graph) error {
	doc := GraphML{
		XMLNS: "http://graphml.graphdrawing.org/xmlns",
		Keys: []GraphMLKey{
			{ID: "Ntweets", For: "graph", Name: "Ntweets", Type: "long"},
			{ID: "weight_threshold", For: "graph", Name: "weight_threshold", Type: "long"},
			{ID: "names", For: "node", Name: "names", Type: "string"},
			{ID: "counts", For: "node", Name: "counts", Type: "long"},
			{ID: "weights", For: "edge", Name: "weights", Type: "long"},
		},
		Graph: GraphMLGraph{
			ID:          "G",
			EdgeDefault: "undirected",
			Data: []GraphMLData{
				{Key: "Ntweets", Value: strconv.FormatInt(g.TotalOccasions, 10)},
				{Key: "weight_threshold", Value: strconv.FormatInt(g.WeightThreshold, 10)},
			},
			Nodes: make([]GraphMLNode, g.Order()),
			Edges: make([]GraphMLEdge, g.Size()),
		},
	}
	if g.Annotated() {
		doc.Keys = append(doc.Keys,
			GraphMLKey{ID: "p0", For: "graph", Name: "p0", Type: "double"},
			GraphMLKey{ID: "s", For: "edge", Name: "s", Type: "double"})
		doc.Graph.Data = append(doc.Graph.Data, GraphMLData{Key: "p0", Value: formatFloat(g.P0)})
	}
	for _, date := range []struct{ key, value string }{{"start_date", g.StartDate}, {"stop_date", g.StopDate}} {
		if date.value != "" {
			doc.Keys = append(doc.Keys, GraphMLKey{ID: date.key, For: "graph", Name: date.key, Type: "string"})
			doc.Graph.Data = append(doc.Graph.Data, GraphMLData{Key: date.key, Value: date.value})
		}
	}

	for v := range doc.Graph.Nodes {
		doc.Graph.Nodes[v] = GraphMLNode{
			ID: "n" + strconv.Itoa(v),
			Data: []GraphMLData{
				{Key: "names", Value: g.Name(v)},
				{Key: "counts", Value: strconv.FormatInt(g.Count(v), 10)},
			},
		}
	}
	for i := range doc.Graph.Edges {
		e := g.Edge(i)
		edge := GraphMLEdge{
			Source: "n" + strconv.Itoa(e.U),
			Target: "n" + strconv.Itoa(e.V),
			Data:   []GraphMLData{{Key: "weights", Value: strconv.FormatInt(e.Weight, 10)}},
		}
		if g.Annotated() {
			edge.Data = append(edge.Data, GraphMLData{Key: "s", Value: formatFloat(g.Significance(i))})
		}
		doc.Graph.Edges[i] = edge
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	encoder := xml.NewEncoder(w)
	encoder.Indent("", "  ")
	if err := encoder.Encode(doc); err != nil {
		return err
	}
	return encoder.Close()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func readGraphML(r io.Reader) (*cooc.Graph, error) {
	var doc GraphML
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "decoding GraphML")
	}

	// data elements refer to key ids, attributes are known by name
	names := make(map[string]string, len(doc.Keys))
	for _, key := range doc.Keys {
		names[key.ID] = key.Name
	}
	attributes := func(data []GraphMLData) map[string]string {
		result := make(map[string]string, len(data))
		for _, d := range data {
			name := names[d.Key]
			if name == "" {
				name = d.Key
			}
			result[name] = strings.TrimSpace(d.Value)
		}
		return result
	}

	meta := attributes(doc.Graph.Data)
	var p parser
	a := newAssembler(p.int(meta, "Ntweets"), p.int(meta, "weight_threshold"))
	a.g.StartDate, a.g.StopDate = meta["start_date"], meta["stop_date"]
	p0 := p.float(meta, "p0")

	nodeIDs := make(map[string]int, len(doc.Graph.Nodes))
	for i, node := range doc.Graph.Nodes {
		attrs := attributes(node.Data)
		nodeIDs[node.ID] = i
		if err := a.vertex(i, attrs["names"], p.int(attrs, "counts")); err != nil {
			return nil, err
		}
	}
	for _, edge := range doc.Graph.Edges {
		attrs := attributes(edge.Data)
		source, found := nodeIDs[edge.Source]
		if !found {
			source = -1
		}
		target, found := nodeIDs[edge.Target]
		if !found {
			target = -1
		}
		var significance *float64
		if _, found := attrs["s"]; found {
			s := p.float(attrs, "s")
			significance = &s
		}
		if err := a.edge(source, target, p.int(attrs, "weights"), significance); err != nil {
			return nil, err
		}
	}
	if p.err != nil {
		return nil, p.err
	}
	return a.finish(p0)
}

// parser remembers the first conversion failure
type parser struct {
	err error
}

func (p *parser) int(attrs map[string]string, key string) int64 {
	value, found := attrs[key]
	if !found {
		return 0
	}
	i, err := strconv.ParseInt(value, 10, 64)
	if err != nil && p.err == nil {
		p.err = errors.Wrapf(err, "attribute %v", key)
	}
	return i
}

func (p *parser) float(attrs map[string]string, key string) float64 {
	value, found := attrs[key]
	if !found {
		return 0
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil && p.err == nil {
		p.err = errors.Wrapf(err, "attribute %v", key)
	}
	return f
}
