package graphio

import (
	"encoding/xml"
	"io"
	"strconv"

	"github.com/lkarlslund/tagcamps/modules/cooc"
	"github.com/pkg/errors"
)

// XGMML is the Cytoscape graph format
type XGMMLGraph struct {
	XMLName    xml.Name `xml:"graph"`
	XMLNS      string   `xml:"xmlns,attr"`
	XMLNSDC    string   `xml:"xmlns:dc,attr"`
	XMLNSXLINK string   `xml:"xmlns:xlink,attr"`
	XMLNSRDF   string   `xml:"xmlns:rdf,attr"`
	XMLNSCY    string   `xml:"xmlns:cy,attr"`

	Directed int    `xml:"directed,attr"`
	Label    string `xml:"label,attr,omitempty"`

	Attributes []XGMMLAttribute `xml:"att"`
	Nodes      []XGMMLNode      `xml:"node"`
	Edges      []XGMMLEdge      `xml:"edge"`
}

type XGMMLNode struct {
	Id         int              `xml:"id,attr"`
	Label      string           `xml:"label,attr"`
	Attributes []XGMMLAttribute `xml:"att"`
}

type XGMMLEdge struct {
	Source     int              `xml:"source,attr"`
	Target     int              `xml:"target,attr"`
	Label      string           `xml:"label,attr"`
	Attributes []XGMMLAttribute `xml:"att"`
}

type XGMMLAttribute struct {
	Name  string `xml:"name,attr"`
	Type  string `xml:"type,attr,omitempty"`
	Value string `xml:"value,attr"`
}

func NewXGMMLGraph() XGMMLGraph {
	return XGMMLGraph{
		XMLNS:      "http://www.cs.rpi.edu/XGMML",
		XMLNSDC:    "http://purl.org/dc/elements/1.1/",
		XMLNSXLINK: "http://www.w3.org/1999/xlink",
		XMLNSRDF:   "http://www.w3.org/1999/02/22-rdf-syntax-ns#",
		XMLNSCY:    "http://www.cytoscape.org",
	}
}

func intAtt(name string, value int64) XGMMLAttribute {
	return XGMMLAttribute{Name: name, Type: "integer", Value: strconv.FormatInt(value, 10)}
}

func realAtt(name string, value float64) XGMMLAttribute {
	return XGMMLAttribute{Name: name, Type: "real", Value: formatFloat(value)}
}

func writeXGMML(w io.Writer, g *cooc.Graph) error {
	doc := NewXGMMLGraph()
	doc.Label = "co-occurrence"
	doc.Attributes = []XGMMLAttribute{
		intAtt("Ntweets", g.TotalOccasions),
		intAtt("weight_threshold", g.WeightThreshold),
	}
	if g.Annotated() {
		doc.Attributes = append(doc.Attributes, realAtt("p0", g.P0))
	}
	if g.StartDate != "" {
		doc.Attributes = append(doc.Attributes, XGMMLAttribute{Name: "start_date", Type: "string", Value: g.StartDate})
	}
	if g.StopDate != "" {
		doc.Attributes = append(doc.Attributes, XGMMLAttribute{Name: "stop_date", Type: "string", Value: g.StopDate})
	}

	doc.Nodes = make([]XGMMLNode, g.Order())
	for v := range doc.Nodes {
		doc.Nodes[v] = XGMMLNode{
			Id:         v,
			Label:      g.Name(v),
			Attributes: []XGMMLAttribute{intAtt("counts", g.Count(v))},
		}
	}
	doc.Edges = make([]XGMMLEdge, g.Size())
	for i := range doc.Edges {
		e := g.Edge(i)
		edge := XGMMLEdge{
			Source:     e.U,
			Target:     e.V,
			Label:      g.Name(e.U) + " - " + g.Name(e.V),
			Attributes: []XGMMLAttribute{intAtt("weights", e.Weight)},
		}
		if g.Annotated() {
			edge.Attributes = append(edge.Attributes, realAtt("s", g.Significance(i)))
		}
		doc.Edges[i] = edge
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

func xgmmlAttributes(atts []XGMMLAttribute) map[string]string {
	result := make(map[string]string, len(atts))
	for _, att := range atts {
		result[att.Name] = att.Value
	}
	return result
}

func readXGMML(r io.Reader) (*cooc.Graph, error) {
	var doc XGMMLGraph
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "decoding XGMML")
	}

	var p parser
	meta := xgmmlAttributes(doc.Attributes)
	a := newAssembler(p.int(meta, "Ntweets"), p.int(meta, "weight_threshold"))
	a.g.StartDate, a.g.StopDate = meta["start_date"], meta["stop_date"]
	p0 := p.float(meta, "p0")
	for _, node := range doc.Nodes {
		if err := a.vertex(node.Id, node.Label, p.int(xgmmlAttributes(node.Attributes), "counts")); err != nil {
			return nil, err
		}
	}
	for _, edge := range doc.Edges {
		attrs := xgmmlAttributes(edge.Attributes)
		var significance *float64
		if _, found := attrs["s"]; found {
			s := p.float(attrs, "s")
			significance = &s
		}
		if err := a.edge(edge.Source, edge.Target, p.int(attrs, "weights"), significance); err != nil {
			return nil, err
		}
	}
	if p.err != nil {
		return nil, p.err
	}
	return a.finish(p0)
}
