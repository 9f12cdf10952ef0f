package graphio

import (
	"io"

	jsoniter "github.com/json-iterator/go"
	"github.com/lkarlslund/tagcamps/modules/cooc"
	"github.com/pkg/errors"
)

var qjson = jsoniter.ConfigCompatibleWithStandardLibrary

type jsonGraph struct {
	Graph    jsonMeta     `json:"graph"`
	Vertices []jsonVertex `json:"vertices"`
	Edges    []jsonEdge   `json:"edges"`
}

type jsonMeta struct {
	Ntweets         int64   `json:"Ntweets"`
	P0              float64 `json:"p0,omitempty"`
	WeightThreshold int64   `json:"weight_threshold"`
	StartDate       string  `json:"start_date,omitempty"`
	StopDate        string  `json:"stop_date,omitempty"`
}

type jsonVertex struct {
	ID     int    `json:"id"`
	Name   string `json:"names"`
	Counts int64  `json:"counts"`
}

type jsonEdge struct {
	Source       int      `json:"source"`
	Target       int      `json:"target"`
	Weights      int64    `json:"weights"`
	Significance *float64 `json:"s,omitempty"`
}

func writeJSON(w io.Writer, g *cooc.Graph) error {
	jg := jsonGraph{
		Graph: jsonMeta{
			Ntweets:         g.TotalOccasions,
			WeightThreshold: g.WeightThreshold,
			StartDate:       g.StartDate,
			StopDate:        g.StopDate,
		},
		Vertices: make([]jsonVertex, g.Order()),
		Edges:    make([]jsonEdge, g.Size()),
	}
	if g.Annotated() {
		jg.Graph.P0 = g.P0
	}
	for v := range jg.Vertices {
		jg.Vertices[v] = jsonVertex{ID: v, Name: g.Name(v), Counts: g.Count(v)}
	}
	for i := range jg.Edges {
		e := g.Edge(i)
		jg.Edges[i] = jsonEdge{Source: e.U, Target: e.V, Weights: e.Weight}
		if g.Annotated() {
			s := g.Significance(i)
			jg.Edges[i].Significance = &s
		}
	}
	encoder := qjson.NewEncoder(w)
	encoder.SetIndent("", " ")
	return encoder.Encode(jg)
}

func readJSON(r io.Reader) (*cooc.Graph, error) {
	var jg jsonGraph
	if err := qjson.NewDecoder(r).Decode(&jg); err != nil {
		return nil, errors.Wrap(err, "decoding JSON graph")
	}

	b := newAssembler(jg.Graph.Ntweets, jg.Graph.WeightThreshold)
	b.g.StartDate, b.g.StopDate = jg.Graph.StartDate, jg.Graph.StopDate
	for _, v := range jg.Vertices {
		if err := b.vertex(v.ID, v.Name, v.Counts); err != nil {
			return nil, err
		}
	}
	for _, e := range jg.Edges {
		if err := b.edge(e.Source, e.Target, e.Weights, e.Significance); err != nil {
			return nil, err
		}
	}
	return b.finish(jg.Graph.P0)
}
