package propagate

import (
	"encoding/csv"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/Velocidex/ordereddict"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

var qjson = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	labelSumPrefix = "label_sum"
	signiSumPrefix = "signi_sum"
)

// Header returns the table columns: name, count, label_init, vertex_id and
// then label_sum<L>, signi_sum<L> for every label
func (r *Result) Header() []string {
	header := []string{"name", "count", "label_init", "vertex_id"}
	for _, l := range r.Labels {
		header = append(header, labelSumPrefix+l.String(), signiSumPrefix+l.String())
	}
	return header
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func (r *Result) record(row Row) []string {
	record := []string{
		row.Name,
		strconv.FormatInt(row.Count, 10),
		strconv.Itoa(int(row.InitialLabel)),
		strconv.Itoa(row.VertexID),
	}
	for i := range r.Labels {
		record = append(record, strconv.Itoa(row.NeighborCount[i]), formatFloat(row.SignificanceSum[i]))
	}
	return record
}

func (r *Result) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(r.Header()); err != nil {
		return err
	}
	for _, row := range r.Rows {
		if err := cw.Write(r.record(row)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes the rows as an array of objects keyed like the CSV header
func (r *Result) WriteJSON(w io.Writer) error {
	rows := make([]*ordereddict.Dict, len(r.Rows))
	for i, row := range r.Rows {
		d := ordereddict.NewDict().
			Set("name", row.Name).
			Set("count", row.Count).
			Set("label_init", int(row.InitialLabel)).
			Set("vertex_id", row.VertexID)
		for j, l := range r.Labels {
			d.Set(labelSumPrefix+l.String(), row.NeighborCount[j])
			d.Set(signiSumPrefix+l.String(), row.SignificanceSum[j])
		}
		rows[i] = d
	}
	encoder := qjson.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(rows)
}

// ReadCSV parses a table written by WriteCSV. A label_init of -1 is read as
// no label.
func ReadCSV(r io.Reader) (*Result, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, errors.Wrap(err, "reading result header")
	}
	if len(header) < 4 || header[0] != "name" || header[1] != "count" || header[2] != "label_init" || header[3] != "vertex_id" {
		return nil, errors.Errorf("unexpected result header %v", header)
	}

	result := &Result{}
	labelColumns := map[Label][2]int{}
	for c := 4; c < len(header); c++ {
		var column int
		var suffix string
		switch {
		case strings.HasPrefix(header[c], labelSumPrefix):
			suffix, column = strings.TrimPrefix(header[c], labelSumPrefix), 0
		case strings.HasPrefix(header[c], signiSumPrefix):
			suffix, column = strings.TrimPrefix(header[c], signiSumPrefix), 1
		default:
			continue
		}
		n, err := strconv.Atoi(suffix)
		if err != nil || n <= 0 {
			return nil, errors.Errorf("bad label in result column %q", header[c])
		}
		cols, found := labelColumns[Label(n)]
		if !found {
			cols = [2]int{-1, -1}
			result.Labels = append(result.Labels, Label(n))
		}
		cols[column] = c
		labelColumns[Label(n)] = cols
	}
	slices.Sort(result.Labels)
	for _, l := range result.Labels {
		if cols := labelColumns[l]; cols[0] < 0 || cols[1] < 0 {
			return nil, errors.Errorf("result table lacks a column for label %v", l)
		}
	}

	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			return result, nil
		}
		if err != nil {
			return nil, errors.Wrapf(err, "reading result line %v", line)
		}
		row, err := parseRow(record, result.Labels, labelColumns)
		if err != nil {
			return nil, errors.Wrapf(err, "result line %v", line)
		}
		result.Rows = append(result.Rows, row)
	}
}

func parseRow(record []string, labels []Label, columns map[Label][2]int) (Row, error) {
	row := Row{
		Name:            record[0],
		NeighborCount:   make([]int, len(labels)),
		SignificanceSum: make([]float64, len(labels)),
	}
	var err error
	if row.Count, err = strconv.ParseInt(record[1], 10, 64); err != nil {
		return row, err
	}
	initial, err := strconv.Atoi(record[2])
	if err != nil {
		return row, err
	}
	if initial > 0 {
		row.InitialLabel = Label(initial)
	}
	if row.VertexID, err = strconv.Atoi(record[3]); err != nil {
		return row, err
	}
	for i, l := range labels {
		cols := columns[l]
		if row.NeighborCount[i], err = strconv.Atoi(record[cols[0]]); err != nil {
			return row, err
		}
		if row.SignificanceSum[i], err = strconv.ParseFloat(record[cols[1]], 64); err != nil {
			return row, err
		}
	}
	return row, nil
}
