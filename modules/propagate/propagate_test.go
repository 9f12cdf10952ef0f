package propagate

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/lkarlslund/tagcamps/modules/cooc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type edge struct {
	u, v int
	s    float64
}

func annotated(t *testing.T, names []string, counts []int64, edges []edge) *cooc.Graph {
	t.Helper()
	g := cooc.NewGraph(1000, 1)
	for i, name := range names {
		_, err := g.AddVertex(name, counts[i])
		require.NoError(t, err)
	}
	significance := make([]float64, len(edges))
	for i, e := range edges {
		_, err := g.AddEdge(e.u, e.v, 1)
		require.NoError(t, err)
		significance[i] = e.s
	}
	require.NoError(t, g.SetSignificance(significance, 1e-6))
	return g
}

// A-C(5), B-C(2) with A in camp 1 and B in camp 2
func exampleGraph(t *testing.T) (*cooc.Graph, *Seeds) {
	g := annotated(t, []string{"A", "B", "C"}, []int64{10, 9, 8}, []edge{{0, 2, 5}, {1, 2, 2}})
	seeds, warnings := SeedsFromNames(g.Index(), [][]string{{"A"}, {"B"}})
	require.Empty(t, warnings)
	return g, seeds
}

func TestDiffuseExample(t *testing.T) {
	g, seeds := exampleGraph(t)
	res, err := Diffuse(g, seeds)
	require.NoError(t, err)
	assert.Equal(t, []Label{1, 2}, res.Labels)
	assert.Empty(t, res.Warnings)
	require.Len(t, res.Rows, 3)

	c := res.Rows[2]
	assert.Equal(t, "C", c.Name)
	assert.Equal(t, NoLabel, c.InitialLabel)
	assert.Equal(t, []int{1, 1}, c.NeighborCount)
	assert.Equal(t, []float64{5, 2}, c.SignificanceSum)

	// seeds get statistics too, A and B have no labelled neighbours
	a := res.Rows[0]
	assert.Equal(t, Label(1), a.InitialLabel)
	assert.Equal(t, []int{0, 0}, a.NeighborCount)
	assert.Equal(t, []float64{0, 0}, a.SignificanceSum)

	rows := Candidates(res, 1, SelectOptions{})
	require.Len(t, rows, 1)
	assert.Equal(t, "C", rows[0].Name)
	assert.Empty(t, Candidates(res, 2, SelectOptions{}))
	assert.Equal(t, Label(1), seeds.Label(0), "seeds changed")
	assert.Equal(t, NoLabel, seeds.Label(2), "seeds changed")
}

func TestDiffuseSeedNeighbours(t *testing.T) {
	// A(1) - B(2) - C, A - C
	g := annotated(t, []string{"A", "B", "C"}, []int64{3, 2, 1}, []edge{{0, 1, 1.5}, {1, 2, 4}, {0, 2, 0.5}})
	seeds := NewSeeds()
	require.NoError(t, seeds.Set(0, 1))
	require.NoError(t, seeds.Set(1, 2))

	res, err := Diffuse(g, seeds)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, res.Rows[0].NeighborCount)
	assert.Equal(t, []float64{0, 1.5}, res.Rows[0].SignificanceSum)
	assert.Equal(t, []int{1, 0}, res.Rows[1].NeighborCount)
	assert.Equal(t, []float64{0.5, 4}, res.Rows[2].SignificanceSum)
}

func TestDiffuseEmptySeedSet(t *testing.T) {
	g, _ := exampleGraph(t)
	seeds, warnings := SeedsFromNames(g.Index(), [][]string{{"A"}, {"missing"}})
	require.Len(t, warnings, 1)
	assert.True(t, errors.Is(warnings[0], ErrUnknownSeed))

	res, err := Diffuse(g, seeds)
	require.NoError(t, err)
	assert.Equal(t, []Label{1, 2}, res.Labels)
	require.Len(t, res.Warnings, 1)
	assert.ErrorIs(t, res.Warnings[0], ErrEmptySeedSet)
	for _, row := range res.Rows {
		assert.Equal(t, 0, row.NeighborCount[1])
		assert.Equal(t, 0.0, row.SignificanceSum[1])
	}
}

func TestDiffuseRequiresAnnotation(t *testing.T) {
	g := cooc.NewGraph(10, 1)
	g.AddVertex("a", 1)
	_, err := Diffuse(g, NewSeeds(1))
	assert.ErrorIs(t, err, cooc.ErrNotAnnotated)

	g2, _ := exampleGraph(t)
	seeds := NewSeeds()
	seeds.Set(7, 1)
	_, err = Diffuse(g2, seeds)
	assert.ErrorIs(t, err, ErrInvalidSeed)
}

func TestDiffuseParallelEqualsSerial(t *testing.T) {
	var names []string
	var counts []int64
	var edges []edge
	for i := 0; i < 60; i++ {
		names = append(names, "t"+string(rune('a'+i%26))+strings.Repeat("x", i/26))
		counts = append(counts, int64(100-i))
		for j := 0; j < i; j += 7 {
			edges = append(edges, edge{j, i, float64(i*j%11) + 0.25})
		}
	}
	g := annotated(t, names, counts, edges)
	seeds := NewSeeds()
	for v := 0; v < 60; v += 9 {
		seeds.Set(v, Label(1+(v/9)%3))
	}

	serial, err := Diffuse(g, seeds)
	require.NoError(t, err)
	for _, workers := range []int{2, 7, 100} {
		parallel, err := DiffuseParallel(context.Background(), g, seeds, workers)
		require.NoError(t, err)
		if !reflect.DeepEqual(serial, parallel) {
			t.Errorf("workers=%v: parallel result differs from serial", workers)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := DiffuseParallel(ctx, g, seeds, 4)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, res)
}

func TestSeeds(t *testing.T) {
	g := annotated(t, []string{"a", "b", "c", "d"}, []int64{50, 40, 30, 20}, []edge{{0, 1, 1}})
	seeds, warnings := SeedsFromNames(g.Index(), [][]string{{"a", "#C"}, {"b", "c", "d"}})
	require.Len(t, warnings, 1)
	assert.ErrorIs(t, warnings[0], ErrDuplicateSeed)
	assert.Equal(t, Label(1), seeds.Label(2), "first label is kept")
	assert.Equal(t, []int{0, 2}, seeds.Vertices(1))
	assert.Equal(t, []int{1, 3}, seeds.Vertices(2))
	assert.Equal(t, 4, seeds.Len())

	// camp maxima are 50 and 40
	assert.Equal(t, int64(40), ReferenceMaxCount(g, seeds))
	assert.Equal(t, int64(0), ReferenceMaxCount(g, NewSeeds(1, 2)))

	assert.ErrorIs(t, seeds.Set(3, NoLabel), ErrInvalidSeed)
	assert.NoError(t, seeds.Set(3, 2))
}

func TestCandidates(t *testing.T) {
	res := &Result{
		Labels: []Label{1, 2},
		Rows: []Row{
			{Name: "seed", Count: 90, InitialLabel: 1, SignificanceSum: []float64{9, 0}, NeighborCount: []int{1, 0}},
			{Name: "tie", Count: 80, SignificanceSum: []float64{3, 3}, NeighborCount: []int{1, 1}},
			{Name: "zero", Count: 70, SignificanceSum: []float64{0, 0}, NeighborCount: []int{0, 0}},
			{Name: "beta", Count: 50, SignificanceSum: []float64{5, 1}, NeighborCount: []int{1, 1}},
			{Name: "alpha", Count: 50, SignificanceSum: []float64{4, 0}, NeighborCount: []int{2, 0}},
			{Name: "spam_x", Count: 60, SignificanceSum: []float64{4, 0}, NeighborCount: []int{2, 0}},
			{Name: "other", Count: 40, SignificanceSum: []float64{1, 7}, NeighborCount: []int{1, 2}},
		},
	}
	names := func(rows []Row) []string {
		var result []string
		for _, row := range rows {
			result = append(result, row.Name)
		}
		return result
	}

	assert.Equal(t, []string{"seed", "spam_x", "alpha", "beta"}, names(Candidates(res, 1, SelectOptions{})))
	assert.Equal(t, []string{"other"}, names(Candidates(res, 2, SelectOptions{})))

	exclude, err := CompileExcludes([]string{"spam*"})
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha"}, names(Candidates(res, 1, SelectOptions{OnlyNew: true, Exclude: exclude, Limit: 1})))
	assert.Nil(t, Candidates(res, 3, SelectOptions{}))

	// two labels: never both
	for _, row := range res.Rows {
		assert.False(t, row.Qualifies(0) && row.Qualifies(1), row.Name)
	}

	camps := [][]string{{"seed", "gone"}, {}}
	assert.Equal(t, [][]string{{"seed", "gone", "spam_x"}, {"other"}}, NextSeeds(res, camps, 1, nil))
	assert.Equal(t, [][]string{{"seed", "gone", "alpha", "beta"}, {"other"}}, NextSeeds(res, camps, 0, exclude))
	assert.Equal(t, []string{"seed", "gone"}, camps[0], "camps changed")

	_, err = CompileExcludes([]string{"[unclosed"})
	assert.Error(t, err)
}

func TestResultTable(t *testing.T) {
	g, seeds := exampleGraph(t)
	res, err := Diffuse(g, seeds)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, res.WriteCSV(&buf))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, "name,count,label_init,vertex_id,label_sum1,signi_sum1,label_sum2,signi_sum2", lines[0])
	assert.Equal(t, "C,8,0,2,1,5,1,2", lines[3])

	back, err := ReadCSV(&buf)
	require.NoError(t, err)
	res.Warnings = nil
	assert.Equal(t, res, back)

	buf.Reset()
	require.NoError(t, res.WriteJSON(&buf))
	assert.Less(t, strings.Index(buf.String(), `"name"`), strings.Index(buf.String(), `"label_sum1"`))
	var decoded []map[string]any
	require.NoError(t, qjson.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 3)
	assert.Equal(t, "C", decoded[2]["name"])
	assert.Equal(t, 5.0, decoded[2]["signi_sum1"])
	assert.Equal(t, 1.0, decoded[2]["label_sum2"])

	legacy := "name,count,label_init,vertex_id,label_sum1,signi_sum1\nx,3,-1,0,1,2.5\n"
	back, err = ReadCSV(strings.NewReader(legacy))
	require.NoError(t, err)
	assert.Equal(t, NoLabel, back.Rows[0].InitialLabel)
	assert.Equal(t, 2.5, back.Rows[0].SignificanceSum[0])

	_, err = ReadCSV(strings.NewReader("foo,bar\n"))
	assert.Error(t, err)
}
