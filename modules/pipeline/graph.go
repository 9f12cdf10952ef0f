package pipeline

import (
	"os"
	"runtime/debug"
	"strconv"

	"github.com/KimMachineGun/automemlimit/memlimit"
	"github.com/lkarlslund/tagcamps/modules/cli"
	"github.com/lkarlslund/tagcamps/modules/cooc"
	"github.com/lkarlslund/tagcamps/modules/graphio"
	"github.com/lkarlslund/tagcamps/modules/settings"
	"github.com/lkarlslund/tagcamps/modules/significance"
	"github.com/lkarlslund/tagcamps/modules/ui"
	"github.com/lkarlslund/tagcamps/modules/util"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"
)

var (
	buildCmd = &cobra.Command{
		Use:   "build",
		Short: "Builds a co-occurrence graph from unit,tag occurrence records",
	}
	buildInput     = buildCmd.Flags().String("input", "occurrences.csv", "Occurrence records, one unit and one or more tags per line")
	buildOutput    = buildCmd.Flags().String("output", "graph.json", "Graph file to write (.json, .graphml, .xgmml or .msgp.lz4)")
	buildStartDate = buildCmd.Flags().String("startdate", "", "First date covered by the records, stored with the graph")
	buildStopDate  = buildCmd.Flags().String("stopdate", "", "Last date covered by the records, stored with the graph")
	buildOptions   settings.Options

	annotateCmd = &cobra.Command{
		Use:   "annotate",
		Short: "Scores every edge of a graph against the exact null model",
	}
	annotateInput   = annotateCmd.Flags().String("input", "graph.json", "Graph to annotate")
	annotateOutput  = annotateCmd.Flags().String("output", "annotated.json", "Annotated graph to write")
	annotateOptions settings.Options

	topCmd = &cobra.Command{
		Use:   "top",
		Short: "Lists the most frequent tags of a graph, to pick seeds from",
	}
	topInput   = topCmd.Flags().String("input", "graph.json", "Graph to list tags from")
	topOptions settings.Options

	convertCmd = &cobra.Command{
		Use:   "convert",
		Short: "Converts a graph file between formats",
	}
	convertInput  = convertCmd.Flags().String("input", "annotated.json", "Graph to read")
	convertOutput = convertCmd.Flags().String("output", "annotated.graphml", "Graph to write, format follows the suffix")
)

func init() {
	buildOptions.Bind(buildCmd.Flags(), settings.KeyWeightThreshold)
	annotateOptions.Bind(annotateCmd.Flags(), settings.KeyP0, settings.KeyNCPU)
	topOptions.Bind(topCmd.Flags(), settings.KeyNumTopHashtags)

	cli.Root.AddCommand(buildCmd, annotateCmd, topCmd, convertCmd)
	buildCmd.RunE = build
	annotateCmd.RunE = annotateGraph
	topCmd.RunE = top
	convertCmd.RunE = convert
}

// tuneRuntime applies memory, GC and CPU settings for the heavy commands
func tuneRuntime() {
	memlimit.SetGoMemLimit(0.8)
	debug.SetGCPercent(35)
	maxprocs.Set(maxprocs.Logger(ui.Debug().Msgf))
}

func loadGraph(path string) (*cooc.Graph, error) {
	if !util.PathExists(path) {
		return nil, errors.Errorf("graph file %v does not exist", path)
	}
	g, err := graphio.Load(path)
	if err != nil {
		return nil, err
	}
	ui.Info().Msgf("Loaded graph %v with %v vertices and %v edges over %v occasions", path, g.Order(), g.Size(), g.TotalOccasions)
	return g, nil
}

func saveGraph(path string, g *cooc.Graph) error {
	if err := graphio.Save(path, g); err != nil {
		return err
	}
	ui.Info().Msgf("Saved graph with %v vertices and %v edges to %v", g.Order(), g.Size(), path)
	return nil
}

func build(cmd *cobra.Command, args []string) error {
	if buildOptions.WeightThreshold < 1 {
		return errors.Errorf("%v must be at least 1", settings.KeyWeightThreshold)
	}
	f, err := os.Open(*buildInput)
	if err != nil {
		return err
	}
	defer f.Close()

	b := cooc.NewBuilder(int64(buildOptions.WeightThreshold))
	records, err := cooc.ReadOccurrences(f, b)
	if err != nil {
		return err
	}
	ui.Info().Msgf("Read %v records covering %v units", records, b.Units())

	g := b.Graph()
	g.StartDate, g.StopDate = *buildStartDate, *buildStopDate
	if err = g.Validate(); err != nil {
		return err
	}
	return saveGraph(*buildOutput, g)
}

func annotateGraph(cmd *cobra.Command, args []string) error {
	if err := annotateOptions.Validate(); err != nil {
		return err
	}
	tuneRuntime()
	g, err := loadGraph(*annotateInput)
	if err != nil {
		return err
	}
	annotated, err := annotate(cmd.Context(), g, annotateOptions)
	if err != nil {
		return err
	}

	s := significance.Summarize(annotated)
	ui.Info().Msgf("%v of %v edges are significant at p0 %v", s.Positive, s.Edges, annotated.P0)
	format := func(f float64) string { return strconv.FormatFloat(f, 'f', 3, 64) }
	ui.Table([]string{"mean", "stddev", "min", "q10", "median", "q90", "max"},
		[][]string{{format(s.Mean), format(s.StdDev), format(s.Min), format(s.Q10), format(s.Median), format(s.Q90), format(s.Max)}})

	return saveGraph(*annotateOutput, annotated)
}

func top(cmd *cobra.Command, args []string) error {
	g, err := loadGraph(*topInput)
	if err != nil {
		return err
	}
	var rows [][]string
	for rank, v := range g.TopByCount(topOptions.NumTopHashtags) {
		rows = append(rows, []string{
			strconv.Itoa(rank + 1),
			g.Name(v),
			strconv.FormatInt(g.Count(v), 10),
			strconv.Itoa(g.Degree(v)),
		})
	}
	return ui.Table([]string{"rank", "tag", "count", "degree"}, rows)
}

func convert(cmd *cobra.Command, args []string) error {
	g, err := loadGraph(*convertInput)
	if err != nil {
		return err
	}
	return saveGraph(*convertOutput, g)
}
