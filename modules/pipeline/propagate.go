package pipeline

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/lkarlslund/tagcamps/modules/cli"
	"github.com/lkarlslund/tagcamps/modules/cooc"
	"github.com/lkarlslund/tagcamps/modules/persistence"
	"github.com/lkarlslund/tagcamps/modules/propagate"
	"github.com/lkarlslund/tagcamps/modules/settings"
	"github.com/lkarlslund/tagcamps/modules/ui"
	"github.com/spf13/cobra"
)

var (
	propagateCmd = &cobra.Command{
		Use:   "propagate",
		Short: "Filters an annotated graph and spreads the camp labels one hop",
	}
	propagateInput    = propagateCmd.Flags().String("input", "annotated.json", "Annotated graph")
	propagateOutput   = propagateCmd.Flags().String("output", "propagation.csv", "Result table, .csv or .json")
	propagateFiltered = propagateCmd.Flags().String("filtered", "", "Also save the filtered graph to this file")
	propagateCamps    = addCampFlags(propagateCmd.Flags())
	propagateOptions  settings.Options

	selectCmd = &cobra.Command{
		Use:   "select",
		Short: "Picks the top candidates of every camp from a propagation result",
	}
	selectInput   = selectCmd.Flags().String("input", "propagation.csv", "Result table written by propagate")
	selectOutput  = selectCmd.Flags().String("output", "", "Write the selected camps to this YAML file")
	selectOnlyNew = selectCmd.Flags().Bool("onlynew", false, "Skip tags that already are seeds")
	selectExclude = selectCmd.Flags().StringSlice("exclude", nil, "Glob patterns of tags that are never selected")
	selectOptions settings.Options

	iterateCmd = &cobra.Command{
		Use:   "iterate",
		Short: "Repeats propagate and select, feeding the candidates back as seeds",
	}
	iterateInput   = iterateCmd.Flags().String("input", "annotated.json", "Annotated graph")
	iterateRounds  = iterateCmd.Flags().Int("rounds", 3, "Maximum number of rounds")
	iterateOutput  = iterateCmd.Flags().String("output", "camps.yaml", "Write the final camps to this YAML file")
	iterateSave    = iterateCmd.Flags().String("save", "", "Store the final camps as a group with this name")
	iterateExclude = iterateCmd.Flags().StringSlice("exclude", nil, "Glob patterns of tags that are never added")
	iterateCamps   = addCampFlags(iterateCmd.Flags())
	iterateOptions settings.Options
)

func init() {
	propagateOptions.Bind(propagateCmd.Flags(), settings.KeyP0, settings.KeyCountRatio, settings.KeyNCPU)
	selectOptions.Bind(selectCmd.Flags(), settings.KeyNumTopHashtags)
	iterateOptions.Bind(iterateCmd.Flags(), settings.KeyP0, settings.KeyCountRatio, settings.KeyNumTopHashtags, settings.KeyNCPU)

	cli.Root.AddCommand(propagateCmd, selectCmd, iterateCmd)
	propagateCmd.RunE = runPropagate
	selectCmd.RunE = runSelect
	iterateCmd.RunE = runIterate
}

func report(p *Propagation) {
	s := p.FilterStats
	ui.Info().Msgf("Reference count %v: dropped %v rare tags, %v edges with them, %v edges below significance and %v isolated tags",
		p.ReferenceMaxCount, s.VerticesBelowCount, s.EdgesOfDroppedVertices, s.EdgesBelowSignificance, s.IsolatedVertices)
	ui.Info().Msgf("Filtered graph has %v of %v tags and %v of %v edges", s.VerticesOut, s.VerticesIn, s.EdgesOut, s.EdgesIn)
	if components := cooc.Components(p.Filtered); len(components) > 1 {
		ui.Info().Msgf("Filtered graph falls apart in %v components, the largest has %v tags", len(components), len(components[0]))
	}
	for _, warning := range p.Warnings {
		ui.Warn().Msgf("%v", warning)
	}
}

func runPropagate(cmd *cobra.Command, args []string) error {
	if err := propagateOptions.Validate(); err != nil {
		return err
	}
	camps, err := propagateCamps.load()
	if err != nil {
		return err
	}
	tuneRuntime()
	g, err := loadGraph(*propagateInput)
	if err != nil {
		return err
	}
	if g, err = EnsureAnnotated(cmd.Context(), g, propagateOptions); err != nil {
		return err
	}

	p, err := Propagate(cmd.Context(), g, camps, propagateOptions)
	if err != nil {
		return err
	}
	report(p)

	if *propagateFiltered != "" {
		if err = saveGraph(*propagateFiltered, p.Filtered); err != nil {
			return err
		}
	}
	if err = writeResult(*propagateOutput, p.Result); err != nil {
		return err
	}

	run := persistence.NewRun("propagate")
	run.Graph = p.Filtered.Fingerprint()
	run.Input = *propagateInput
	run.Options = propagateOptions
	run.Camps = camps
	for _, l := range p.Result.Labels {
		run.Candidates = append(run.Candidates, len(propagate.Candidates(p.Result, l, propagate.SelectOptions{OnlyNew: true})))
	}
	return storeRun(run)
}

func writeResult(path string, res *propagate.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if isJSON(path) {
		err = res.WriteJSON(f)
	} else {
		err = res.WriteCSV(f)
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		ui.Info().Msgf("Wrote %v rows to %v", len(res.Rows), path)
	}
	return err
}

func storeRun(run persistence.Run) error {
	runs, err := persistence.GetStorage[persistence.Run](persistence.RunsBucket, false)
	if err != nil {
		return err
	}
	if err = runs.Put(run); err != nil {
		return err
	}
	ui.Debug().Msgf("Stored run %v", run.ID())
	return nil
}

func runSelect(cmd *cobra.Command, args []string) error {
	exclude, err := propagate.CompileExcludes(*selectExclude)
	if err != nil {
		return err
	}
	f, err := os.Open(*selectInput)
	if err != nil {
		return err
	}
	res, err := propagate.ReadCSV(f)
	f.Close()
	if err != nil {
		return err
	}

	camps := make([][]string, len(res.Labels))
	for i, l := range res.Labels {
		candidates := propagate.Candidates(res, l, propagate.SelectOptions{
			Limit:   selectOptions.NumTopHashtags,
			OnlyNew: *selectOnlyNew,
			Exclude: exclude,
		})
		var rows [][]string
		for rank, row := range candidates {
			camps[i] = append(camps[i], row.Name)
			rows = append(rows, []string{
				strconv.Itoa(rank + 1),
				row.Name,
				strconv.FormatInt(row.Count, 10),
				row.InitialLabel.String(),
				strconv.FormatFloat(row.SignificanceSum[i], 'f', 2, 64),
			})
		}
		ui.Info().Msgf("Camp %v has %v candidates", l, len(candidates))
		if err = ui.Table([]string{"rank", "tag", "count", "seed of", "significance"}, rows); err != nil {
			return err
		}
	}

	if *selectOutput != "" {
		if err = WriteCampsFile(*selectOutput, camps); err != nil {
			return err
		}
		ui.Info().Msgf("Wrote camps to %v", *selectOutput)
	}
	return nil
}

func runIterate(cmd *cobra.Command, args []string) error {
	if err := iterateOptions.Validate(); err != nil {
		return err
	}
	exclude, err := propagate.CompileExcludes(*iterateExclude)
	if err != nil {
		return err
	}
	camps, err := iterateCamps.load()
	if err != nil {
		return err
	}
	tuneRuntime()
	g, err := loadGraph(*iterateInput)
	if err != nil {
		return err
	}
	if g, err = EnsureAnnotated(cmd.Context(), g, iterateOptions); err != nil {
		return err
	}

	final, err := Iterate(cmd.Context(), g, camps, iterateOptions, *iterateRounds, iterateOptions.NumTopHashtags, exclude,
		func(round int, p *Propagation, next [][]string) {
			report(p)
			for i, camp := range next {
				ui.Info().Msgf("Round %v: camp %v has %v tags", round, i+1, len(camp))
			}
		})
	if err != nil {
		return err
	}

	if *iterateOutput != "" {
		if err = WriteCampsFile(*iterateOutput, final); err != nil {
			return err
		}
		ui.Info().Msgf("Wrote camps to %v", *iterateOutput)
	}
	if *iterateSave != "" {
		if err = saveGroup(*iterateSave, final); err != nil {
			return err
		}
	}

	run := persistence.NewRun("iterate")
	run.Graph = g.Fingerprint()
	run.Input = *iterateInput
	run.Options = iterateOptions
	run.Camps = final
	for i := range final {
		grown := len(final[i])
		if i < len(camps) {
			grown -= len(camps[i])
		}
		run.Candidates = append(run.Candidates, grown)
	}
	return storeRun(run)
}

func saveGroup(name string, camps [][]string) error {
	groups, err := persistence.GetStorage[persistence.Group](persistence.GroupsBucket, false)
	if err != nil {
		return err
	}
	group := persistence.Group{Name: name, Camps: camps, Created: time.Now()}
	if existing, found := groups.Get(name); found {
		group.Created = existing.Created
	}
	group.Updated = time.Now()
	if err = groups.Put(group); err != nil {
		return err
	}
	ui.Info().Msgf("Saved group %v with %v camps", name, len(camps))
	return nil
}

func campSummary(camps [][]string) string {
	parts := make([]string, len(camps))
	for i, camp := range camps {
		parts[i] = fmt.Sprintf("%v: %v", i+1, strings.Join(camp, ", "))
	}
	return strings.Join(parts, " | ")
}
