package pipeline

import (
	"strconv"
	"time"

	"github.com/lkarlslund/tagcamps/modules/cli"
	"github.com/lkarlslund/tagcamps/modules/persistence"
	"github.com/lkarlslund/tagcamps/modules/ui"
	"github.com/lkarlslund/tagcamps/modules/util"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	groupsCmd = &cobra.Command{
		Use:   "groups",
		Short: "Manages stored camp lists",
	}
	groupsSaveCmd = &cobra.Command{
		Use:   "save NAME",
		Short: "Stores camps under a name",
		Args:  cobra.ExactArgs(1),
	}
	groupsSaveCamps = addCampFlags(groupsSaveCmd.Flags())
	groupsListCmd   = &cobra.Command{
		Use:   "list",
		Short: "Lists the stored groups",
		Args:  cobra.NoArgs,
	}
	groupsShowCmd = &cobra.Command{
		Use:   "show NAME",
		Short: "Shows the camps of a stored group",
		Args:  cobra.ExactArgs(1),
	}
	groupsExportCmd = &cobra.Command{
		Use:   "export NAME [FILE]",
		Short: "Writes the camps of a stored group to a YAML or JSON file, named after the group by default",
		Args:  cobra.RangeArgs(1, 2),
	}
	groupsDeleteCmd = &cobra.Command{
		Use:   "delete NAME",
		Short: "Deletes a stored group",
		Args:  cobra.ExactArgs(1),
	}
)

func init() {
	cli.Root.AddCommand(groupsCmd)
	groupsCmd.AddCommand(groupsSaveCmd, groupsListCmd, groupsShowCmd, groupsExportCmd, groupsDeleteCmd)
	groupsSaveCmd.RunE = groupsSave
	groupsListCmd.RunE = groupsList
	groupsShowCmd.RunE = groupsShow
	groupsExportCmd.RunE = groupsExport
	groupsDeleteCmd.RunE = groupsDelete
}

func groupsSave(cmd *cobra.Command, args []string) error {
	camps, err := groupsSaveCamps.load()
	if err != nil {
		return err
	}
	return saveGroup(args[0], camps)
}

func groupsList(cmd *cobra.Command, args []string) error {
	groups, err := persistence.GetStorage[persistence.Group](persistence.GroupsBucket, false)
	if err != nil {
		return err
	}
	list, err := groups.List()
	if err != nil {
		return err
	}
	var rows [][]string
	for _, group := range list {
		tags := 0
		for _, camp := range group.Camps {
			tags += len(camp)
		}
		rows = append(rows, []string{group.Name, strconv.Itoa(len(group.Camps)), strconv.Itoa(tags), group.Updated.Format(time.DateTime)})
	}
	return ui.Table([]string{"name", "camps", "tags", "updated"}, rows)
}

func loadGroup(name string) (persistence.Group, error) {
	groups, err := persistence.GetStorage[persistence.Group](persistence.GroupsBucket, false)
	if err != nil {
		return persistence.Group{}, err
	}
	group, found := groups.Get(name)
	if !found {
		return persistence.Group{}, errors.Errorf("no stored group named %q", name)
	}
	return *group, nil
}

func groupsShow(cmd *cobra.Command, args []string) error {
	group, err := loadGroup(args[0])
	if err != nil {
		return err
	}
	ui.Info().Msgf("Group %v: %v", group.Name, campSummary(group.Camps))
	return nil
}

func groupsExport(cmd *cobra.Command, args []string) error {
	group, err := loadGroup(args[0])
	if err != nil {
		return err
	}
	var filename string
	if len(args) > 1 {
		filename = args[1]
	}
	filename = util.Default(filename, util.CleanFilename(group.Name)+".yaml")
	if err = WriteCampsFile(filename, group.Camps); err != nil {
		return err
	}
	ui.Info().Msgf("Wrote group %v to %v", group.Name, filename)
	return nil
}

func groupsDelete(cmd *cobra.Command, args []string) error {
	groups, err := persistence.GetStorage[persistence.Group](persistence.GroupsBucket, false)
	if err != nil {
		return err
	}
	if err = groups.Delete(args[0]); err != nil {
		return errors.Wrapf(err, "group %v", args[0])
	}
	ui.Info().Msgf("Deleted group %v", args[0])
	return nil
}
