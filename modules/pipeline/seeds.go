package pipeline

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/lkarlslund/tagcamps/modules/util"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// campFlags are the three ways of passing seeds to a command
type campFlags struct {
	camps     *[]string
	seedsfile *string
	group     *string
}

func addCampFlags(fs *pflag.FlagSet) campFlags {
	return campFlags{
		camps:     fs.StringArray("camp", nil, "Comma separated seed tags of one camp, repeat for every camp"),
		seedsfile: fs.String("seeds", "", "YAML or JSON file with a list of seed tag lists, one per camp"),
		group:     fs.String("group", "", "Name of a stored group to use as seeds"),
	}
}

func (cf campFlags) load() ([][]string, error) {
	var sources int
	for _, set := range []bool{len(*cf.camps) > 0, *cf.seedsfile != "", *cf.group != ""} {
		if set {
			sources++
		}
	}
	if sources != 1 {
		return nil, errors.New("give seeds with exactly one of --camp, --seeds or --group")
	}

	switch {
	case len(*cf.camps) > 0:
		return ParseCamps(*cf.camps), nil
	case *cf.seedsfile != "":
		return ReadCampsFile(*cf.seedsfile)
	}
	group, err := loadGroup(*cf.group)
	if err != nil {
		return nil, err
	}
	return group.Camps, nil
}

// ParseCamps splits "a,b,c" camp arguments into tag lists
func ParseCamps(args []string) [][]string {
	camps := make([][]string, 0, len(args))
	for _, arg := range args {
		var camp []string
		for _, tag := range strings.Split(arg, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				camp = append(camp, tag)
			}
		}
		camps = append(camps, camp)
	}
	return camps
}

// ReadCampsFile reads a list of tag lists from a .json or YAML file
func ReadCampsFile(path string) ([][]string, error) {
	var camps [][]string
	if isJSON(path) {
		if err := util.ReadJSON(path, &camps); err != nil {
			return nil, errors.Wrapf(err, "parsing seeds file %v", path)
		}
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err = yaml.Unmarshal(data, &camps); err != nil {
			return nil, errors.Wrapf(err, "parsing seeds file %v", path)
		}
	}
	if len(camps) == 0 {
		return nil, errors.Errorf("seeds file %v has no camps", path)
	}
	return camps, nil
}

func WriteCampsFile(path string, camps [][]string) error {
	if isJSON(path) {
		return util.WriteJSON(path, camps)
	}
	data, err := yaml.Marshal(camps)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}
