package main

import (
	"os"

	"github.com/lkarlslund/tagcamps/modules/cli"
	_ "github.com/lkarlslund/tagcamps/modules/persistence"
	_ "github.com/lkarlslund/tagcamps/modules/pipeline"
	"github.com/lkarlslund/tagcamps/modules/ui"
)

func main() {
	err := cli.Run()

	if err != nil {
		ui.Error().Msg(err.Error())
		os.Exit(1)
	}
}
