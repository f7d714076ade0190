package main

import (
	"log"
	"os"

	"github.com/open-cli-collective/ecq/internal/cmd/root"
	"github.com/open-cli-collective/ecq/internal/view"
)

func main() {
	log.SetPrefix("ecq: ")
	log.SetFlags(0)

	cmd := root.NewCmdRoot()
	if err := cmd.Execute(); err != nil {
		noColor, _ := cmd.PersistentFlags().GetBool("no-color")
		r := view.NewRenderer(view.FormatPretty, noColor)
		r.SetWriter(os.Stderr)
		r.Error(err.Error())
		os.Exit(1)
	}
}
