package cmd

import (
	"github.com/spf13/cobra"
	"github.com/tanq16/speedprobe/internal/output"
	"github.com/tanq16/speedprobe/internal/utils"
)

func newCleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean [path]",
		Short: "Remove a scratch file left behind by an interrupted test",
		Args:  cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			path := outputPath
			if len(args) > 0 {
				path = args[0]
			}
			if err := utils.CleanSink(path); err != nil {
				output.PrintError("Error cleaning up scratch file: " + err.Error())
				exit(1)
			}
			output.PrintSuccess("Scratch file cleaned up")
		},
	}
}
