package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tanq16/speedprobe/internal/utils"
	"gopkg.in/yaml.v3"
)

func newBatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch [YAML_FILE] [OPTIONS]",
		Short: "Run several speed tests listed in a YAML file, one after another",
		Long: `Run several speed tests listed in a YAML file, one after another.

Example file:
  tests:
    - preset: light
    - link: https://nbg1-speed.hetzner.com/1GB.bin
      op: /tmp/scratch.bin
    - link: s3://bucket/speed/100MB.bin`,
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			jobs, err := loadBatch(args[0], outputPath)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				exit(1)
			}
			if err := runJobs(jobs); err != nil {
				exit(1)
			}
		},
	}
	return cmd
}

func loadBatch(path, defaultSink string) ([]utils.ProbeJob, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading YAML file: %w", err)
	}
	var batchFile utils.BatchFile
	if err := yaml.Unmarshal(data, &batchFile); err != nil {
		return nil, fmt.Errorf("error parsing YAML file: %w", err)
	}
	if len(batchFile.Tests) == 0 {
		return nil, fmt.Errorf("no tests found in the batch file")
	}
	return utils.BuildJobs(batchFile.Tests, defaultSink)
}
