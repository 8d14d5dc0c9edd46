package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/tanq16/speedprobe/internal/metrics"
	"github.com/tanq16/speedprobe/internal/output"
	"github.com/tanq16/speedprobe/internal/probe"
	"github.com/tanq16/speedprobe/internal/scheduler"
	"github.com/tanq16/speedprobe/internal/source"
	"github.com/tanq16/speedprobe/internal/utils"
)

var (
	outputPath     string
	light          bool
	standard       bool
	heavy          bool
	connectTimeout time.Duration
	stallTimeout   time.Duration
	kaTimeout      time.Duration
	userAgent      string
	proxyURL       string
	proxyUsername  string
	proxyPassword  string
	headers        []string
	jsonOutput     bool
	metricsFile    string
	awsProfile     string
	awsRegion      string
	debug          bool
	logFile        string
	logCloser      io.Closer
)

var SpeedProbeVersion = "dev"

var rootCmd = &cobra.Command{
	Use:     "speedprobe [URL] [--light | --standard | --heavy]",
	Short:   "speedprobe measures download throughput against a file of known size",
	Long:    "speedprobe downloads a file over HTTP(S) or from S3, reports live speed,\nthen prints total, average and peak throughput.\n\nPresets:\n" + presetHelp(),
	Version: SpeedProbeVersion,
	Args:    cobra.MaximumNArgs(1),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		closer, err := utils.InitLogger(debug, logFile)
		if err != nil {
			return err
		}
		logCloser = closer
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		closeLog()
	},
	Run: func(cmd *cobra.Command, args []string) {
		jobs, err := jobsFromArgs(args)
		if err != nil {
			output.PrintError(err.Error())
			exit(1)
		}
		if len(jobs) == 0 {
			cmd.Usage()
			exit(1)
		}
		if err := runJobs(jobs); err != nil {
			exit(1)
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		exit(1)
	}
}

// closeLog flushes and closes the log file opened by InitLogger. Safe to call more than once.
func closeLog() {
	if logCloser != nil {
		logCloser.Close()
		logCloser = nil
	}
}

// exit closes the log first; os.Exit does not run PersistentPostRun.
func exit(code int) {
	closeLog()
	os.Exit(code)
}

func init() {
	rootCmd.Flags().BoolVar(&light, "light", false, presetUsage("light"))
	rootCmd.Flags().BoolVar(&standard, "standard", false, presetUsage("standard"))
	rootCmd.Flags().BoolVar(&heavy, "heavy", false, presetUsage("heavy"))
	rootCmd.MarkFlagsMutuallyExclusive("light", "standard", "heavy")

	rootCmd.PersistentFlags().StringVarP(&outputPath, "output", "o", utils.DefaultSinkName, "Scratch file path (deleted after each test)")
	rootCmd.PersistentFlags().DurationVarP(&connectTimeout, "connect-timeout", "t", utils.DefaultConnectTimeout, "Connection and response header timeout (eg. 5s, 1m)")
	rootCmd.PersistentFlags().DurationVar(&stallTimeout, "stall-timeout", utils.DefaultStallTimeout, "Fail when no bytes arrive for this long")
	rootCmd.PersistentFlags().DurationVarP(&kaTimeout, "keep-alive-timeout", "k", 90*time.Second, "Keep-alive timeout for client (eg. 10s, 1m, 80s)")
	rootCmd.PersistentFlags().StringVarP(&userAgent, "user-agent", "a", utils.ToolUserAgent, "User agent ('randomize' picks a browser agent)")
	rootCmd.PersistentFlags().StringVarP(&proxyURL, "proxy", "p", "", "HTTP/HTTPS proxy URL (e.g., proxy.example.com:8080)")
	rootCmd.PersistentFlags().StringVar(&proxyUsername, "proxy-username", "", "Proxy username (if not provided in proxy URL)")
	rootCmd.PersistentFlags().StringVar(&proxyPassword, "proxy-password", "", "Proxy password (if not provided in proxy URL)")
	rootCmd.PersistentFlags().StringArrayVarP(&headers, "header", "H", []string{}, "Custom headers (like 'Authorization: Basic dXNlcjpwYXNz'); can be specified multiple times")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print reports as JSON instead of the text block")
	rootCmd.PersistentFlags().StringVar(&metricsFile, "metrics-file", "", "Write prometheus metrics for the run to this textfile")
	rootCmd.PersistentFlags().StringVar(&awsProfile, "aws-profile", "", "AWS profile for s3:// sources")
	rootCmd.PersistentFlags().StringVar(&awsRegion, "aws-region", "", "AWS region for s3:// sources")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to this file instead of stderr (eg. "+utils.LogFile+")")

	rootCmd.AddCommand(newBatchCmd())
	rootCmd.AddCommand(newCleanCmd())
}

func presetHelp() string {
	var b strings.Builder
	for _, p := range utils.Presets {
		fmt.Fprintf(&b, "  --%-10s = %s test (%s)\n", p.Name, p.NominalSize, p.URL)
	}
	return b.String()
}

func presetUsage(name string) string {
	p, err := utils.LookupPreset(name)
	if err != nil {
		return name
	}
	return p.NominalSize + " test"
}

func jobsFromArgs(args []string) ([]utils.ProbeJob, error) {
	preset := ""
	switch {
	case light:
		preset = "light"
	case standard:
		preset = "standard"
	case heavy:
		preset = "heavy"
	}
	if preset != "" && len(args) > 0 {
		return nil, fmt.Errorf("cannot specify a URL argument and a preset together, choose one")
	}
	entries := []utils.BatchEntry{}
	if preset != "" {
		entries = append(entries, utils.BatchEntry{Preset: preset, OutputPath: outputPath})
	} else if len(args) > 0 {
		entries = append(entries, utils.BatchEntry{Link: args[0], OutputPath: outputPath})
	}
	return utils.BuildJobs(entries, outputPath)
}

func httpConfig() utils.HTTPClientConfig {
	ua := userAgent
	if ua == "randomize" {
		ua = utils.GetRandomUserAgent()
	}
	proxy, user, pass := utils.SplitProxyAuth(proxyURL, proxyUsername, proxyPassword)
	return utils.HTTPClientConfig{
		ConnectTimeout: connectTimeout,
		KATimeout:      kaTimeout,
		ProxyURL:       proxy,
		ProxyUsername:  user,
		ProxyPassword:  pass,
		UserAgent:      ua,
		Headers:        utils.ParseHeaderArgs(headers),
	}
}

func runJobs(jobs []utils.ProbeJob) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	recorder, err := metrics.New(reg)
	if err != nil {
		output.PrintError(err.Error())
		return err
	}
	summary := output.NewSummary()
	opts := scheduler.Options{
		HTTPConfig:   httpConfig(),
		StallTimeout: stallTimeout,
		Resolver:     source.NewResolver(source.S3Config{Profile: awsProfile, Region: awsRegion}),
		Recorder:     recorder,
		Summary:      summary,
		OnReport:     printReport,
	}
	if !jsonOutput {
		opts.Display = output.NewConsoleObserver(os.Stdout)
		output.PrintInfo("Starting network speed test...")
	}

	results, runErr := scheduler.Run(ctx, jobs, opts)

	if metricsFile != "" {
		if err := metrics.WriteTextfile(metricsFile, reg); err != nil {
			output.PrintError(err.Error())
		}
	}
	if jsonOutput {
		return runErr
	}
	if len(results) > 1 {
		summary.Show(os.Stdout)
	} else if runErr != nil {
		output.PrintError("Speed test failed: " + results[0].Err.Error())
	}
	return runErr
}

func printReport(job utils.ProbeJob, report *probe.TransferReport) {
	if jsonOutput {
		data, err := output.ReportJSON(report)
		if err != nil {
			output.PrintError(err.Error())
			return
		}
		fmt.Println(string(data))
		return
	}
	fmt.Println()
	fmt.Print(output.RenderReport(report))
}
