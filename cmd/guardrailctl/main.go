package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/danielpatrickdp/perazzi-guardrails/go-controller/internal/codec"
	"github.com/danielpatrickdp/perazzi-guardrails/go-controller/internal/config"
	"github.com/danielpatrickdp/perazzi-guardrails/go-controller/internal/logging"
)

var (
	// Global flags
	configPath string
	verbose    bool
	remoteAddr string
	jsonOut    bool

	// Resolved in PersistentPreRunE
	cfg    config.Config
	logger *zap.Logger
)

// #region root
var rootCmd = &cobra.Command{
	Use:   "guardrailctl",
	Short: "Perazzi assistant guardrails: post-validation, retrieval policy, archetype tracking",
	Long: `guardrailctl runs and exercises the Perazzi assistant guardrail pipeline.

Configuration is read from defaults, then the --config YAML file, then
PERAZZI_* environment variables. Commands that evaluate text run locally
unless --remote names a running guardrail server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Resolve(configPath, nil)
		if err != nil {
			return err
		}
		if err := config.Validate(cfg); err != nil {
			return err
		}
		opts := logging.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format}
		if verbose {
			opts.Level = "debug"
		}
		logger, err = logging.New(opts)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&remoteAddr, "remote", "", "Evaluate through the guardrail server at this address")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Print full results as JSON")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(retrieveCmd)
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(replayCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// #endregion root

// #region helpers

// remoteClient connects to --remote, or returns nil when it is unset.
func remoteClient() (*codec.Client, error) {
	if remoteAddr == "" {
		return nil, nil
	}
	return codec.NewClient(remoteAddr)
}

// textArg joins the positional arguments, or reads stdin when there are none
// or the only argument is "-".
func textArg(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || (len(args) == 1 && args[0] == "-") {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return strings.TrimRight(string(data), "\n"), nil
	}
	return strings.Join(args, " "), nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// #endregion helpers
