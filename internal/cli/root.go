package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Exit statuses. ExitBlocked means the analysis ran and found at least one
// error; ExitFault means the analysis could not run.
const (
	ExitOK      = 0
	ExitBlocked = 1
	ExitFault   = 2
)

var (
	version   string
	logLevel  string
	logFormat string
)

// BuildInfo is injected by the linker at release time.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"goVersion"`
}

// ExitError carries a non-zero exit status that is not a failure of the tool.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

func newRootCmd(info BuildInfo) *cobra.Command {
	version = info.Version

	root := &cobra.Command{
		Use:           "synapsespectre",
		Short:         "Synapse to MAS migration readiness auditor",
		Long:          "Inspects a Synapse homeserver.yaml and its database read-only and reports what blocks or complicates a migration to the Matrix Authentication Service.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format: text or json")

	root.AddCommand(newVersionCmd(info))
	root.AddCommand(newCheckCmd())
	root.AddCommand(newInitCmd())

	return root
}

func newVersionCmd(info BuildInfo) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		RunE: func(cmd *cobra.Command, args []string) error {
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "synapsespectre %s (commit %s, built %s, %s)\n",
				info.Version, info.Commit, info.Date, info.GoVersion)
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print build info as JSON")
	return cmd
}

// Execute runs the root command. Errors other than *ExitError are printed
// to stderr.
func Execute(info BuildInfo) error {
	err := newRootCmd(info).Execute()
	var exitErr *ExitError
	if err != nil && !errors.As(err, &exitErr) {
		_, _ = fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}

// ExitCode maps the result of Execute to a process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFault
}
