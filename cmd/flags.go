// flags.go defines global CLI flags and accessors for shared state,
// grounded on the teacher's cmd/flags.go (package-level flag vars with
// exported accessor functions rather than direct cobra plumbing).
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var validOutputFormats = []string{"json"}

var (
	output string
	root   string
	config string
	force  bool
)

// out is the output writer for commands. Defaults to os.Stdout; tests
// replace it to capture output.
var out io.Writer = os.Stdout

// Out returns the output writer.
func Out() io.Writer { return out }

// SetOut sets the output writer (for testing).
func SetOut(w io.Writer) { out = w }

// Output returns the output format flag value.
func Output() string { return output }

// JSON returns true if JSON output is requested.
func JSON() bool { return output == "json" }

// Force returns the force flag value.
func Force() bool { return force }

// Root returns the resolved engine root directory.
// Priority: --root flag > DUPIN_ROOT env var > "./data".
func Root() string {
	if root != "" {
		return root
	}
	if v := os.Getenv("DUPIN_ROOT"); v != "" {
		return v
	}
	return "./data"
}

// ConfigPath returns the explicit config file path, if any.
// Priority: --config flag > DUPIN_CONFIG env var > empty (use defaults).
func ConfigPath() string {
	if config != "" {
		return config
	}
	return os.Getenv("DUPIN_CONFIG")
}

// PrintJSON marshals v to JSON and writes it to the output writer.
// Returns nil if output format is not JSON.
func PrintJSON(v any) error {
	if output != "json" {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Fprintln(out, string(b))
	return nil
}

// PrintJSONError prints an error in JSON format if output is JSON.
// Returns nil if the error was printed (suppressing cobra's duplicate
// printing), or the original error otherwise.
func PrintJSONError(err error) error {
	if output != "json" || err == nil {
		return err
	}
	_ = PrintJSON(map[string]string{"error": err.Error()})
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "", "Output format: json")
	rootCmd.PersistentFlags().StringVar(&root, "root", "", "Engine root directory (default ./data)")
	rootCmd.PersistentFlags().StringVar(&config, "config", "", "Path to a YAML engine config file")
	rootCmd.PersistentFlags().BoolVar(&force, "force", false, "Skip confirmations")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return validOutputFormats, cobra.ShellCompDirectiveNoFileComp
	})
}
