// Package cmd wires airvm's cobra command tree, following the
// teacher's cmd/dwscript/cmd layout: a root command (this file) plus
// one subcommand per file, each adding itself to rootCmd from its own
// init().
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version information, overridable by build flags (-ldflags), matching
// the teacher's root.go pattern.
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "airvm",
	Short: "A layered IR evaluator: AIR/CIR/EIR/PIR/LIR",
	Long: `airvm evaluates JSON IR documents through a stack of four
expression evaluators (AIR, CIR, EIR, PIR) and a CFG-based executor
(LIR), sharing one value algebra, environment model and error taxonomy
across all five.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "print the evaluator's effect log to stderr")
}
