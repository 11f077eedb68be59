// Command tetra is the driver for the toolchain: parse, type-check,
// then execute via the tree-walking interpreter or the LLVM JIT
// backend. Command tree and color-output conventions are adapted from
// cmd/glyph/main.go.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"tetra/internal/config"
)

var version = "0.1.0"

func main() {
	cfg, err := config.Load("tetra.yaml")
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	rootCmd := &cobra.Command{
		Use:     "tetra",
		Short:   "tetra language toolchain",
		Long:    "tetra compiles and runs a small statically typed imperative language, either by tree-walking interpretation or by JIT-compiling to native code through LLVM.",
		Version: version,
	}

	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored diagnostic output")
	rootCmd.PersistentFlags().String("metrics-addr", cfg.MetricsAddr, "expose Prometheus metrics on this address (e.g. :9090)")
	rootCmd.PersistentFlags().Bool("cache", cfg.Cache, "enable the on-disk JIT compilation cache")

	runCmd := &cobra.Command{
		Use:   "run <file>",
		Short: "Parse, type-check, and execute a source file",
		Args:  cobra.ExactArgs(1),
		RunE:  runRun,
	}
	runCmd.Flags().Bool("jit", cfg.Backend == "jit", "execute via the LLVM JIT backend instead of the interpreter")

	checkCmd := &cobra.Command{
		Use:   "check <file>",
		Short: "Parse and type-check a source file without executing it",
		Args:  cobra.ExactArgs(1),
		RunE:  runCheck,
	}

	watchCmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Re-run a source file whenever it changes on disk",
		Args:  cobra.ExactArgs(1),
		RunE:  runWatch,
	}
	watchCmd.Flags().Bool("jit", cfg.Backend == "jit", "execute via the LLVM JIT backend instead of the interpreter")

	rootCmd.AddCommand(runCmd, checkCmd, watchCmd)

	if err := rootCmd.Execute(); err != nil {
		printError(err)
		os.Exit(1)
	}
}
