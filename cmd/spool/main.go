// Package main provides the spool CLI: small diagnostics around recorded
// tapes and the engine configuration.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/spool-ml/spool/algorithms"
	"github.com/spool-ml/spool/ops"
	"github.com/spool-ml/spool/tape"
)

const version = "v0.1.0-dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "spool",
		Short:         "Tape-based algorithmic differentiation for Go",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newVersionCmd(), newDemoCmd(), newInspectCmd(), newConfigCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("spool %s\n", version)
		},
	}
}

func newDemoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Record a sample function and print its Jacobian in both sweep modes",
		RunE: func(cmd *cobra.Command, args []string) error {
			t := tape.New(tape.DefaultOptions())
			t.SetActive()
			a := t.RegisterInput(1.5)
			b := t.RegisterInput(-2.0)
			p := t.Store(ops.Mul(a, b))
			s := t.Store(ops.Sin(a))
			t.SetPassive()

			inputs := []tape.Identifier{a.Identifier(), b.Identifier()}
			outputs := []tape.Identifier{p.Identifier(), s.Identifier()}

			fmt.Printf("f(a, b) = (a*b, sin(a)) at a=%v b=%v\n", a.Value(), b.Value())
			for _, mode := range []algorithms.Mode{algorithms.ForwardMode, algorithms.ReverseMode} {
				jac := algorithms.NewDenseJacobian(len(outputs), len(inputs))
				if err := algorithms.ComputeJacobian(t, inputs, outputs, jac, mode); err != nil {
					return err
				}
				fmt.Printf("%s mode:\n", mode)
				for i := 0; i < jac.Rows(); i++ {
					fmt.Printf("  %v\n", jac.Row(i))
				}
			}

			stats := t.Stats()
			fmt.Printf("recorded %d statements, %d jacobian entries\n",
				stats.Statements, stats.JacobianEntries)
			return nil
		},
	}
}

func newInspectCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "inspect <tape-file>",
		Short: "Print the statistics of a persisted tape",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := tape.DefaultOptions()
			if configPath != "" {
				var err error
				if opts, err = tape.LoadOptions(configPath); err != nil {
					return err
				}
			}
			t, err := tape.ReadFile(args[0], opts)
			if err != nil {
				return err
			}
			stats := t.Stats()
			fmt.Printf("statements:       %d\n", stats.Statements)
			fmt.Printf("jacobian entries: %d\n", stats.JacobianEntries)
			fmt.Printf("statement chunks: %d\n", stats.StatementChunks)
			fmt.Printf("max identifier:   %d\n", stats.MaxIdentifier)
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "YAML options file")
	return cmd
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the default configuration as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := tape.DefaultOptions().YAML()
			if err != nil {
				return err
			}
			fmt.Print(string(out))
			return nil
		},
	}
}
