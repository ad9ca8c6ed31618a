// Command sim8086 decodes or executes a stream of 8086 machine code: each
// subcommand takes a single positional path argument, printing a
// human-readable error on stderr and exiting non-zero on any I/O, decode,
// or execution error.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/BrankoKrstic/sim8086/pkg/cpu"
	"github.com/BrankoKrstic/sim8086/pkg/decoder"
	"github.com/BrankoKrstic/sim8086/pkg/inst"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "sim8086",
		Short: "Decode and simulate a subset of the Intel 8086 instruction set",
	}

	disasmCmd := &cobra.Command{
		Use:   "disasm [binary]",
		Short: "Disassemble a binary into NASM-compatible assembly",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDisasm(args[0], cmd.OutOrStdout())
		},
	}

	runCmd := &cobra.Command{
		Use:   "run [binary]",
		Short: "Execute a binary against a simulated register file, printing a trace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(args[0], cmd.OutOrStdout())
		},
	}

	rootCmd.AddCommand(disasmCmd, runCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func openBinary(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return f, nil
}

func runDisasm(path string, out io.Writer) error {
	f, err := openBinary(path)
	if err != nil {
		return err
	}
	defer f.Close()

	d := decoder.New(f)
	e := inst.NewEmitter()

	fmt.Fprintln(out, "bits 16")
	for ins, err := range d.Iterate() {
		if err != nil {
			return fmt.Errorf("decode: %w", err)
		}
		fmt.Fprintln(out, e.Line(ins))
	}
	return nil
}

func runSimulate(path string, out io.Writer) error {
	f, err := openBinary(path)
	if err != nil {
		return err
	}
	defer f.Close()

	d := decoder.New(f)
	exec := cpu.NewExecutor(d)
	exec.Trace = out

	if err := exec.Run(); err != nil {
		return err
	}
	fmt.Fprint(out, exec.Snapshot())
	return nil
}
