package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/raymyers/ralph-dc/pkg/cgen"
	"github.com/raymyers/ralph-dc/pkg/config"
	"github.com/raymyers/ralph-dc/pkg/flowgraph"
	"github.com/raymyers/ralph-dc/pkg/graphfile"
)

var version = "0.1.0"

// Debug flags for dumping intermediate representations
var (
	dGraph bool
)

// Structuring options; unset flags leave the configured value alone
var (
	noAndor      bool
	noIfs        bool
	debugNodes   bool
	indentWidth  int
	configPath   string
	functionName string
	packPath     string
)

// ErrUnknownFunction indicates --function named a function not in the file
var ErrUnknownFunction = errors.New("no such function")

func main() {
	os.Exit(run())
}

func run() int {
	rootCmd := newRootCmd(os.Stdout, os.Stderr)
	// Accept single-dash debug flags such as -dgraph
	rootCmd.SetArgs(normalizeFlags(os.Args[1:]))
	if err := rootCmd.Execute(); err != nil {
		return 1
	}
	return 0
}

// debugFlagNames lists the debug flags that also accept a single dash
var debugFlagNames = []string{"dgraph"}

// normalizeFlags converts single-dash debug flags like -dgraph to --dgraph
func normalizeFlags(args []string) []string {
	result := make([]string, len(args))
	for i, arg := range args {
		for _, flagName := range debugFlagNames {
			if arg == "-"+flagName {
				result[i] = "--" + flagName
				break
			}
		}
		if result[i] == "" {
			result[i] = arg
		}
	}
	return result
}

// wordSepNormalizeFunc lets --no_andor stand for --no-andor
func wordSepNormalizeFunc(f *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ralph-dc [graph file]",
		Short: "ralph-dc turns function flow graphs into structured C",
		Long: `ralph-dc reads the control-flow graphs of decompiled functions
(YAML or msgpack) and prints each function as C, recovering if/else
nesting, && and || conditions and early returns. Functions that cannot
be structured are printed with gotos.`,
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				cmd.Help()
				return nil
			}
			if err := doDecompile(cmd, args[0], out, errOut); err != nil {
				fmt.Fprintf(errOut, "ralph-dc: %v\n", err)
				return err
			}
			return nil
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)
	rootCmd.Flags().SetNormalizeFunc(wordSepNormalizeFunc)

	// Add debug flags
	rootCmd.Flags().BoolVarP(&dGraph, "dgraph", "", false, "Dump the input flow graphs")

	// Add structuring flags
	rootCmd.Flags().BoolVar(&noAndor, "no-andor", false, "Disable detection of && and ||")
	rootCmd.Flags().BoolVar(&noIfs, "no-ifs", false, "Print every function with gotos only")
	rootCmd.Flags().BoolVar(&debugNodes, "debug", false, "Print a comment with the block index before each block")
	rootCmd.Flags().IntVar(&indentWidth, "indent", 0, "Spaces per nesting level (default from config)")
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "Options file (YAML)")
	rootCmd.Flags().StringVarP(&functionName, "function", "f", "", "Only print the named function")
	rootCmd.Flags().StringVar(&packPath, "pack", "", "Write the graph file to this path as msgpack and exit")

	return rootCmd
}

// loadOptions reads the config file and environment, then applies the
// flags given on the command line.
func loadOptions(cmd *cobra.Command) (*config.Options, error) {
	opts, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("no-andor") {
		opts.AndorDetection = !noAndor
	}
	if flags.Changed("no-ifs") {
		opts.StructureIfs = !noIfs
	}
	if flags.Changed("debug") {
		opts.Debug = debugNodes
	}
	if flags.Changed("indent") {
		opts.IndentWidth = indentWidth
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return opts, nil
}

// loadGraphs reads filename, narrowed to --function if given
func loadGraphs(filename string) (*graphfile.File, error) {
	f, err := graphfile.Load(filename)
	if err != nil {
		return nil, err
	}
	if functionName == "" {
		return f, nil
	}
	spec, ok := f.Function(functionName)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFunction, functionName)
	}
	return &graphfile.File{Functions: []graphfile.FunctionSpec{*spec}}, nil
}

// doDecompile structures every function in filename and prints it as C
func doDecompile(cmd *cobra.Command, filename string, out, errOut io.Writer) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}

	f, err := loadGraphs(filename)
	if err != nil {
		return err
	}

	// Handle --pack: convert to msgpack and stop
	if packPath != "" {
		return doPack(f, packPath)
	}

	fns, err := f.BuildFunctions()
	if err != nil {
		return err
	}

	// Handle -dgraph: dump the graphs instead of structuring them
	if dGraph {
		return doGraph(filename, fns, out)
	}

	return cgen.WriteProgram(out, fns, *opts, errOut)
}

func doPack(f *graphfile.File, path string) error {
	format, err := graphfile.FormatForPath(path)
	if err != nil {
		return err
	}
	if format != graphfile.FormatMsgpack {
		return fmt.Errorf("--pack output %s must have a .msgpack or .mp extension", path)
	}
	return f.Save(path)
}

// doGraph dumps the flow graphs to out and to the .graph file next to
// the input.
func doGraph(filename string, fns []*cgen.Function, out io.Writer) error {
	outputFilename := graphOutputFilename(filename)
	outFile, err := os.Create(outputFilename)
	if err != nil {
		return fmt.Errorf("error creating %s: %w", outputFilename, err)
	}
	defer outFile.Close()

	for _, w := range []io.Writer{outFile, out} {
		printer := flowgraph.NewPrinter(w)
		for i, fn := range fns {
			if i > 0 {
				fmt.Fprintln(w)
			}
			printer.PrintGraph(fn.Name, fn.Graph)
		}
	}
	return nil
}

// graphOutputFilename returns the output filename for -dgraph:
// input.yaml -> input.graph
func graphOutputFilename(filename string) string {
	for _, ext := range []string{".yaml", ".yml", ".msgpack", ".mp"} {
		if strings.HasSuffix(filename, ext) {
			return filename[:len(filename)-len(ext)] + ".graph"
		}
	}
	return filename + ".graph"
}
