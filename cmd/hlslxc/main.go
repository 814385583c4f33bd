// Command hlslxc is the hlslxc HLSL cross-compiler CLI.
//
// Usage:
//
//	hlslxc [options] <input.hlsl>
//
// Examples:
//
//	hlslxc -entry main -stage fragment shader.hlsl               # emit HLSL to stdout
//	hlslxc -entry main -stage vertex -lang glsl -o out.glsl a.hlsl
//	hlslxc -entry main -stage fragment -lang msl -o out.metal a.hlsl
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/debug"

	"github.com/gogpu/hlslxc"
	"github.com/gogpu/hlslxc/diagnostic"
	"github.com/gogpu/hlslxc/ir"
)

var (
	output      = flag.String("o", "", "output file (default: stdout)")
	entry       = flag.String("entry", "main", "entry point function name")
	stageFlag   = flag.String("stage", "fragment", "shader stage: vertex, fragment, compute, hull, domain, geometry")
	langFlag    = flag.String("lang", "hlsl", "target language: hlsl, glsl, msl, legacy-hlsl")
	opFlag      = flag.String("op", "generate", "pipeline stage to run: preproc, parse, generate")
	requireBind = flag.Bool("override-required", false, "fail instead of auto-assigning missing resource bindings")
	versionFlag = flag.Bool("version", false, "print version")
)

func version() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			return info.Main.Version
		}
	}
	return "dev"
}

func parseStage(s string) (ir.ShaderStage, error) {
	switch s {
	case "vertex":
		return ir.StageVertex, nil
	case "fragment":
		return ir.StageFragment, nil
	case "compute":
		return ir.StageCompute, nil
	case "hull":
		return ir.StageHull, nil
	case "domain":
		return ir.StageDomain, nil
	case "geometry":
		return ir.StageGeometry, nil
	default:
		return 0, fmt.Errorf("unknown stage %q", s)
	}
}

func parseLanguage(s string) (hlslxc.Language, error) {
	switch s {
	case "hlsl":
		return hlslxc.LanguageHLSL, nil
	case "glsl":
		return hlslxc.LanguageGLSL, nil
	case "msl":
		return hlslxc.LanguageMSL, nil
	case "legacy-hlsl":
		return hlslxc.LanguageLegacyHLSL, nil
	default:
		return 0, fmt.Errorf("unknown language %q", s)
	}
}

func parseOperation(s string) (hlslxc.Operation, error) {
	switch s {
	case "preproc":
		return hlslxc.OperationPreproc, nil
	case "parse":
		return hlslxc.OperationParse, nil
	case "generate":
		return hlslxc.OperationGenerate, nil
	default:
		return 0, fmt.Errorf("unknown operation %q", s)
	}
}

func main() {
	flag.Usage = usage
	flag.Parse()

	if *versionFlag {
		fmt.Printf("hlslxc version %s\n", version())
		return
	}

	args := flag.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Error: no input file specified")
		usage()
		os.Exit(1)
	}
	inputPath := args[0]

	source, err := os.ReadFile(inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file: %v\n", err)
		os.Exit(1)
	}

	stage, err := parseStage(*stageFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	lang, err := parseLanguage(*langFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	op, err := parseOperation(*opFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	opts := hlslxc.DefaultOptions()
	opts.EntryPoint = *entry
	opts.Stage = stage
	opts.Language = lang
	opts.Operation = op
	opts.OverrideRequired = *requireBind
	opts.Filename = inputPath
	opts.Logger = diagnostic.Std{L: log.New(os.Stderr, "hlslxc: ", 0)}

	data, err := hlslxc.CompileWithOptions(string(source), opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Compilation error: %v\n", err)
		os.Exit(1)
	}

	result := data.GeneratedSource
	if op == hlslxc.OperationPreproc {
		result = data.PreprocessedSource
	}

	if *output != "" {
		if err := os.WriteFile(*output, []byte(result), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Successfully compiled %s to %s (%d bytes)\n", inputPath, *output, len(result))
	} else {
		fmt.Print(result)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: hlslxc [options] <input.hlsl>\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "  hlslxc -entry main -stage fragment shader.hlsl\n")
	fmt.Fprintf(os.Stderr, "  hlslxc -entry main -stage vertex -lang glsl -o out.glsl shader.hlsl\n")
	fmt.Fprintf(os.Stderr, "  hlslxc -entry main -stage fragment -lang msl -o out.metal shader.hlsl\n")
}
