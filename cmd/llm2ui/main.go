package main

import (
	"fmt"
	"io"
	"os"

	"github.com/siciyuan404/llm2ui/pkg/schema"
)

func main() {
	os.Exit(Run(os.Args, os.Stdout, os.Stderr))
}

// Run is the dispatcher entrypoint, factored for tests.
func Run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 2 {
		printUsage(stdout)
		return 2
	}

	switch args[1] {
	case "render":
		return runRenderCmd(args[2:], stdout, stderr)
	case "validate":
		return runValidateCmd(args[2:], stdout, stderr)
	case "prompt":
		return runPromptCmd(args[2:], stdout, stderr)
	case "estimate":
		return runEstimateCmd(args[2:], stdout, stderr)
	case "merge":
		return runMergeCmd(args[2:], stdout, stderr)
	case "extract":
		return runExtractCmd(args[2:], stdout, stderr)
	case "version":
		_, _ = fmt.Fprintf(stdout, "llm2ui schema version %s\n", schema.Version)
		return 0
	case "help", "--help", "-h":
		printUsage(stdout)
		return 0
	default:
		_, _ = fmt.Fprintf(stderr, "Unknown command: %s\n", args[1])
		printUsage(stderr)
		return 2
	}
}

// ANSI Colors
const (
	ColorReset = "\033[0m"
	ColorBold  = "\033[1m"
	ColorBlue  = "\033[34m"
	ColorCyan  = "\033[36m"
	ColorGreen = "\033[32m"
	ColorGray  = "\033[37m"
)

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "")
	fmt.Fprintf(w, "%sllm2ui%s\n", ColorBold+ColorBlue, ColorReset)
	fmt.Fprintf(w, "%sThe model proposes a schema. The engine renders it.%s\n", ColorGray, ColorReset)
	fmt.Fprintln(w, "")
	fmt.Fprintf(w, "%sUSAGE:%s\n", ColorBold, ColorReset)
	fmt.Fprintln(w, "  llm2ui <command> [flags]")
	fmt.Fprintln(w, "")

	printSection(w, "RENDERING")
	printCommand(w, "render", "Render a schema to a node tree (--schema, --theme-dir)")
	printCommand(w, "validate", "Parse and validate a schema document (--schema, --json)")
	printCommand(w, "merge", "Merge layered schema documents, or resolve template layers (--templates)")
	printCommand(w, "extract", "Extract a schema from free LLM text (--in)")

	printSection(w, "PROMPTS")
	printCommand(w, "prompt", "Assemble the generation prompt for a theme pack")
	printCommand(w, "estimate", "Estimate prompt token cost without printing it")

	printSection(w, "UTILITIES")
	printCommand(w, "version", "Show schema version")
	printCommand(w, "help", "Show this help")
	fmt.Fprintln(w, "")
}

func printSection(w io.Writer, title string) {
	fmt.Fprintf(w, "%s%s:%s\n", ColorBold+ColorCyan, title, ColorReset)
}

func printCommand(w io.Writer, name, desc string) {
	fmt.Fprintf(w, "  %s%-10s%s %s\n", ColorGreen, name, ColorReset, desc)
}
