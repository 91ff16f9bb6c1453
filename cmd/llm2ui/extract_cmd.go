package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/siciyuan404/llm2ui/pkg/stream"
)

// runExtractCmd implements `llm2ui extract`: pull the last complete
// schema document out of free-form model output (a transcript, a chat
// reply) and print it as clean JSON.
//
// Exit codes:
//
//	0 = schema extracted
//	1 = no valid schema in the input
//	2 = runtime error
func runExtractCmd(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("extract", flag.ContinueOnError)
	cmd.SetOutput(stderr)

	var inPath string
	cmd.StringVar(&inPath, "in", "", "Input text file ('-' or empty reads stdin)")

	if err := cmd.Parse(args); err != nil {
		return 2
	}

	var (
		data []byte
		err  error
	)
	if inPath == "" || inPath == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(inPath)
	}
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	s, err := stream.ExtractSchema(string(data))
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	out, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: encode schema: %v\n", err)
		return 2
	}
	_, _ = fmt.Fprintln(stdout, string(out))
	return 0
}
