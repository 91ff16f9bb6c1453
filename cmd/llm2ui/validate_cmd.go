package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/siciyuan404/llm2ui/pkg/schema"
)

// runValidateCmd implements `llm2ui validate`.
//
// Exit codes:
//
//	0 = document is valid
//	1 = document is invalid
//	2 = runtime error
func runValidateCmd(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("validate", flag.ContinueOnError)
	cmd.SetOutput(stderr)

	var (
		schemaPath string
		jsonOutput bool
	)
	cmd.StringVar(&schemaPath, "schema", "", "Path to a UI Schema JSON document (REQUIRED)")
	cmd.BoolVar(&jsonOutput, "json", false, "Output result as JSON")

	if err := cmd.Parse(args); err != nil {
		return 2
	}
	if schemaPath == "" {
		_, _ = fmt.Fprintln(stderr, "Error: --schema is required")
		return 2
	}

	data, err := os.ReadFile(schemaPath)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	s, parseErr := schema.Parse(data)

	if jsonOutput {
		result := map[string]any{
			"schema": schemaPath,
			"valid":  parseErr == nil,
		}
		if parseErr != nil {
			result["error"] = parseErr.Error()
		} else {
			count := 0
			s.Root.Walk(func(*schema.UIComponent) bool { count++; return true })
			result["version"] = s.Version
			result["components"] = count
		}
		out, _ := json.MarshalIndent(result, "", "  ")
		_, _ = fmt.Fprintln(stdout, string(out))
	} else if parseErr != nil {
		_, _ = fmt.Fprintf(stdout, "Invalid: %v\n", parseErr)
	} else {
		_, _ = fmt.Fprintf(stdout, "Valid (version %s)\n", s.Version)
	}

	if parseErr != nil {
		return 1
	}
	return 0
}
