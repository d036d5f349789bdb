package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/hargabyte/bomcov/internal/mcp"
)

var (
	callList bool
	callPipe bool
)

var callCmd = &cobra.Command{
	Use:   "call [tool] [json-args]",
	Short: "Call a bomcov MCP tool without starting a server",
	Long: `Call any bomcov tool with structured JSON input/output.

Tools accept JSON arguments and return JSON results, exactly as over MCP.

Modes:
  bomcov call --list                         List all tools and parameters
  bomcov call <tool> '{"key":"value"}'       Call a tool with JSON args
  bomcov call --pipe                         Read JSON lines from stdin

Tool names accept shorthand: "extract" is equivalent to "bomcov_extract".`,
	Example: `  bomcov call --list
  bomcov call extract '{"report":"report.txt"}'
  bomcov call classify '{"report":"report.txt","ids":"U10,R22"}'
  bomcov call annotate '{"table":"bom.xlsx","report":"report.txt"}'
  echo '{"tool":"classify","args":{"report":"r.txt","table":"bom.csv"}}' | bomcov call --pipe`,
	Args: cobra.MaximumNArgs(2),
	RunE: runCall,
}

func init() {
	rootCmd.AddCommand(callCmd)
	callCmd.Flags().BoolVar(&callList, "list", false, "List all available tools and their parameters")
	callCmd.Flags().BoolVar(&callPipe, "pipe", false, "Read JSON lines from stdin (pipe mode)")
}

func runCall(cmd *cobra.Command, args []string) error {
	if callList {
		return runCallList(cmd)
	}
	if callPipe {
		return runCallPipe(cmd)
	}
	if len(args) == 0 {
		return fmt.Errorf("tool name required (run 'bomcov call --list' to see available tools)")
	}
	return runCallSingle(cmd, args)
}

func newCallServer() (*mcp.Server, error) {
	srv, err := mcp.New(mcp.Config{Tools: mcp.AllTools, App: currentConfig(), Logger: currentLogger()})
	if err != nil {
		return nil, fmt.Errorf("create server: %w", err)
	}
	return srv, nil
}

func runCallList(cmd *cobra.Command) error {
	srv, err := newCallServer()
	if err != nil {
		return err
	}

	schemas := srv.GetToolSchemas()
	out := cmd.OutOrStdout()

	switch outputFormat {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(schemas)
	case "jsonl":
		enc := json.NewEncoder(out)
		for _, s := range schemas {
			if err := enc.Encode(s); err != nil {
				return err
			}
		}
		return nil
	default: // yaml
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(schemas)
	}
}

func runCallSingle(cmd *cobra.Command, args []string) error {
	toolName := normalizeToolName(args[0])

	toolArgs := make(map[string]interface{})
	if len(args) >= 2 {
		if err := json.Unmarshal([]byte(args[1]), &toolArgs); err != nil {
			return fmt.Errorf("invalid JSON args: %w", err)
		}
	}

	srv, err := newCallServer()
	if err != nil {
		return err
	}

	result, err := srv.CallTool(commandContext(cmd), toolName, toolArgs)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(result, "\n"))
	return nil
}

// pipeRequest is the JSON format for pipe mode input.
type pipeRequest struct {
	Tool string                 `json:"tool"`
	Args map[string]interface{} `json:"args"`
}

// pipeResponse is the JSON format for pipe mode output.
type pipeResponse struct {
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

func runCallPipe(cmd *cobra.Command) error {
	srv, err := newCallServer()
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	enc := json.NewEncoder(cmd.OutOrStdout())
	scanner := bufio.NewScanner(cmd.InOrStdin())
	// Allow larger lines (1MB)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var req pipeRequest
		if err := json.Unmarshal([]byte(line), &req); err != nil {
			enc.Encode(pipeResponse{Error: fmt.Sprintf("invalid JSON: %v", err)})
			continue
		}

		if req.Args == nil {
			req.Args = make(map[string]interface{})
		}

		result, err := srv.CallTool(ctx, normalizeToolName(req.Tool), req.Args)
		if err != nil {
			enc.Encode(pipeResponse{Error: err.Error()})
			continue
		}

		var raw json.RawMessage
		if err := json.Unmarshal([]byte(result), &raw); err != nil {
			b, _ := json.Marshal(result)
			raw = b
		}
		enc.Encode(pipeResponse{Result: raw})
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading stdin: %w", err)
	}
	return nil
}

// normalizeToolName converts shorthand names to full tool names.
// "extract" -> "bomcov_extract", "bomcov_extract" -> "bomcov_extract"
func normalizeToolName(name string) string {
	if !strings.HasPrefix(name, "bomcov_") {
		return "bomcov_" + name
	}
	return name
}

