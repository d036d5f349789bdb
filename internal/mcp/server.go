// Package mcp provides an MCP (Model Context Protocol) server for bomcov.
// This allows AI agents to extract, classify and annotate through MCP tools
// instead of CLI commands.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/hargabyte/bomcov/internal/classify"
	"github.com/hargabyte/bomcov/internal/config"
	"github.com/hargabyte/bomcov/internal/coverage"
	"github.com/hargabyte/bomcov/internal/logging"
	"github.com/hargabyte/bomcov/internal/output"
	"github.com/hargabyte/bomcov/internal/pipeline"
	"github.com/hargabyte/bomcov/internal/table"
)

// Server wraps the MCP server with bomcov-specific functionality
type Server struct {
	mcpServer    *server.MCPServer
	opts         pipeline.Options
	workDir      string
	logger       *zap.Logger
	tools        map[string]bool
	lastActivity time.Time
	timeout      time.Duration
	mu           sync.RWMutex
}

// Config holds server configuration
type Config struct {
	Tools   []string      // Which tools to expose (empty = all)
	Timeout time.Duration // Inactivity timeout (0 = no timeout)
	WorkDir string        // Base for relative paths (empty = current directory)
	App     *config.Config
	Logger  *zap.Logger
}

// Tool names.
const (
	ToolExtract  = "bomcov_extract"
	ToolClassify = "bomcov_classify"
	ToolAnnotate = "bomcov_annotate"
)

// AllTools lists all available tools
var AllTools = []string{ToolExtract, ToolClassify, ToolAnnotate}

// DefaultTools is the default set of tools to expose
var DefaultTools = AllTools

// Version is reported to MCP clients during initialization.
var Version = "1.0.0"

// New creates a new MCP server for bomcov
func New(cfg Config) (*Server, error) {
	workDir := cfg.WorkDir
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolving working directory: %w", err)
		}
		workDir = wd
	}

	app := cfg.App
	if app == nil {
		loaded, err := config.Load(workDir)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		app = loaded
	}

	logger := logging.OrNop(cfg.Logger).Named("mcp")

	mcpServer := server.NewMCPServer(
		"bomcov",
		Version,
		server.WithToolCapabilities(false),
	)

	s := &Server{
		mcpServer:    mcpServer,
		opts:         pipeline.OptionsFromConfig(app, logger),
		workDir:      workDir,
		logger:       logger,
		tools:        make(map[string]bool),
		lastActivity: time.Now(),
		timeout:      cfg.Timeout,
	}

	toolsToRegister := cfg.Tools
	if len(toolsToRegister) == 0 {
		toolsToRegister = DefaultTools
	}

	for _, toolName := range toolsToRegister {
		if err := s.registerTool(toolName); err != nil {
			return nil, fmt.Errorf("failed to register tool %s: %w", toolName, err)
		}
		s.tools[toolName] = true
	}

	return s, nil
}

// registerTool registers a single tool with the MCP server
func (s *Server) registerTool(name string) error {
	switch name {
	case ToolExtract:
		s.registerExtractTool()
	case ToolClassify:
		s.registerClassifyTool()
	case ToolAnnotate:
		s.registerAnnotateTool()
	default:
		return fmt.Errorf("unknown tool: %s", name)
	}
	return nil
}

// ServeStdio serves MCP over stdin/stdout until ctx is done, the client hangs up
// or the inactivity timeout expires.
func (s *Server) ServeStdio(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if s.timeout > 0 {
		go s.timeoutChecker(ctx, cancel, 30*time.Second)
	}

	stdio := server.NewStdioServer(s.mcpServer)
	stdio.SetErrorLogger(zap.NewStdLog(s.logger))

	s.logger.Info("serving MCP over stdio", zap.Strings("tools", s.ListTools()), zap.Duration("timeout", s.timeout))
	err := stdio.Listen(ctx, os.Stdin, os.Stdout)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// timeoutChecker cancels the server once it has been idle for longer than the timeout
func (s *Server) timeoutChecker(ctx context.Context, cancel context.CancelFunc, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.idleFor() > s.timeout {
				s.logger.Info("stopping after inactivity", zap.Duration("timeout", s.timeout))
				cancel()
				return
			}
		}
	}
}

func (s *Server) idleFor() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return time.Since(s.lastActivity)
}

// updateActivity updates the last activity timestamp
func (s *Server) updateActivity() {
	s.mu.Lock()
	s.lastActivity = time.Now()
	s.mu.Unlock()
}

// ListTools returns the registered tools, sorted by name
func (s *Server) ListTools() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tools := make([]string, 0, len(s.tools))
	for t := range s.tools {
		tools = append(tools, t)
	}
	sort.Strings(tools)
	return tools
}

// ToolSchema describes a tool's name, description, and parameters.
type ToolSchema struct {
	Name        string            `json:"name" yaml:"name"`
	Description string            `json:"description" yaml:"description"`
	Parameters  []ParameterSchema `json:"parameters" yaml:"parameters"`
}

// ParameterSchema describes a single tool parameter.
type ParameterSchema struct {
	Name        string `json:"name" yaml:"name"`
	Type        string `json:"type" yaml:"type"`
	Description string `json:"description" yaml:"description"`
	Required    bool   `json:"required" yaml:"required"`
}

const (
	reportParamDesc  = "Path to the test report file (relative to the server's working directory)"
	textParamDesc    = "Raw report text, used instead of report"
	densityParamDesc = "Detail level: sparse, medium, dense (default: medium)"
)

// toolSchemaRegistry holds the schema definitions for all tools.
// These mirror the mcp.NewTool() definitions in the register*Tool() functions.
var toolSchemaRegistry = map[string]ToolSchema{
	ToolExtract: {
		Name:        ToolExtract,
		Description: "Extract coverage figures, untested devices and test outcomes from an electronic test report.",
		Parameters: []ParameterSchema{
			{Name: "report", Type: "string", Description: reportParamDesc},
			{Name: "text", Type: "string", Description: textParamDesc},
			{Name: "density", Type: "string", Description: densityParamDesc},
		},
	},
	ToolClassify: {
		Name:        ToolClassify,
		Description: "Classify components as OK, SOUS-TEST, NOTEST or UNCLASSIFIED against a test report.",
		Parameters: []ParameterSchema{
			{Name: "report", Type: "string", Description: reportParamDesc},
			{Name: "text", Type: "string", Description: textParamDesc},
			{Name: "ids", Type: "string", Description: "Component identifiers separated by commas or spaces, e.g. \"U10, R22\""},
			{Name: "table", Type: "string", Description: "Component table (.csv or .xlsx) to read identifiers from"},
			{Name: "density", Type: "string", Description: densityParamDesc},
		},
	},
	ToolAnnotate: {
		Name:        ToolAnnotate,
		Description: "Annotate a component table with coverage, PPVS status and remarks, writing a coloured copy.",
		Parameters: []ParameterSchema{
			{Name: "table", Type: "string", Description: "Component table (.csv or .xlsx)", Required: true},
			{Name: "report", Type: "string", Description: reportParamDesc, Required: true},
			{Name: "output", Type: "string", Description: "Output path (default: <table>_updated.<ext>)"},
		},
	},
}

// GetToolSchemas returns schemas for all registered tools, sorted by name.
func (s *Server) GetToolSchemas() []ToolSchema {
	names := s.ListTools()
	schemas := make([]ToolSchema, 0, len(names))
	for _, name := range names {
		if schema, ok := toolSchemaRegistry[name]; ok {
			schemas = append(schemas, schema)
		}
	}
	return schemas
}

// CallTool dispatches a tool call by name with the given arguments.
// Returns the JSON result string or an error.
func (s *Server) CallTool(ctx context.Context, name string, args map[string]interface{}) (string, error) {
	s.mu.RLock()
	registered := s.tools[name]
	s.mu.RUnlock()

	if !registered {
		return "", fmt.Errorf("unknown tool: %s (run 'bomcov call --list' to see available tools)", name)
	}

	switch name {
	case ToolExtract:
		return s.executeExtract(ctx, args)
	case ToolClassify:
		return s.executeClassify(ctx, args)
	case ToolAnnotate:
		return s.executeAnnotate(ctx, args)
	default:
		return "", fmt.Errorf("unknown tool: %s", name)
	}
}

func (s *Server) registerExtractTool() {
	tool := mcp.NewTool(ToolExtract,
		mcp.WithDescription(toolSchemaRegistry[ToolExtract].Description),
		mcp.WithString("report", mcp.Description(reportParamDesc)),
		mcp.WithString("text", mcp.Description(textParamDesc)),
		mcp.WithString("density",
			mcp.Description(densityParamDesc),
			mcp.Enum(string(output.DensitySparse), string(output.DensityMedium), string(output.DensityDense)),
		),
	)
	s.mcpServer.AddTool(tool, s.handle(ToolExtract))
}

func (s *Server) registerClassifyTool() {
	tool := mcp.NewTool(ToolClassify,
		mcp.WithDescription(toolSchemaRegistry[ToolClassify].Description),
		mcp.WithString("report", mcp.Description(reportParamDesc)),
		mcp.WithString("text", mcp.Description(textParamDesc)),
		mcp.WithString("ids", mcp.Description(toolSchemaRegistry[ToolClassify].Parameters[2].Description)),
		mcp.WithString("table", mcp.Description(toolSchemaRegistry[ToolClassify].Parameters[3].Description)),
		mcp.WithString("density",
			mcp.Description(densityParamDesc),
			mcp.Enum(string(output.DensitySparse), string(output.DensityMedium), string(output.DensityDense)),
		),
	)
	s.mcpServer.AddTool(tool, s.handle(ToolClassify))
}

func (s *Server) registerAnnotateTool() {
	tool := mcp.NewTool(ToolAnnotate,
		mcp.WithDescription(toolSchemaRegistry[ToolAnnotate].Description),
		mcp.WithString("table", mcp.Required(), mcp.Description("Component table (.csv or .xlsx)")),
		mcp.WithString("report", mcp.Required(), mcp.Description(reportParamDesc)),
		mcp.WithString("output", mcp.Description("Output path (default: <table>_updated.<ext>)")),
	)
	s.mcpServer.AddTool(tool, s.handle(ToolAnnotate))
}

// handle adapts CallTool to an MCP tool handler. Tool failures are reported as
// tool errors, not protocol errors.
func (s *Server) handle(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		s.updateActivity()

		result, err := s.CallTool(ctx, name, req.GetArguments())
		if err != nil {
			s.logger.Debug("tool call failed", zap.String("tool", name), zap.Error(err))
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(result), nil
	}
}

func (s *Server) executeExtract(ctx context.Context, args map[string]interface{}) (string, error) {
	density, err := densityArg(args)
	if err != nil {
		return "", err
	}
	facts, err := s.loadFacts(ctx, args)
	if err != nil {
		return "", err
	}
	return toJSON(output.NewFactsOutput(facts), density)
}

func (s *Server) executeClassify(ctx context.Context, args map[string]interface{}) (string, error) {
	density, err := densityArg(args)
	if err != nil {
		return "", err
	}

	ids := splitIDs(args["ids"])
	if tablePath, _ := args["table"].(string); tablePath != "" {
		tbl, err := table.Read(s.resolve(tablePath))
		if err != nil {
			return "", err
		}
		fromTable, err := table.ComponentIDs(tbl, s.opts.Columns)
		if err != nil {
			return "", err
		}
		ids = append(ids, fromTable...)
	}
	if len(ids) == 0 {
		return "", fmt.Errorf("ids or table parameter is required")
	}

	facts, err := s.loadFacts(ctx, args)
	if err != nil {
		return "", err
	}

	result := classify.Classify(ids, facts)
	return toJSON(output.NewClassifyOutput(result, facts), density)
}

func (s *Server) executeAnnotate(ctx context.Context, args map[string]interface{}) (string, error) {
	tablePath, _ := args["table"].(string)
	reportPath, _ := args["report"].(string)
	if tablePath == "" || reportPath == "" {
		return "", fmt.Errorf("table and report parameters are required")
	}
	outPath, _ := args["output"].(string)

	job := pipeline.Job{
		Table:  s.resolve(tablePath),
		Report: s.resolve(reportPath),
	}
	if outPath != "" {
		job.Output = s.resolve(outPath)
	}

	outcome, err := pipeline.Run(ctx, job, s.opts)
	if err != nil {
		return "", err
	}

	summary := output.NewSummaryOutput(outcome.Result, outcome.Facts)
	return toJSON(&output.JobOutput{
		Table:   job.Table,
		Report:  job.Report,
		Output:  outcome.Output,
		Summary: &summary,
	}, output.DensityMedium)
}

// loadFacts reads facts from the report path or the inline text argument.
func (s *Server) loadFacts(ctx context.Context, args map[string]interface{}) (*coverage.FactSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if text, _ := args["text"].(string); text != "" {
		return coverage.Extract(text), nil
	}
	reportPath, _ := args["report"].(string)
	if reportPath == "" {
		return nil, fmt.Errorf("report or text parameter is required")
	}
	return pipeline.LoadFacts(s.resolve(reportPath), s.opts)
}

func (s *Server) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(s.workDir, p)
}

// Helper functions

func densityArg(args map[string]interface{}) (output.Density, error) {
	d, _ := args["density"].(string)
	if d == "" {
		return output.DefaultDensity, nil
	}
	return output.ParseDensity(d)
}

// splitIDs accepts "U10, R22 C5" or a JSON array of strings.
func splitIDs(v interface{}) []coverage.ComponentID {
	var fields []string
	switch ids := v.(type) {
	case string:
		fields = strings.FieldsFunc(ids, func(r rune) bool {
			return r == ',' || r == ';' || r == ' ' || r == '\t' || r == '\n'
		})
	case []interface{}:
		for _, id := range ids {
			if s, ok := id.(string); ok {
				fields = append(fields, s)
			}
		}
	case []string:
		fields = ids
	}

	out := make([]coverage.ComponentID, 0, len(fields))
	for _, f := range fields {
		out = append(out, coverage.ComponentID(f))
	}
	return out
}

func toJSON(v interface{}, density output.Density) (string, error) {
	return output.NewJSONFormatter().Format(v, density)
}
