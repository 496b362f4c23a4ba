package mcphost

import (
	"context"
	"errors"
	"io"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/jongio/pyhost/cmdutil"
	"github.com/jongio/pyhost/logutil"
	"github.com/jongio/pyhost/supervisor"
	"github.com/jongio/pyhost/version"
)

// Tool names.
const (
	ToolRunPython           = "run_python"
	ToolRunPythonBackground = "run_python_background"
	ToolStartServer         = "start_server"
	ToolStartExecutor       = "start_executor"
	ToolGetServerStatus     = "get_server_status"
	ToolGetExecutorStatus   = "get_executor_status"
	ToolStopRole            = "stop_role"
	ToolGetDevRoot          = "get_dev_root"
)

// Supervisor is the command surface the tools call into.
type Supervisor interface {
	RunForeground(ctx context.Context, exe, dir string, args []string) (string, error)
	RunBackground(ctx context.Context, exe, dir string, args []string) (string, error)
	StartServer(ctx context.Context, exe, dir string) (string, error)
	StartExecutor(ctx context.Context, exe, dir string) (string, error)
	ServerStatus() supervisor.Status
	ExecutorStatus() supervisor.Status
	StopRole(role string) bool
	DevRoot() (string, error)
}

var _ Supervisor = (*supervisor.Supervisor)(nil)

// Options configures the MCP server.
type Options struct {
	// AllowedDirs restricts the cwd argument; empty allows any directory.
	AllowedDirs []string
	// Limiter throttles tool calls; nil disables throttling.
	Limiter *RateLimiter
}

type handlers struct {
	sup  Supervisor
	opts Options
	log  *logutil.ComponentLogger
}

func newHandlers(sup Supervisor, opts Options) *handlers {
	return &handlers{sup: sup, opts: opts, log: logutil.NewLogger("mcp")}
}

// NewServer builds an MCP server exposing sup as tools.
func NewServer(sup Supervisor, opts Options) *server.MCPServer {
	s := server.NewMCPServer("pyhost", version.Version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	h := newHandlers(sup, opts)

	exeOpt := mcp.WithString("exe", mcp.Description("Interpreter executable; defaults to the configured interpreter"))
	cwdOpt := mcp.WithString("cwd", mcp.Description("Working directory; log files are written to <cwd>/log"))
	argsOpt := mcp.WithArray("args", mcp.Description("Interpreter arguments"), mcp.Items(map[string]any{"type": "string"}))

	s.AddTool(mcp.NewTool(ToolRunPython,
		mcp.WithDescription("Run the interpreter to completion and return its stdout. A non-zero exit returns stderr as the error."),
		exeOpt, cwdOpt, argsOpt,
	), h.runPython)

	s.AddTool(mcp.NewTool(ToolRunPythonBackground,
		mcp.WithDescription("Start the interpreter in the background with output captured in timestamped log files. Returns the process id."),
		exeOpt, cwdOpt, argsOpt,
	), h.runPythonBackground)

	s.AddTool(mcp.NewTool(ToolStartServer,
		mcp.WithDescription("Start the server role (-m server) unless it is already running. Returns the process id."),
		exeOpt, cwdOpt,
	), h.startRole(sup.StartServer))

	s.AddTool(mcp.NewTool(ToolStartExecutor,
		mcp.WithDescription("Start the executor role (-m ss_executor) unless it is already running. Returns the process id."),
		exeOpt, cwdOpt,
	), h.startRole(sup.StartExecutor))

	s.AddTool(mcp.NewTool(ToolGetServerStatus,
		mcp.WithDescription("Report whether the server role is running and its process id."),
		mcp.WithReadOnlyHintAnnotation(true),
	), h.status(sup.ServerStatus))

	s.AddTool(mcp.NewTool(ToolGetExecutorStatus,
		mcp.WithDescription("Report whether the executor role is running and its process id."),
		mcp.WithReadOnlyHintAnnotation(true),
	), h.status(sup.ExecutorStatus))

	s.AddTool(mcp.NewTool(ToolStopRole,
		mcp.WithDescription("Kill the process running a role."),
		mcp.WithString("role", mcp.Required(), mcp.Description("Role name, e.g. server or executor")),
		mcp.WithDestructiveHintAnnotation(true),
	), h.stopRole)

	s.AddTool(mcp.NewTool(ToolGetDevRoot,
		mcp.WithDescription("Return the application root directory, two levels above the supervisor's working directory."),
		mcp.WithReadOnlyHintAnnotation(true),
	), h.devRoot)

	return s
}

// Serve runs the MCP server on in/out until the stream closes or ctx ends.
// The caller runs the shutdown hook afterwards.
func Serve(ctx context.Context, sup Supervisor, opts Options, in io.Reader, out io.Writer) error {
	s := NewServer(sup, opts)
	err := server.NewStdioServer(s).Listen(ctx, in, out)
	if err == nil || errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (h *handlers) checkRate(tool string) *mcp.CallToolResult {
	if h.opts.Limiter == nil {
		return nil
	}
	if err := h.opts.Limiter.CheckRateLimit(tool); err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return nil
}

// launchArgs reads exe, cwd and args. The error result is returned to the host.
func (h *handlers) launchArgs(request mcp.CallToolRequest) (string, string, []string, *mcp.CallToolResult) {
	args := GetArgsMap(request)

	exe, _ := GetStringParam(args, "exe")
	cwd, _ := GetStringParam(args, "cwd")
	dir, err := ValidateWorkDir(cwd, h.opts.AllowedDirs...)
	if err != nil {
		return "", "", nil, mcp.NewToolResultError(err.Error())
	}

	var procArgs []string
	if _, present := args["args"]; present {
		var ok bool
		procArgs, ok = GetStringSliceParam(args, "args")
		if !ok {
			return "", "", nil, mcp.NewToolResultError("args must be an array of strings")
		}
	}
	return exe, dir, procArgs, nil
}

func (h *handlers) runPython(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if res := h.checkRate(ToolRunPython); res != nil {
		return res, nil
	}
	exe, dir, args, res := h.launchArgs(request)
	if res != nil {
		return res, nil
	}

	out, err := h.sup.RunForeground(ctx, exe, dir, args)
	if err != nil {
		var exitErr *cmdutil.ExitError
		if errors.As(err, &exitErr) {
			return mcp.NewToolResultError(exitErr.Stderr), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(out), nil
}

func (h *handlers) runPythonBackground(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if res := h.checkRate(ToolRunPythonBackground); res != nil {
		return res, nil
	}
	exe, dir, args, res := h.launchArgs(request)
	if res != nil {
		return res, nil
	}

	pid, err := h.sup.RunBackground(ctx, exe, dir, args)
	if err != nil {
		h.log.Error("background launch failed", "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(pid), nil
}

func (h *handlers) startRole(start func(ctx context.Context, exe, dir string) (string, error)) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if res := h.checkRate(request.Params.Name); res != nil {
			return res, nil
		}
		exe, dir, _, res := h.launchArgs(request)
		if res != nil {
			return res, nil
		}

		pid, err := start(ctx, exe, dir)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(pid), nil
	}
}

func (h *handlers) status(get func() supervisor.Status) server.ToolHandlerFunc {
	return func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return MarshalToolResult(get())
	}
}

func (h *handlers) stopRole(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	role, ok := GetStringParam(GetArgsMap(request), "role")
	if !ok || role == "" {
		return mcp.NewToolResultError("role is required"), nil
	}
	return MarshalToolResult(map[string]interface{}{
		"role":    role,
		"stopped": h.sup.StopRole(role),
	})
}

func (h *handlers) devRoot(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	root, err := h.sup.DevRoot()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(root), nil
}
