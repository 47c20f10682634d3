package runtime

import (
	"context"
	"log/slog"
)

// App wires the container, executor and credential store together. Both the
// CLI and the HTTP entrypoint run nodes through it.
type App struct {
	Container   *Container
	Executor    *Executor
	Credentials CredentialStore
	Logger      *slog.Logger
}

func NewApp(logger *slog.Logger, credentials CredentialStore) *App {
	if logger == nil {
		logger = slog.Default()
	}
	container := NewContainer()
	return &App{
		Container:   container,
		Executor:    NewExecutor(logger, container),
		Credentials: credentials,
		Logger:      logger,
	}
}

func (a *App) RegisterPlugin(name string, plugin any) error {
	return a.Container.RegisterPlugin(name, plugin)
}

// Start initializes all plugins.
func (a *App) Start() error {
	return a.Container.Initialize()
}

// Stop shuts plugins down in reverse order.
func (a *App) Stop() error {
	return a.Container.Shutdown()
}

// Run executes one node request.
func (a *App) Run(ctx context.Context, req ExecutionRequest) ([][]Item, error) {
	exec := NewExecution(ctx, req, a.Credentials, a.Logger)
	a.Logger.InfoContext(exec, "Executing node",
		"node", req.Node,
		"execution_id", exec.ID,
		"items", len(req.Items),
		"continue_on_fail", req.ContinueOnFail)
	return a.Executor.Execute(exec)
}
