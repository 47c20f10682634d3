package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

var _ context.Context = &Execution{}

// ExecutionRequest is what a caller asks a node to do.
type ExecutionRequest struct {
	Node           string         `json:"-"`
	Parameters     map[string]any `json:"parameters"`
	Items          []Item         `json:"items"`
	ContinueOnFail bool           `json:"continueOnFail"`
}

// Execution is the runtime context passed to a node for one run over its
// input items. It implements context.Context so it can be handed to any
// blocking call.
type Execution struct {
	ID             string
	Node           string
	Items          []Item
	Parameters     map[string]any // raw, may contain "={{ }}" expressions
	ContinueOnFail bool
	Credentials    CredentialStore
	Logger         *slog.Logger
	ctx            context.Context // real context carrying deadline/cancellation
}

func NewExecution(ctx context.Context, req ExecutionRequest, credentials CredentialStore, logger *slog.Logger) *Execution {
	if ctx == nil {
		ctx = context.Background()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if credentials == nil {
		credentials = StaticCredentials{}
	}

	id := uuid.New().String()
	return &Execution{
		ID:             id,
		Node:           req.Node,
		Items:          req.Items,
		Parameters:     req.Parameters,
		ContinueOnFail: req.ContinueOnFail,
		Credentials:    credentials,
		Logger:         logger.With("execution_id", id, "node", req.Node),
		ctx:            ctx,
	}
}

// context.Context implementation: delegates to the embedded ctx so that real
// timeouts and cancellations propagate through slog and transport calls.

func (e *Execution) Deadline() (deadline time.Time, ok bool) {
	return e.ctx.Deadline()
}

func (e *Execution) Done() <-chan struct{} {
	return e.ctx.Done()
}

func (e *Execution) Err() error {
	return e.ctx.Err()
}

func (e *Execution) Value(key any) any {
	return e.ctx.Value(key)
}

// WithContext returns a shallow copy of the Execution with a new embedded
// context. Mirrors the http.Request.WithContext pattern.
func (e *Execution) WithContext(ctx context.Context) *Execution {
	copy := *e
	copy.ctx = ctx
	return &copy
}

// Item returns input item i, or an empty item when i is out of range.
func (e *Execution) Item(i int) Item {
	if i < 0 || i >= len(e.Items) {
		return Item{JSON: map[string]any{}}
	}
	item := e.Items[i]
	if item.JSON == nil {
		item.JSON = map[string]any{}
	}
	return item
}

// NodeParameters resolves every raw parameter for item i. Expressions see
// the item data as `json`, the index as `itemIndex` and the execution ID as
// `executionId`.
func (e *Execution) NodeParameters(i int) (map[string]any, error) {
	env := map[string]any{
		"json":        e.Item(i).JSON,
		"itemIndex":   i,
		"executionId": e.ID,
	}

	resolved, err := ResolveValue(e.Parameters, env)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve parameters for item %d: %w", i, err)
	}
	if resolved == nil {
		return map[string]any{}, nil
	}
	params, ok := resolved.(map[string]any)
	if !ok {
		return map[string]any{}, nil
	}
	return params, nil
}

// Credential returns the stored credential of type typeName, or nil when
// none is configured.
func (e *Execution) Credential(typeName string) (map[string]any, error) {
	return e.Credentials.Credential(e, typeName)
}
