package runtime

import (
	"fmt"
	"log/slog"
)

// Executor runs a node over the items of an execution.
// Items are processed sequentially; a failing item either aborts the run or,
// in continue-on-fail mode, becomes an {"error": message} output item.
type Executor struct {
	l         *slog.Logger
	container *Container
}

func NewExecutor(l *slog.Logger, container *Container) *Executor {
	if l == nil {
		l = slog.Default()
	}
	return &Executor{
		l:         l,
		container: container,
	}
}

// Execute returns the output items on the node's single main output.
func (e *Executor) Execute(exec *Execution) ([][]Item, error) {
	node, ok := e.container.Node(exec.Node)
	if !ok {
		return nil, &NodeOperationError{
			Type:    ErrorTypePermanent,
			Code:    ErrorCodeUnknownNode,
			Message: fmt.Sprintf("unknown node: %s", exec.Node),
			Node:    exec.Node,
		}
	}

	// A node with no input still runs once
	if len(exec.Items) == 0 {
		exec.Items = []Item{{JSON: map[string]any{}}}
	}

	out := make([]Item, 0, len(exec.Items))
	for i := range exec.Items {
		if err := exec.Err(); err != nil {
			return nil, NewNodeOperationError(exec.Node, i, err)
		}

		result, err := node.ExecuteItem(exec, i)
		if err == nil {
			var json map[string]any
			json, err = ToMap(result)
			if err == nil {
				out = append(out, Item{JSON: json, PairedItem: &PairedItem{Item: i}})
				continue
			}
		}

		if exec.ContinueOnFail {
			e.l.WarnContext(exec, "Node item failed, continuing",
				"node", exec.Node,
				"item", i,
				"error", err)
			out = append(out, Item{
				JSON:       map[string]any{"error": err.Error()},
				PairedItem: &PairedItem{Item: i},
			})
			continue
		}

		opErr := NewNodeOperationError(exec.Node, i, err)
		e.l.ErrorContext(exec, "Node execution failed",
			"node", exec.Node,
			"item", i,
			"type", opErr.Type,
			"code", opErr.Code,
			"error", err)
		return nil, opErr
	}

	e.l.DebugContext(exec, "Node execution finished",
		"node", exec.Node,
		"items", len(out))

	return [][]Item{out}, nil
}
