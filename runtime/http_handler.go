package runtime

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// NewHttpHandler registers the node endpoints on g:
//
//	GET  /nodes                list node descriptions
//	GET  /nodes/:name          describe one node
//	POST /nodes/:name/execute  run a node over the posted items
func NewHttpHandler(app *App, g *gin.Engine) {
	g.GET("/nodes", listNodes(app))
	g.GET("/nodes/:name", describeNode(app))
	g.POST("/nodes/:name/execute", handleExecute(app))
}

func listNodes(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"nodes": app.Container.Nodes()})
	}
}

func describeNode(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		node, ok := app.Container.Node(c.Param("name"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"message": "Unknown node: " + c.Param("name")})
			return
		}
		c.JSON(http.StatusOK, node.Description())
	}
}

var wrongBodyFormatRes = gin.H{"message": "Wrong request body format"}

func handleExecute(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("name")
		if _, ok := app.Container.Node(name); !ok {
			c.JSON(http.StatusNotFound, gin.H{"message": "Unknown node: " + name})
			return
		}

		var req ExecutionRequest
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, wrongBodyFormatRes)
				return
			}
		}
		req.Node = name

		items, err := app.Run(c.Request.Context(), req)
		if err != nil {
			var opErr *NodeOperationError
			if !errors.As(err, &opErr) {
				opErr = NewNodeOperationError(name, 0, err)
			}
			slog.Error("Node execution failed",
				"node", name,
				"path", c.Request.URL.Path,
				"code", opErr.Code,
				"error", err.Error())
			c.JSON(StatusForError(opErr), gin.H{"error": opErr})
			return
		}

		c.JSON(http.StatusOK, gin.H{"items": items})
	}
}

// StatusForError maps an operation error to the HTTP status returned by the
// execute endpoint.
func StatusForError(err *NodeOperationError) int {
	switch err.Code {
	case ErrorCodeValidation, ErrorCodeUnsupportedOperation:
		return http.StatusBadRequest
	case ErrorCodeAuthenticationRequired:
		return http.StatusUnauthorized
	case ErrorCodeUnknownNode:
		return http.StatusNotFound
	case ErrorCodeDeadlineExceeded:
		return http.StatusGatewayTimeout
	case ErrorCodeTransport:
		if err.Type == ErrorTypeTimeout {
			return http.StatusGatewayTimeout
		}
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
