package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RegisterDebugAPI mounts a payload echo endpoint; handy for checking what a
// front-end form actually posts. Only mounted in DEV mode.
func RegisterDebugAPI(g *echo.Group) {
	g.POST("/debug", debugEcho)
}

func debugEcho(ctx echo.Context) error {
	payload := make(map[string]interface{})
	if err := ctx.Bind(&payload); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, payload)
}
