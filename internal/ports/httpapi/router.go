// Package httpapi exposes health, the room list and the websocket endpoint.
package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"doudizhu/internal/app"
)

// NewRouter builds the HTTP surface. ws is mounted at /ws when non-nil.
func NewRouter(svc *app.Service, ws http.Handler) *gin.Engine {
	r := gin.Default()

	r.GET("/healthz", func(c *gin.Context) {
		rooms := svc.Rooms()
		players := 0
		for _, room := range rooms {
			players += room.PlayerCount
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"rooms":   len(rooms),
			"players": players,
		})
	})

	r.GET("/rooms", func(c *gin.Context) {
		c.JSON(http.StatusOK, svc.Rooms())
	})

	if ws != nil {
		r.GET("/ws", gin.WrapH(ws))
	}
	return r
}
