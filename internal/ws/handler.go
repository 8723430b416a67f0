package ws

import (
	"encoding/json"
	"net/http"
	"strings"

	"taskboard/internal/domain"
	"taskboard/internal/logger"
	"taskboard/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Source provides the state sent to a client right after it connects. View
// must block mutations, and their events, while fn runs.
type Source interface {
	View(fn func(tasks []domain.Task, stats domain.Stats))
}

// HandleWS upgrades to the change feed. When tokens is non-nil a valid JWT
// must be passed in the token query parameter.
func HandleWS(hub *Hub, src Source, tokens *service.Tokens, allowedOrigin string) gin.HandlerFunc {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if allowedOrigin == "" {
				return true
			}
			return r.Header.Get("Origin") == allowedOrigin
		},
	}

	return func(c *gin.Context) {
		id := "anon-" + uuid.NewString()[:8]
		if tokens != nil {
			token := strings.TrimSpace(c.Query("token"))
			if token == "" {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "token required"})
				return
			}
			owner, err := tokens.Parse(token)
			if err != nil {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
				return
			}
			id = owner
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("ws upgrade error", "error", err)
			return
		}

		client := NewClient(id, conn, hub)
		joined := false
		src.View(func(tasks []domain.Task, stats domain.Stats) {
			snapshot, err := json.Marshal(SnapshotMessage{
				Type:  MsgSnapshot,
				Tasks: tasks,
				Stats: stats,
			})
			if err != nil {
				logger.Error("ws: marshal snapshot", "error", err)
				snapshot = nil
			}
			joined = client.Join(snapshot)
		})
		if !joined {
			_ = conn.Close()
			return
		}

		go client.Run()
	}
}
