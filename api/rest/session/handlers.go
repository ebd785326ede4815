package session

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"codeberg.org/newsdesk/web/internal/auth"
	"codeberg.org/newsdesk/web/internal/errors"
	"codeberg.org/newsdesk/web/internal/logger"
	"codeberg.org/newsdesk/web/internal/session"
)

// returns the visitor's current session state
func GetStateHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		visitor, ok := auth.GetVisitor(c)
		if !ok {
			errors.Unauthorized(c, "no visitor session")
			return
		}

		c.Header("Cache-Control", "no-store")
		c.JSON(http.StatusOK, stateResponse(visitor.Session.State()))
	}
}

// pushes the session state on connect and on every change until the client
// goes away or the visitor is disposed
func StreamHandler(deps *Deps) gin.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     deps.checkOrigin,
	}

	return func(c *gin.Context) {
		visitor, ok := auth.GetVisitor(c)
		if !ok {
			errors.Unauthorized(c, "no visitor session")
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.ErrorErr(err, "failed to upgrade session stream", "visitor_id", visitor.ID)
			return
		}
		defer conn.Close() //nolint:errcheck,gosec // G104: defer cleanup

		states, stop := visitor.Session.Watch()
		defer stop()

		closed := make(chan struct{})
		go readPump(conn, closed)

		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()

		for {
			select {
			case state, ok := <-states:
				conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck,gosec // G104: websocket timing

				if !ok {
					conn.WriteMessage(websocket.CloseMessage, []byte{}) //nolint:errcheck,gosec // G104: close message
					return
				}

				if err := conn.WriteJSON(stateResponse(state)); err != nil {
					return
				}

			case <-ticker.C:
				conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck,gosec // G104: websocket ping timing

				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}

			case <-closed:
				return
			}
		}
	}
}

// drains control frames so pongs and the close handshake are processed
func readPump(conn *websocket.Conn, closed chan<- struct{}) {
	defer close(closed)

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck,gosec // G104: websocket setup
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck,gosec // G104: pong handler
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("session stream error", "error", err)
			}
			return
		}
	}
}

func stateResponse(state session.State) StateResponse {
	return StateResponse{User: userResponse(state.User), Loading: state.Loading}
}

// same-host connections are always allowed; cross-origin ones only outside
// production or when listed
func (d *Deps) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")

	if origin == "" || !d.Production {
		return true
	}

	if origin == "http://"+r.Host || origin == "https://"+r.Host {
		return true
	}

	if slices.Contains(d.AllowedOrigins, origin) {
		return true
	}

	logger.Warn("session stream origin rejected", "origin", origin)
	return false
}
