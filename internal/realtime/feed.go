package realtime

import (
	"context"
	"ctchen222/Task-Tracker/internal/api/middleware"
	"ctchen222/Task-Tracker/internal/api/response"
	"ctchen222/Task-Tracker/internal/events"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("realtime")

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

// Subscriber opens a stream of one user's task events.
type Subscriber interface {
	Subscribe(ctx context.Context, userID int64) (*events.Subscription, error)
}

// Feed streams the authenticated user's task events over a websocket.
// A connection only ever receives events from its own user's channel.
type Feed struct {
	subscriber Subscriber
	upgrader   websocket.Upgrader
}

// NewFeed creates a Feed. checkOrigin may be nil to accept same-origin requests only.
func NewFeed(subscriber Subscriber, checkOrigin func(r *http.Request) bool) *Feed {
	return &Feed{
		subscriber: subscriber,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
	}
}

// Handle upgrades the request and relays events until either side goes away.
// It must run behind middleware.RequireAuth.
func (f *Feed) Handle(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "not authenticated")
		return
	}

	connID := uuid.New().String()
	ctx, span := tracer.Start(c.Request.Context(), "Feed.Handle", trace.WithAttributes(
		attribute.Int64("user.id", user.ID),
		attribute.String("connection.id", connID),
	))
	defer span.End()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sub, err := f.subscriber.Subscribe(ctx, user.ID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to subscribe to task events", "user.id", user.ID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "subscribe failed")
		response.ErrorResponse(c, http.StatusServiceUnavailable, "live updates unavailable")
		return
	}
	defer sub.Close()

	conn, err := f.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		slog.WarnContext(ctx, "Failed to upgrade connection", "connection.id", connID, "error", err)
		span.RecordError(err)
		return
	}
	defer conn.Close()

	slog.InfoContext(ctx, "Live feed connected", "user.id", user.ID, "connection.id", connID)
	go readPump(conn, cancel)
	writePump(ctx, conn, sub.Events())
	slog.InfoContext(ctx, "Live feed disconnected", "user.id", user.ID, "connection.id", connID)
}

// readPump discards client messages and cancels the feed once the client goes away.
func readPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()

	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func writePump(ctx context.Context, conn *websocket.Conn, stream <-chan events.Event) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return
		case event, ok := <-stream:
			if !ok {
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "event stream closed"), time.Now().Add(writeWait))
				return
			}
			data, err := json.Marshal(event)
			if err != nil {
				slog.ErrorContext(ctx, "error marshalling event", "error", err)
				continue
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				slog.WarnContext(ctx, "error writing event to client", "error", err)
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
