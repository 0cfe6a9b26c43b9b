package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"k8s.io/klog/v2"

	"github.com/devmatch-io/devmatch/pkg/notify"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewEventsMgr)
}

const (
	wsWriteTimeout = 10 * time.Second
	wsPingInterval = 30 * time.Second
)

// EventsMgr streams hub events to websocket clients.
type EventsMgr struct {
	name     string
	hub      *notify.Hub
	upgrader websocket.Upgrader
}

func NewEventsMgr(conf *RegisterConfig) Manager {
	return &EventsMgr{
		name: "events",
		hub:  conf.Hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

func (mgr *EventsMgr) GetName() string { return mgr.name }

func (mgr *EventsMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *EventsMgr) RegisterProtected(g *gin.RouterGroup) {
	g.GET("/ws", mgr.Stream)
}

func (mgr *EventsMgr) RegisterAdmin(_ *gin.RouterGroup) {}

// Stream godoc
// @Summary Stream rotation events over a websocket
// @Description Sends each hub event as one JSON message until the client disconnects
// @Tags Events
// @Security Bearer
// @Router /events/ws [get]
func (mgr *EventsMgr) Stream(c *gin.Context) {
	conn, err := mgr.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		klog.Errorf("events: websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	events, cancel := mgr.hub.Subscribe()
	defer cancel()

	// Drain reads so close frames and pongs are processed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
