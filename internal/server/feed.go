package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/immutable-ratings/goratings/internal/protocol"
	"github.com/immutable-ratings/goratings/pkg/logger"
)

// feedMessage 推送给订阅端的事件消息
type feedMessage struct {
	Type      string                 `json:"type"`
	Payload   map[string]interface{} `json:"payload"`
	Timestamp int64                  `json:"timestamp"`
}

// feedHub 评分事件的 WebSocket 广播器
type feedHub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

func newFeedHub() *feedHub {
	return &feedHub{clients: make(map[*websocket.Conn]struct{})}
}

func (h *feedHub) add(conn *websocket.Conn) {
	h.mu.Lock()
	h.clients[conn] = struct{}{}
	h.mu.Unlock()
}

func (h *feedHub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	_ = conn.Close()
}

// broadcast 向所有订阅端推送事件，写失败的连接直接踢掉
func (h *feedHub) broadcast(ev protocol.Event) {
	msg := feedMessage{
		Type:      ev.Name(),
		Payload:   eventPayload(ev),
		Timestamp: time.Now().UnixMilli(),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteJSON(msg); err != nil {
			logger.Debugf("[feed] drop client: %v", err)
			delete(h.clients, conn)
			_ = conn.Close()
		}
	}
}

func eventPayload(ev protocol.Event) map[string]interface{} {
	switch e := ev.(type) {
	case protocol.RatingUpCreated:
		return map[string]interface{}{"rater": e.Rater.Hex(), "market": e.Market.Hex(), "amount": e.Amount.String()}
	case protocol.RatingDownCreated:
		return map[string]interface{}{"rater": e.Rater.Hex(), "market": e.Market.Hex(), "amount": e.Amount.String()}
	case protocol.MarketCreated:
		return map[string]interface{}{"url": e.URL, "market": e.Market.Hex()}
	case protocol.ReceiverUpdated:
		return map[string]interface{}{"receiver": e.Receiver.Hex()}
	case protocol.PausedSet:
		return map[string]interface{}{"paused": e.Paused}
	}
	return map[string]interface{}{}
}

var feedUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// 本服务面向内网控制台，不校验来源
	CheckOrigin: func(*http.Request) bool { return true },
}

func (s *Server) handleFeedWS(w http.ResponseWriter, r *http.Request) {
	conn, err := feedUpgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warnf("[feed] upgrade failed: %v", err)
		return
	}
	s.hub.add(conn)
	logger.Debugf("[feed] client connected: %s", conn.RemoteAddr())

	// 读循环只用于感知断开
	go func() {
		defer s.hub.remove(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
