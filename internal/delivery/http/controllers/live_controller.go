package controllers

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"
)

const (
	liveWriteTimeout = 5 * time.Second
	livePingEvery    = 20 * time.Second
	livePingTimeout  = 5 * time.Second
)

// LiveGateway pushes every new render to connected browsers over a websocket.
// A slow client only ever receives the latest render; older ones are dropped.
type LiveGateway struct {
	log            *slog.Logger
	view           RenderedView
	originPatterns []string

	mu      sync.Mutex
	clients map[chan string]struct{}
}

// NewLiveGateway returns a gateway that greets each client with view's current
// HTML. allowedOrigins are full origins (scheme://host[:port]) permitted for
// cross-origin connections.
func NewLiveGateway(logger *slog.Logger, rendered RenderedView, allowedOrigins []string) *LiveGateway {
	return &LiveGateway{
		log:            logger,
		view:           rendered,
		originPatterns: originPatterns(allowedOrigins),
		clients:        make(map[chan string]struct{}),
	}
}

// Broadcast queues html for every connected client without blocking.
func (g *LiveGateway) Broadcast(html string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for ch := range g.clients {
		select {
		case <-ch:
		default:
		}
		ch <- html
	}
}

// Clients returns the number of connected clients.
func (g *LiveGateway) Clients() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.clients)
}

// ServeHTTP godoc
// @Summary Live view updates
// @Description Websocket that sends the rendered #app container on connect and after every state change.
// @Tags viewer
// @Success 101 "switching protocols"
// @Router /live [get]
func (g *LiveGateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: g.originPatterns,
	})
	if err != nil {
		g.log.Info("live.accept.fail", "err", err, "origin", r.Header.Get("Origin"))
		return
	}
	defer func() { _ = conn.Close(websocket.StatusNormalClosure, "bye") }()

	ch := g.join()
	defer g.leave(ch)

	// Clients never send data; CloseRead handles control frames and cancels
	// ctx once the peer goes away.
	ctx := conn.CloseRead(r.Context())

	if err := write(ctx, conn, g.view.HTML()); err != nil {
		g.log.Info("live.write.fail", "close_status", websocket.CloseStatus(err), "err", err)
		return
	}

	ping := time.NewTicker(livePingEvery)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case html := <-ch:
			if err := write(ctx, conn, html); err != nil {
				g.log.Info("live.write.fail", "close_status", websocket.CloseStatus(err), "err", err)
				_ = conn.Close(websocket.StatusAbnormalClosure, "write failed")
				return
			}
		case <-ping.C:
			pingCtx, cancel := context.WithTimeout(ctx, livePingTimeout)
			err := conn.Ping(pingCtx)
			cancel()
			if err != nil {
				g.log.Info("live.ping.fail", "err", err)
				_ = conn.Close(websocket.StatusGoingAway, "heartbeat failed")
				return
			}
		}
	}
}

func (g *LiveGateway) join() chan string {
	ch := make(chan string, 1)
	g.mu.Lock()
	g.clients[ch] = struct{}{}
	g.mu.Unlock()
	return ch
}

func (g *LiveGateway) leave(ch chan string) {
	g.mu.Lock()
	delete(g.clients, ch)
	g.mu.Unlock()
}

func write(parent context.Context, conn *websocket.Conn, html string) error {
	ctx, cancel := context.WithTimeout(parent, liveWriteTimeout)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, []byte(html))
}

// originPatterns reduces allowed origins to the host patterns websocket.Accept
// matches cross-origin requests against.
func originPatterns(allowed []string) []string {
	var out []string
	seen := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		o = strings.TrimSuffix(strings.TrimSpace(o), "/")
		if o == "" {
			continue
		}
		host := o
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			host = u.Host
		}
		host = strings.ToLower(host)
		if _, ok := seen[host]; ok {
			continue
		}
		seen[host] = struct{}{}
		out = append(out, host)
	}
	return out
}
