// Package web serves a read-only live view of the chain: a server
// rendered HTML page plus a websocket feed that pushes the tree on
// every edit, so a browser (or another host process) can follow along.
package web

import (
	"encoding/json"
	"html/template"
	"net/http"
	"strings"

	"chainrack/internal/editor"
	"chainrack/internal/format"
	"chainrack/internal/model"

	"github.com/gorilla/websocket"
)

type ServerConfig struct {
	Editor *editor.Editor
}

type Server struct {
	ed   *editor.Editor
	tmpl *template.Template
}

func NewServer(cfg ServerConfig) (*Server, error) {
	tmpl, err := template.New("chain").Parse(chainPage)
	if err != nil {
		return nil, err
	}
	return &Server{ed: cfg.Editor, tmpl: tmpl}, nil
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", s.handleIndex)
	mux.HandleFunc("GET /chain.json", s.handleChainJSON)
	mux.HandleFunc("GET /ws", s.handleWS)
	return mux
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	c := s.ed.Chain()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = s.tmpl.Execute(w, map[string]any{
		"Tree":    format.RenderTree(c),
		"Plugins": c.CountPlugins(),
		"Version": s.ed.Version(),
	})
}

func (s *Server) handleChainJSON(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(chainMsg(s.ed))
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  8 * 1024,
	WriteBufferSize: 8 * 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := strings.TrimSpace(r.Header.Get("Origin"))
		if origin == "" {
			return true
		}
		// Basic same-origin check; good enough for localhost use.
		host := strings.TrimSpace(r.Host)
		return strings.Contains(origin, "://"+host)
	},
}

type wsChainMsg struct {
	Type    string       `json:"type"`
	Version uint64       `json:"version"`
	Chain   *model.Chain `json:"chain"`
}

func chainMsg(ed *editor.Editor) wsChainMsg {
	return wsChainMsg{Type: "chain", Version: ed.Version(), Chain: ed.Chain()}
}

// handleWS streams the chain to the client: one message on connect, one
// per edit. The read side only watches for the peer closing.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, "websocket upgrade failed", http.StatusBadRequest)
		return
	}
	defer conn.Close()

	// Coalescing wakeup: a burst of edits produces at most one queued
	// notification. The subscription is released when the client leaves
	// so reconnecting clients don't accumulate dead callbacks.
	wake := make(chan struct{}, 1)
	unsubscribe := s.ed.Subscribe(func() {
		select {
		case wake <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	var lastSent uint64
	send := func() error {
		msg := chainMsg(s.ed)
		if msg.Version == lastSent && lastSent != 0 {
			return nil
		}
		lastSent = msg.Version
		return conn.WriteJSON(msg)
	}

	if err := send(); err != nil {
		return
	}
	for {
		select {
		case <-wake:
			if err := send(); err != nil {
				return
			}
		case <-closed:
			return
		case <-r.Context().Done():
			return
		}
	}
}

const chainPage = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>chainrack</title>
<style>
body { font-family: monospace; margin: 2rem; background: #14141a; color: #d8d8e0; }
pre { font-size: 14px; line-height: 1.5; }
.meta { color: #8888a0; }
</style>
</head>
<body>
<h1>chainrack</h1>
<p class="meta">{{.Plugins}} plugin(s), version {{.Version}} &middot; live feed at <code>/ws</code>, raw JSON at <code>/chain.json</code></p>
<pre>{{.Tree}}</pre>
</body>
</html>
`
