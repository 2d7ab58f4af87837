// Package bridge exposes the conversion engine to storefront loader
// scripts over a websocket session. The loader observes the live page
// (load hooks, mutation observers, the currency switcher) and sends
// trigger messages with the affected markup; the bridge runs a conversion
// pass and sends the converted markup back.
package bridge

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"pricefx/internal/domain"
	"pricefx/internal/engine"
	"pricefx/internal/event"
	"pricefx/internal/infra"
	"pricefx/internal/page"

	"github.com/gorilla/websocket"
)

const (
	writeTimeout   = 10 * time.Second
	maxMessageSize = 4 << 20 // generous; cart fragments can be large
)

// request is one trigger message from the loader script
type request struct {
	Type   string `json:"type"` // page_load | subtree_changed | currency_changed
	HTML   string `json:"html,omitempty"`
	Root   string `json:"root,omitempty"`
	Target string `json:"target,omitempty"`
	From   string `json:"from,omitempty"`
	To     string `json:"to,omitempty"`
}

// response carries the converted markup and per-pass outcome
type response struct {
	Type       string `json:"type"` // converted | skipped | error
	HTML       string `json:"html,omitempty"`
	Target     string `json:"target,omitempty"`
	Converted  int    `json:"converted"`
	Skipped    int    `json:"skipped"`
	SkipReason string `json:"skip_reason,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Server accepts loader sessions and runs one engine per session
type Server struct {
	settings engine.Settings
	rates    engine.RateSource
	upgrader websocket.Upgrader
	srv      *http.Server
}

// NewServer builds the bridge from configuration
func NewServer(cfg *infra.Config, rates engine.RateSource) *Server {
	return &Server{
		settings: engine.Settings{
			BaseCurrency: cfg.Store.BaseCurrency,
			Selector:     cfg.Store.PriceSelector,
			Attributes:   cfg.Store.Attributes,
			Rule:         cfg.RoundingRule(),
			Catalog:      cfg.Catalog(),
		},
		rates: rates,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// storefronts embed the loader on arbitrary shop domains
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		srv: &http.Server{Addr: cfg.Bridge.ListenAddr},
	}
}

// Start begins serving loader sessions on /ws
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	s.srv.Handler = mux

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.srv.Shutdown(shutdownCtx)
	}()

	slog.Info("Bridge listening", slog.String("addr", s.srv.Addr))
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", slog.Any("error", err))
		return
	}

	sess := &session{
		conn:    conn,
		manager: engine.NewManager(s.settings, s.rates, nil),
	}
	infra.GlobalMetrics.SessionOpened()
	defer infra.GlobalMetrics.SessionClosed()

	sess.run()
}

// session is one connected loader script with its own engine and document
type session struct {
	conn    *websocket.Conn
	manager *engine.Manager
	writeMu sync.Mutex
	doc     *page.Document
}

func (s *session) run() {
	defer s.conn.Close()
	s.conn.SetReadLimit(maxMessageSize)

	for {
		var req request
		if err := s.conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("session read failed", slog.Any("error", err))
			}
			return
		}
		s.handle(req)
	}
}

func (s *session) handle(req request) {
	started := time.Now()

	trig, root, err := s.prepare(req)
	if err != nil {
		s.send(response{Type: "error", Error: err.Error()})
		return
	}

	report := s.manager.RunPass(trig)
	infra.GlobalMetrics.RecordPass(report, time.Since(started))

	switch {
	case report.Err != nil:
		// pass aborted: original prices stay displayed, tell the loader
		s.send(response{Type: "error", Target: string(report.Target), Error: report.Err.Error()})
	case report.SkipReason != "":
		s.send(response{Type: "skipped", Target: string(report.Target), SkipReason: report.SkipReason})
	default:
		html, htmlErr := s.doc.HTML()
		if htmlErr != nil {
			s.send(response{Type: "error", Error: htmlErr.Error()})
			return
		}
		s.send(response{
			Type:      "converted",
			HTML:      selectRoot(html, root, s.doc),
			Target:    string(report.Target),
			Converted: report.Converted,
			Skipped:   report.Skipped,
		})
	}
}

// prepare turns a wire message into a trigger, attaching a fresh document
// when the message carries markup.
func (s *session) prepare(req request) (event.Trigger, string, error) {
	if req.HTML != "" {
		doc, err := page.ParseString(req.HTML)
		if err != nil {
			return nil, "", err
		}
		s.doc = doc
		s.manager.SetDocument(doc)
	}
	if req.Target != "" {
		s.manager.SetTarget(domain.Code(req.Target))
	}

	switch req.Type {
	case "page_load":
		return &event.PageLoadTrigger{}, "", nil
	case "subtree_changed":
		return &event.SubtreeChangedTrigger{RootSelector: req.Root}, req.Root, nil
	case "currency_changed":
		return &event.CurrencyChangedTrigger{From: domain.Code(req.From), To: domain.Code(req.To)}, "", nil
	default:
		return nil, "", errors.New("unknown message type: " + req.Type)
	}
}

// selectRoot narrows the reply to the requested subtree when possible
func selectRoot(full, root string, doc *page.Document) string {
	if root == "" {
		return full
	}
	sel := doc.Subtree(root)
	html, err := sel.Html()
	if err != nil || html == "" {
		return full
	}
	return html
}

func (s *session) send(resp response) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := s.conn.WriteJSON(resp); err != nil {
		slog.Warn("session write failed", slog.Any("error", err))
	}
}
