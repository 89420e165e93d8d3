package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/ws/{docid}", s.ws)
	r.HandleFunc("/doc/{docid}", s.fetch).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// set up websocket
func (s *Server) ws(w http.ResponseWriter, r *http.Request) {
	doc, err := s.doc(r.Context(), mux.Vars(r)["docid"])
	if err != nil {
		s.log.Error("load document", "err", err)
		http.Error(w, "Document unavailable", http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Info("upgrade failed", "err", err)
		return
	}

	c := s.NewClient(doc, uuid.NewString(), conn)
	c.interact()
}

type fetchResponse struct {
	Text    string `json:"text"`
	Version int    `json:"version"`
}

// fetch returns the current snapshot of a document
func (s *Server) fetch(w http.ResponseWriter, r *http.Request) {
	text, seq, err := s.Snapshot(r.Context(), mux.Vars(r)["docid"])
	if err != nil {
		s.log.Error("load document", "err", err)
		http.Error(w, "Document unavailable", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(fetchResponse{Text: text, Version: seq})
}

// Run serves until ctx is done, then saves every changed document.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Handler:      s.Router(),
		Addr:         fmt.Sprintf("%s:%d", s.cfg.Addr, s.cfg.Port),
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	snapCtx, stopSnapshots := context.WithCancel(context.Background())
	snapDone := make(chan struct{})
	go func() {
		s.snapshots(snapCtx)
		close(snapDone)
	}()

	errc := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", srv.Addr)
		errc <- srv.ListenAndServe()
	}()

	var err error
	select {
	case err = <-errc:
	case <-ctx.Done():
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = srv.Shutdown(shutCtx)
		cancel()
	}
	s.disconnectAll()

	stopSnapshots()
	<-snapDone
	if err == http.ErrServerClosed {
		err = nil
	}
	return err
}

// hijacked websocket connections outlive http.Server.Shutdown
func (s *Server) disconnectAll() {
	s.docs.Range(func(_ string, d *DocMeta) bool {
		d.Lock()
		for c := range d.clients {
			c.close()
		}
		d.Unlock()
		return true
	})
}
