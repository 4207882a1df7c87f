package net

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"PlayBoard/internal/export"
	"PlayBoard/internal/store"

	"github.com/gorilla/mux"
)

const (
	previewWidth  = 320
	previewHeight = 180
	maxPreview    = 2000
)

// PlaySummary is the list form of a saved play.
type PlaySummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Formation string    `json:"formation"`
	Tags      []string  `json:"tags"`
	Modified  time.Time `json:"modified"`
}

// Server exposes the play library and the live scene over HTTP.
type Server struct {
	router *mux.Router
	lib    *store.Library
	hub    *Hub
}

func NewServer(lib *store.Library, hub *Hub) *Server {
	s := &Server{router: mux.NewRouter(), lib: lib, hub: hub}

	s.router.Handle("/health", healthController{}).Methods(http.MethodGet)
	s.router.HandleFunc("/plays", s.listPlays).Methods(http.MethodGet)
	s.router.HandleFunc("/plays/{id}", s.getPlay).Methods(http.MethodGet)
	s.router.HandleFunc("/plays/{id}/preview.png", s.previewPlay).Methods(http.MethodGet)
	s.router.Handle("/live", hub)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s, ReadHeaderTimeout: 10 * time.Second}

	errc := make(chan error, 1)
	go func() {
		log.Printf("[HOST] Listening on %s", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("net: serve %s: %w", addr, err)
	case <-ctx.Done():
	}

	s.hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("net: shutdown: %w", err)
	}
	return nil
}

type healthController struct{}

func (healthController) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	fmt.Fprintf(w, "Healthy\n")
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[HOST] Error writing response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "play not found", http.StatusNotFound)
		return
	}
	log.Printf("[HOST] %v", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func (s *Server) listPlays(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	plays, err := s.lib.Search(r.Context(), store.Filter{
		Query:     q.Get("q"),
		Formation: q.Get("formation"),
		Tag:       q.Get("tag"),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]PlaySummary, 0, len(plays))
	for _, p := range plays {
		out = append(out, PlaySummary{ID: p.ID, Name: p.Name, Formation: p.Formation, Tags: p.Tags, Modified: p.Modified})
	}
	writeJSON(w, out)
}

func (s *Server) getPlay(w http.ResponseWriter, r *http.Request) {
	p, err := s.lib.LoadPlay(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, p)
}

func dimension(v string, def int) (int, error) {
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 || n > maxPreview {
		return 0, fmt.Errorf("bad dimension %q", v)
	}
	return n, nil
}

func (s *Server) previewPlay(w http.ResponseWriter, r *http.Request) {
	width, err := dimension(r.URL.Query().Get("w"), previewWidth)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	height, err := dimension(r.URL.Query().Get("h"), previewHeight)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	p, err := s.lib.LoadPlay(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	if err := export.WritePNG(w, p.Data, width, height); err != nil {
		log.Printf("[HOST] Preview %s: %v", p.ID, err)
	}
}
