package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"terrainkit/internal/pipeline"
	"terrainkit/internal/preview"
)

const defaultPreviewScale = 4

// Server exposes a finished generation run over HTTP.
type Server struct {
	result  *pipeline.Result
	addr    string
	httpSrv *http.Server
	logger  *log.Logger
}

// New wraps a finished run. A nil logger writes to the standard logger output.
func New(result *pipeline.Result, addr string, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(log.Writer(), "terrain ", log.LstdFlags|log.Lmicroseconds)
	}
	return &Server{result: result, addr: addr, logger: logger}
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/summary", s.handleSummary)
	r.Get("/trails", s.handleTrails)
	r.Get("/tiles/{x}/{y}", s.handleTile)
	r.Get("/preview.png", s.handlePreview)
	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.httpSrv = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Printf("HTTP server listening on %s", s.addr)
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.httpSrv.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.result.Summary())
}

type trailView struct {
	ID       int      `json:"id"`
	Kind     string   `json:"kind"`
	Seed     [2]int   `json:"seed"`
	Endpoint [2]int   `json:"endpoint"`
	Length   int      `json:"length"`
	Cost     float64  `json:"cost"`
	Tiles    [][2]int `json:"tiles,omitempty"`
}

func (s *Server) handleTrails(w http.ResponseWriter, r *http.Request) {
	withTiles := r.URL.Query().Get("tiles") == "1"
	shape := s.result.Shape
	coord := func(i int) [2]int {
		x, y := shape.Coord(i)
		return [2]int{x, y}
	}

	views := make([]trailView, 0, len(s.result.Trails.Trails))
	for _, t := range s.result.Trails.Trails {
		v := trailView{
			ID:       t.ID,
			Kind:     t.Request.Kind,
			Seed:     coord(t.Request.SeedIndex),
			Endpoint: coord(t.Request.EndpointIndex),
			Length:   len(t.Tiles),
			Cost:     t.Cost,
		}
		if withTiles {
			v.Tiles = make([][2]int, len(t.Tiles))
			for k, i := range t.Tiles {
				v.Tiles[k] = coord(i)
			}
		}
		views = append(views, v)
	}
	writeJSON(w, views)
}

func (s *Server) handleTile(w http.ResponseWriter, r *http.Request) {
	x, err := strconv.Atoi(chi.URLParam(r, "x"))
	if err != nil {
		http.Error(w, "invalid x coordinate", http.StatusBadRequest)
		return
	}
	y, err := strconv.Atoi(chi.URLParam(r, "y"))
	if err != nil {
		http.Error(w, "invalid y coordinate", http.StatusBadRequest)
		return
	}
	tile, err := s.result.Tile(x, y)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, tile)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	scale := defaultPreviewScale
	if raw := r.URL.Query().Get("scale"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > 16 {
			http.Error(w, "scale must be between 1 and 16", http.StatusBadRequest)
			return
		}
		scale = v
	}
	img, err := s.result.Preview(scale)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	if err := preview.Encode(w, img); err != nil {
		s.logger.Printf("write preview: %v", err)
	}
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
