// Package web exposes the workspace over HTTP for editor integration:
// JSON endpoints for search, toggle and listings, plus health and
// Prometheus metrics.
package web

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	sglog "github.com/sourcegraph/log"

	"github.com/pjkack/bore"
	"github.com/pjkack/bore/query"
)

type Server struct {
	Workspace *bore.Workspace
	Logger    sglog.Logger
}

func NewServer(ws *bore.Workspace, logger sglog.Logger) *Server {
	return &Server{Workspace: ws, Logger: logger}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/search", s.serveSearch)
	mux.HandleFunc("/api/toggle", s.serveToggle)
	mux.HandleFunc("/api/files", s.serveFiles)
	mux.HandleFunc("/api/projects", s.serveProjects)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok\n"))
	})
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

type searchReply struct {
	Matches    []matchReply `json:"matches"`
	Truncation uint32       `json:"truncation"`
	Stats      bore.Stats   `json:"stats"`
}

type matchReply struct {
	Path   string `json:"path"`
	Row    uint32 `json:"row"`
	Column uint32 `json:"column"`
	Line   string `json:"line"`
}

func (s *Server) serveSearch(w http.ResponseWriter, r *http.Request) {
	arg := r.URL.Query().Get("q")
	if arg == "" {
		http.Error(w, "missing q parameter", http.StatusBadRequest)
		return
	}
	q := query.Parse(arg)

	var opts bore.SearchOptions
	if v := r.URL.Query().Get("threads"); v != "" {
		opts.Threads, _ = strconv.Atoi(v)
	}
	if v := r.URL.Query().Get("max"); v != "" {
		opts.MaxMatches, _ = strconv.Atoi(v)
	}

	res, err := s.Workspace.Find(r.Context(), q, &opts)
	if err != nil {
		s.Logger.Warn("search failed",
			sglog.String("query", q.String()),
			sglog.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	idx := s.Workspace.Index()
	reply := searchReply{
		Matches:    make([]matchReply, 0, len(res.Matches)),
		Truncation: uint32(res.Truncation),
		Stats:      res.Stats,
	}
	for _, m := range res.Matches {
		reply.Matches = append(reply.Matches, matchReply{
			Path:   idx.RelPath(idx.Path(m.FileIndex)),
			Row:    m.Row,
			Column: m.Column,
			Line:   m.Line,
		})
	}
	writeJSON(w, &reply)
}

func (s *Server) serveToggle(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		http.Error(w, "missing path parameter", http.StatusBadRequest)
		return
	}
	companion, err := s.Workspace.Toggle(path)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]string{"path": companion})
}

func (s *Server) serveFiles(w http.ResponseWriter, r *http.Request) {
	idx := s.Workspace.Index()
	if idx == nil {
		http.Error(w, bore.ErrNotLoaded.Error(), http.StatusServiceUnavailable)
		return
	}
	var files []bore.FileRecord
	if name := r.URL.Query().Get("project"); name != "" {
		p := idx.ProjectByName(name)
		if p < 0 {
			http.Error(w, "unknown project", http.StatusNotFound)
			return
		}
		files = idx.ProjectFiles(uint32(p))
	} else {
		files = idx.Files
	}
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, idx.Strings.Str(f.Path))
	}
	writeJSON(w, out)
}

type projectReply struct {
	Name string `json:"name"`
	Path string `json:"path,omitempty"`
	GUID string `json:"guid,omitempty"`
}

func (s *Server) serveProjects(w http.ResponseWriter, r *http.Request) {
	idx := s.Workspace.Index()
	if idx == nil {
		http.Error(w, bore.ErrNotLoaded.Error(), http.StatusServiceUnavailable)
		return
	}
	out := make([]projectReply, 0, len(idx.Projects))
	for _, p := range idx.Projects {
		pr := projectReply{Name: idx.Strings.Str(p.Name)}
		if p.FilePath != 0 {
			pr.Path = idx.Strings.Str(p.FilePath)
		}
		if p.GUID != 0 {
			pr.GUID = idx.Strings.Str(p.GUID)
		}
		out = append(out, pr)
	}
	writeJSON(w, out)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
