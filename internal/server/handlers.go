package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/matzehuels/flowtower/pkg/cache"
	"github.com/matzehuels/flowtower/pkg/check"
	"github.com/matzehuels/flowtower/pkg/errors"
	"github.com/matzehuels/flowtower/pkg/flow"
	"github.com/matzehuels/flowtower/pkg/graph"
	"github.com/matzehuels/flowtower/pkg/layout"
	"github.com/matzehuels/flowtower/pkg/pipeline"
	"github.com/matzehuels/flowtower/pkg/render"
	"github.com/matzehuels/flowtower/pkg/tree"
)

// request is the body shared by every endpoint. Only pipeline_tree is
// required; the remaining fields override the server defaults.
type request struct {
	PipelineTree   json.RawMessage `json:"pipeline_tree"`
	Layout         *layout.Config  `json:"layout,omitempty"`
	Mode           string          `json:"mode,omitempty"`
	Labels         *labels         `json:"labels,omitempty"`
	NoSubprocesses bool            `json:"no_subprocesses,omitempty"`
	Format         string          `json:"format,omitempty"`
	ShowLabels     bool            `json:"show_labels,omitempty"`
	Scale          float64         `json:"scale,omitempty"`
	Refresh        bool            `json:"refresh,omitempty"`
}

type labels struct {
	Start    string            `json:"start,omitempty"`
	End      string            `json:"end,omitempty"`
	Parallel string            `json:"parallel,omitempty"`
	Gateways map[string]string `json:"gateways,omitempty"`
}

type layoutResponse struct {
	GraphHash string       `json:"graph_hash"`
	Cached    bool         `json:"cached"`
	Layout    graph.Layout `json:"layout"`
}

type cellsResponse struct {
	GraphHash string       `json:"graph_hash"`
	Cached    bool         `json:"cached"`
	Mode      string       `json:"mode"`
	Cells     []graph.Cell `json:"cells"`
}

type treeResponse struct {
	GraphHash string            `json:"graph_hash"`
	Cached    bool              `json:"cached"`
	Tree      []*graph.TreeNode `json:"tree"`
}

// decode reads the request body and merges it over the server defaults.
// A null layout keeps the defaults.
func (s *Server) decode(w http.ResponseWriter, r *http.Request) (pipeline.Options, error) {
	// The layout section decodes over the configured spacing, so a request
	// overrides only the fields it sets.
	base := s.defaults.Layout
	req := request{Layout: &base}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return pipeline.Options{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body: %v", err)
	}
	if len(req.PipelineTree) == 0 || string(req.PipelineTree) == "null" {
		return pipeline.Options{}, errors.New(errors.ErrCodeInvalidInput, "pipeline_tree is required")
	}

	opts := s.defaults
	opts.Source = req.PipelineTree
	opts.Format = flow.FormatJSON
	opts.SourceName = "request"
	opts.Logger = s.logger
	opts.Refresh = req.Refresh
	opts.NoSubprocesses = opts.NoSubprocesses || req.NoSubprocesses
	if req.Layout != nil {
		opts.Layout = *req.Layout
	}
	if req.Mode != "" {
		opts.Mode = req.Mode
	}
	if req.Labels != nil {
		gateways, err := tree.GatewayLabels(req.Labels.Gateways)
		if err != nil {
			return pipeline.Options{}, err
		}
		opts.Labels = tree.Labels{
			Start:    req.Labels.Start,
			End:      req.Labels.End,
			Parallel: req.Labels.Parallel,
			Gateways: gateways,
		}
	}
	if req.Format != "" {
		opts.Formats = []string{req.Format}
	}
	opts.ShowLabels = opts.ShowLabels || req.ShowLabels
	if req.Scale != 0 {
		opts.Scale = req.Scale
	}
	return opts, nil
}

// runnerFor returns the runner for r. A request carrying X-Cache-Scope
// gets a runner whose cache keys are prefixed with that scope, so tenants
// sharing a backend never read each other's entries.
func (s *Server) runnerFor(r *http.Request) (*pipeline.Runner, error) {
	scope := r.Header.Get(cacheScopeHeader)
	if scope == "" {
		return s.runner, nil
	}
	if err := errors.ValidateCacheScope(scope); err != nil {
		return nil, err
	}
	scoped := *s.runner
	scoped.Keyer = cache.NewScopedKeyer(s.runner.Keyer, scope+":")
	return &scoped, nil
}

func (s *Server) layout(w http.ResponseWriter, r *http.Request) {
	opts, err := s.decode(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rn, err := s.runnerFor(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	g, hash, err := rn.Parse(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	l, hit, err := rn.LayoutWithCacheInfo(r.Context(), g, hash, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	setCacheHeader(w, hit)
	writeJSON(w, http.StatusOK, layoutResponse{GraphHash: hash, Cached: hit, Layout: l})
}

func (s *Server) cells(w http.ResponseWriter, r *http.Request) {
	opts, err := s.decode(w, r)
	if err == nil {
		err = opts.ValidateForCells()
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rn, err := s.runnerFor(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	g, hash, err := rn.Parse(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	l, err := rn.Layout(r.Context(), g, hash, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	cs, hit, err := rn.CellsWithCacheInfo(r.Context(), l, g, hash, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if cs == nil {
		cs = []graph.Cell{}
	}
	setCacheHeader(w, hit)
	writeJSON(w, http.StatusOK, cellsResponse{GraphHash: hash, Cached: hit, Mode: opts.Mode, Cells: cs})
}

func (s *Server) tree(w http.ResponseWriter, r *http.Request) {
	opts, err := s.decode(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rn, err := s.runnerFor(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	g, hash, err := rn.Parse(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	t, _, hit, err := rn.TreeWithCacheInfo(r.Context(), g, hash, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	setCacheHeader(w, hit)
	writeJSON(w, http.StatusOK, treeResponse{GraphHash: hash, Cached: hit, Tree: t})
}

var contentTypes = map[render.Format]string{
	render.FormatSVG: "image/svg+xml",
	render.FormatPNG: "image/png",
	render.FormatPDF: "application/pdf",
	render.FormatDOT: "text/vnd.graphviz; charset=utf-8",
}

func (s *Server) render(w http.ResponseWriter, r *http.Request) {
	opts, err := s.decode(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rn, err := s.runnerFor(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if len(opts.Formats) == 0 {
		opts.Formats = []string{string(render.FormatSVG)}
	}
	format, err := render.ParseFormat(opts.Formats[0])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts.Formats = []string{string(format)}

	g, hash, err := rn.Parse(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	l, err := rn.Layout(r.Context(), g, hash, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	artifacts, err := rn.Render(r.Context(), l, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data := artifacts[string(format)]
	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) check(w http.ResponseWriter, r *http.Request) {
	opts, err := s.decode(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	report, err := check.Payload(opts.Source)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if report.Findings == nil {
		report.Findings = []check.Finding{}
	}
	writeJSON(w, http.StatusOK, report)
}

func setCacheHeader(w http.ResponseWriter, hit bool) {
	if hit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
}
