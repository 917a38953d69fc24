package server

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/lanechart/pkg/buildinfo"
	"github.com/matzehuels/lanechart/pkg/chart"
	chartio "github.com/matzehuels/lanechart/pkg/io"
	"github.com/matzehuels/lanechart/pkg/linklayer"
	"github.com/matzehuels/lanechart/pkg/pipeline"
	"github.com/matzehuels/lanechart/pkg/store"
)

// contentTypes maps output formats to media types.
var contentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatPDF:  "application/pdf",
	pipeline.FormatJSON: "application/json",
	pipeline.FormatDOT:  "text/vnd.graphviz; charset=utf-8",
}

// fail logs server-side failures and writes the error response.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	if statusFor(err) >= http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err, "request_id", RequestID(r.Context()))
	}
	writeError(w, r, err)
}

// =============================================================================
// Health
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"service": "lanechart",
		"version": buildinfo.Get().Version,
	})
}

// =============================================================================
// Rendering
// =============================================================================

// handleRender renders a chart document sent as the request body.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	c, err := s.readChart(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.render(w, r, c, "")
}

func (s *Server) handleChartSVG(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.render(w, r, doc.Chart, pipeline.FormatSVG)
}

func (s *Server) handleRenderChart(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.render(w, r, doc.Chart, "")
}

// render runs the pipeline for a single format. A non-empty format
// overrides the query.
func (s *Server) render(w http.ResponseWriter, r *http.Request, c *chart.Chart, format string) {
	opts, err := s.renderOptions(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if format != "" {
		opts.Formats = []string{format}
	}

	res, err := s.runner.Execute(r.Context(), c, opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	f := opts.Formats[0]
	w.Header().Set("Content-Type", contentTypes[f])
	if res.Layout != nil {
		w.Header().Set("X-Links-Routed", strconv.Itoa(res.Stats.Routed))
		w.Header().Set("X-Links-Skipped", strconv.Itoa(res.Stats.Skipped))
	}
	w.Header().Set("X-Cache", cacheHeader(res.CacheInfo.RenderHit))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Artifacts[f])
}

func cacheHeader(hit bool) string {
	if hit {
		return "HIT"
	}
	return "MISS"
}

// renderOptions applies query parameters to the server defaults. Only one
// format is rendered per request.
func (s *Server) renderOptions(r *http.Request) (pipeline.Options, error) {
	opts := s.defaults
	opts.Formats = []string{pipeline.FormatSVG}
	q := r.URL.Query()
	p := queryParser{q: q}

	if v := q.Get("format"); v != "" {
		opts.Formats = []string{strings.ToLower(v)}
	}
	if v := q.Get("viz"); v != "" {
		opts.VizType = v
	}
	if v := q.Get("selected"); v != "" {
		opts.Selected = v
	}
	if v := q.Get("title"); v != "" {
		opts.Title = v
	}
	p.bool("grid", &opts.Grid)
	p.bool("interactive", &opts.Interactive)
	p.bool("detailed", &opts.Detailed)
	p.bool("left_to_right", &opts.LeftToRight)
	p.bool("refresh", &opts.Refresh)
	p.float("zoom", &opts.Viewport.Zoom)
	p.float("scroll_x", &opts.Viewport.ScrollX)
	p.float("scroll_y", &opts.Viewport.ScrollY)
	p.float("width", &opts.Layout.Width)
	p.float("px_per_unit", &opts.Layout.PxPerUnit)
	p.float("cell_size", &opts.CellSize)
	p.float("scale", &opts.Scale)
	if p.err != nil {
		return opts, p.err
	}
	return opts, nil
}

type queryParser struct {
	q   map[string][]string
	err error
}

func (p *queryParser) get(key string) string {
	if v := p.q[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}

func (p *queryParser) bool(key string, dst *bool) {
	v := p.get(key)
	if v == "" || p.err != nil {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.err = badRequest("query %s: not a boolean: %q", key, v)
		return
	}
	*dst = b
}

func (p *queryParser) float(key string, dst *float64) {
	v := p.get(key)
	if v == "" || p.err != nil {
		return
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.err = badRequest("query %s: not a number: %q", key, v)
		return
	}
	*dst = f
}

// =============================================================================
// Routing
// =============================================================================

type routeRequest struct {
	Chart   json.RawMessage  `json:"chart"`
	LinkID  string           `json:"link_id,omitempty"`
	Link    *chart.Link      `json:"link,omitempty"`
	Options pipeline.Options `json:"options"`
}

type routeResponse struct {
	linklayer.Routed
	Skipped bool `json:"skipped,omitempty"`
}

// handleRoute routes one link, either by id or given inline, optionally
// while a bar is being dragged.
func (s *Server) handleRoute(w http.ResponseWriter, r *http.Request) {
	var req routeRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.fail(w, r, bodyError(err))
		return
	}
	if len(req.Chart) == 0 {
		s.fail(w, r, badRequest("chart is required"))
		return
	}
	c, err := pipeline.Parse(req.Chart, pipeline.FormatJSON)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var link chart.Link
	switch {
	case req.Link != nil:
		link = *req.Link
	case req.LinkID != "":
		found := false
		for _, l := range c.Links {
			if l.ID == req.LinkID {
				link, found = l, true
				break
			}
		}
		if !found {
			s.fail(w, r, notFound("link %q not in chart", req.LinkID))
			return
		}
	default:
		s.fail(w, r, badRequest("link or link_id is required"))
		return
	}

	opts := req.Options
	if opts.CellSize == 0 {
		opts.CellSize = s.defaults.CellSize
	}
	if opts.CornerRadius == 0 {
		opts.CornerRadius = s.defaults.CornerRadius
	}
	routed, ok, err := s.runner.RouteLink(r.Context(), c, link, opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if !ok {
		writeJSON(w, http.StatusOK, routeResponse{Routed: linklayer.Routed{Link: link}, Skipped: true})
		return
	}
	writeJSON(w, http.StatusOK, routeResponse{Routed: routed})
}

// =============================================================================
// Chart store
// =============================================================================

func (s *Server) handleListCharts(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"charts": list})
}

func (s *Server) handleCreateChart(w http.ResponseWriter, r *http.Request) {
	c, err := s.readChart(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	doc, err := s.store.Put(r.Context(), &store.Document{ID: c.ID, Chart: c})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Location", "/charts/"+doc.ID)
	writeJSON(w, http.StatusCreated, summary(doc))
}

func (s *Server) handlePutChart(w http.ResponseWriter, r *http.Request) {
	c, err := s.readChart(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	id := chi.URLParam(r, "id")
	if c.ID != "" && c.ID != id {
		s.fail(w, r, badRequest("chart id %q does not match %q", c.ID, id))
		return
	}
	doc, err := s.store.Put(r.Context(), &store.Document{ID: id, Chart: c})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary(doc))
}

func (s *Server) handleGetChart(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	format := chartio.FormatJSON
	if v := r.URL.Query().Get("format"); v != "" {
		if format, err = chartio.ParseFormat(v); err != nil {
			s.fail(w, r, err)
			return
		}
	} else if strings.Contains(r.Header.Get("Accept"), "yaml") {
		format = chartio.FormatYAML
	}

	var buf bytes.Buffer
	if err := chartio.Write(doc.Chart, &buf, format); err != nil {
		s.fail(w, r, err)
		return
	}
	if format == chartio.FormatYAML {
		w.Header().Set("Content-Type", "application/yaml")
	} else {
		w.Header().Set("Content-Type", "application/json")
	}
	w.Header().Set("Last-Modified", doc.UpdatedAt.UTC().Format(http.TimeFormat))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleDeleteChart(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func summary(doc *store.Document) store.Summary {
	return store.Summary{
		ID:        doc.ID,
		Title:     doc.Chart.Title,
		Lanes:     len(doc.Chart.Swimlanes),
		Links:     len(doc.Chart.Links),
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
}

// =============================================================================
// Helpers
// =============================================================================

// readChart decodes and validates the request body as a chart document,
// choosing JSON or YAML by Content-Type.
func (s *Server) readChart(r *http.Request) (*chart.Chart, error) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, bodyError(err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, badRequest("empty request body")
	}
	return pipeline.Parse(data, r.Header.Get("Content-Type"))
}

// bodyError keeps MaxBytesError visible to statusFor.
func bodyError(err error) error {
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		return err
	}
	return badRequest("read body: %v", err)
}
