package server

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/matzehuels/vidtree/pkg/buildinfo"
	"github.com/matzehuels/vidtree/pkg/errors"
	"github.com/matzehuels/vidtree/pkg/layout"
	"github.com/matzehuels/vidtree/pkg/pipeline"
	"github.com/matzehuels/vidtree/pkg/treemap"
)

// =============================================================================
// Request and Response Types
// =============================================================================

// LayoutRequest is the body of POST /v1/layout.
//
// A missing rect lays out on the default 1200x800 canvas; a missing mode
// selects log mode.
type LayoutRequest struct {
	Items []treemap.Item `json:"items"`
	Rect  *treemap.Rect  `json:"rect,omitempty"`
	Mode  string         `json:"mode,omitempty"`
}

// HierarchicalRequest is the body of POST /v1/layout/hierarchical.
type HierarchicalRequest struct {
	LayoutRequest
	GroupBy string         `json:"group_by,omitempty"`
	Margin  *MarginRequest `json:"margin,omitempty"`
}

// MarginRequest overrides group margins. Omitted fields keep the defaults
// (label 18, padding 2); explicit zeros are honored.
type MarginRequest struct {
	Label   *float64 `json:"label,omitempty"`
	Padding *float64 `json:"padding,omitempty"`
}

// LayoutResponse is returned by POST /v1/layout.
type LayoutResponse struct {
	RequestID string          `json:"request_id"`
	Rect      treemap.Rect    `json:"rect"`
	Mode      string          `json:"mode"`
	Blocks    []treemap.Block `json:"blocks"`
	Stats     layout.Stats    `json:"stats"`
	Cached    bool            `json:"cached"`
}

// HierarchicalResponse is returned by POST /v1/layout/hierarchical.
type HierarchicalResponse struct {
	RequestID string               `json:"request_id"`
	Rect      treemap.Rect         `json:"rect"`
	Mode      string               `json:"mode"`
	GroupBy   string               `json:"group_by"`
	Margin    treemap.Margin       `json:"margin"`
	Groups    []treemap.GroupBlock `json:"groups"`
	Items     []treemap.Block      `json:"items"`
	Stats     layout.Stats         `json:"stats"`
	Cached    bool                 `json:"cached"`
}

// HealthResponse is returned by GET /healthz.
type HealthResponse struct {
	Status string `json:"status"`
	buildinfo.Info
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	RequestID string `json:"request_id"`
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Info: buildinfo.Get()})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	var req LayoutRequest
	if !s.decode(w, r, &req) {
		return
	}
	opts, err := req.options()
	if err != nil {
		s.fail(w, r, err)
		return
	}

	resp := LayoutResponse{RequestID: RequestID(r.Context()), Blocks: []treemap.Block{}}
	if req.Rect != nil && req.Rect.Empty() {
		// Degenerate canvases lay out nothing.
		resp.Rect, resp.Mode = *req.Rect, opts.WeightMode().String()
		writeJSON(w, http.StatusOK, resp)
		return
	}

	l, hit, err := s.runner.LayoutItems(r.Context(), req.Items, opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	resp.Rect, resp.Mode = l.Canvas(), l.Mode
	resp.Blocks, resp.Stats, resp.Cached = l.Blocks, l.Stats, hit
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHierarchical(w http.ResponseWriter, r *http.Request) {
	var req HierarchicalRequest
	if !s.decode(w, r, &req) {
		return
	}
	opts, err := req.options()
	if err != nil {
		s.fail(w, r, err)
		return
	}

	resp := HierarchicalResponse{
		RequestID: RequestID(r.Context()),
		Groups:    []treemap.GroupBlock{},
		Items:     []treemap.Block{},
	}
	if req.Rect != nil && req.Rect.Empty() {
		resp.Rect, resp.Mode = *req.Rect, opts.WeightMode().String()
		resp.GroupBy, resp.Margin = opts.GroupBy, opts.Margin()
		writeJSON(w, http.StatusOK, resp)
		return
	}

	l, hit, err := s.runner.LayoutItems(r.Context(), req.Items, opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	resp.Rect, resp.Mode, resp.GroupBy = l.Canvas(), l.Mode, l.GroupBy
	if l.Margin != nil {
		resp.Margin = *l.Margin
	}
	resp.Groups, resp.Items, resp.Stats, resp.Cached = l.Groups, l.Blocks, l.Stats, hit
	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// Request Conversion
// =============================================================================

func (req *LayoutRequest) options() (pipeline.Options, error) {
	for i, it := range req.Items {
		if it.ID == "" {
			return pipeline.Options{}, errors.New(errors.ErrCodeInvalidInput, "items[%d]: id is required", i)
		}
	}
	opts := pipeline.Options{Mode: req.Mode}
	if req.Rect != nil {
		opts.X, opts.Y = req.Rect.X, req.Rect.Y
		opts.Width, opts.Height = req.Rect.W, req.Rect.H
	}
	if opts.Mode != "" {
		if err := pipeline.ValidateMode(opts.Mode); err != nil {
			return pipeline.Options{}, err
		}
	}
	return opts, nil
}

func (req *HierarchicalRequest) options() (pipeline.Options, error) {
	opts, err := req.LayoutRequest.options()
	if err != nil {
		return opts, err
	}
	opts.Hierarchical = true
	opts.GroupBy = req.GroupBy
	margin := pipeline.DefaultMargin()
	if req.Margin != nil {
		if req.Margin.Label != nil {
			margin.Label = *req.Margin.Label
		}
		if req.Margin.Padding != nil {
			margin.Padding = *req.Margin.Padding
		}
	}
	opts.LabelMargin, opts.Padding = margin.Label, margin.Padding
	if opts.GroupBy == "" {
		opts.GroupBy = pipeline.DefaultGroupBy
	}
	return opts, nil
}

// =============================================================================
// Encoding Helpers
// =============================================================================

// decode reads a JSON body into v, writing an error response on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	err := dec.Decode(v)
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		writeError(w, r, http.StatusRequestEntityTooLarge, string(errors.ErrCodeInvalidInput),
			"request body exceeds limit")
		return false
	}
	s.fail(w, r, errors.New(errors.ErrCodeInvalidInput, "invalid request body: %v", err))
	return false
}

// fail writes err with the status its code maps to.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	msg := errors.UserMessage(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err, "request_id", RequestID(r.Context()))
	}
	writeError(w, r, status, string(code), msg)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, msg string) {
	var body errorBody
	body.Error.Code = code
	body.Error.Message = msg
	body.RequestID = RequestID(r.Context())
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
