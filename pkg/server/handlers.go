package server

import (
	stderrors "errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/lifeline/pkg/buildinfo"
	"github.com/matzehuels/lifeline/pkg/diagram"
	"github.com/matzehuels/lifeline/pkg/errors"
	"github.com/matzehuels/lifeline/pkg/observability"
	"github.com/matzehuels/lifeline/pkg/pipeline"
	"github.com/matzehuels/lifeline/pkg/storage"
)

// renderResponse is returned by POST /v1/render?save=true.
type renderResponse struct {
	ID           string `json:"id"`
	DocumentHash string `json:"document_hash"`
	Location     string `json:"location"`
}

// handleHealth reports liveness and the build.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"build":  buildinfo.Get(),
	})
}

// handleLayout computes the layout of the posted document.
func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	data, err := readBody(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	opts, err := s.options(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	d, err := s.deps.Runner.Parse(ctx, "request", data)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	l, hit, err := s.deps.Runner.ComputeLayoutWithCacheInfo(ctx, d, opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out, err := diagram.MarshalLayout(l)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	w.Header().Set("X-Cache", cacheHeader(hit))
	writeBytes(w, http.StatusOK, "application/json", out)
}

// handleRender renders the posted document to one format. With save=true
// the layout and SVG are stored and the response describes the record.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	data, err := readBody(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	opts, err := s.options(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatSVG
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		s.fail(w, r, err)
		return
	}
	save, err := queryBool(r, "save")
	if err != nil {
		s.fail(w, r, err)
		return
	}

	opts.Formats = []string{format}
	if save && format != pipeline.FormatSVG {
		opts.Formats = append(opts.Formats, pipeline.FormatSVG)
	}

	res, err := s.deps.Runner.Execute(ctx, "request", data, opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("X-Cache", cacheHeader(res.CacheInfo.LayoutHit && res.CacheInfo.RenderHit))

	if !save {
		writeBytes(w, http.StatusOK, contentTypes[format], res.Artifacts[format])
		return
	}

	rec := storage.NewRecord(res.DocumentHash, res.Layout, res.Artifacts[pipeline.FormatSVG])
	if err := s.deps.Store.Save(ctx, rec); err != nil {
		s.fail(w, r, err)
		return
	}
	loc := "/v1/diagrams/" + rec.ID
	w.Header().Set("Location", loc)
	writeJSON(w, http.StatusCreated, renderResponse{
		ID:           rec.ID,
		DocumentHash: rec.DocumentHash,
		Location:     loc,
	})
}

// handleGetDiagram returns a stored record, or its SVG with format=svg.
func (s *Server) handleGetDiagram(w http.ResponseWriter, r *http.Request) {
	rec, err := s.deps.Store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	switch format := r.URL.Query().Get("format"); format {
	case "":
		writeJSON(w, http.StatusOK, rec)
	case pipeline.FormatSVG:
		if rec.SVG == "" {
			s.fail(w, r, errors.New(errors.ErrCodeNotFound, "record %s has no svg", rec.ID))
			return
		}
		writeBytes(w, http.StatusOK, contentTypes[format], []byte(rec.SVG))
	default:
		s.fail(w, r, errors.New(errors.ErrCodeInvalidFormat, "stored records serve svg only, use POST .../render for %q", format))
	}
}

// handleRenderStored re-renders a stored layout. The source document is not
// stored, so the overview formats are unsupported here.
func (s *Server) handleRenderStored(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rec, err := s.deps.Store.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	opts, err := s.options(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatSVG
	}
	opts.Formats = []string{format}

	artifacts, err := s.deps.Runner.Render(ctx, rec.Layout, nil, opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeBytes(w, http.StatusOK, contentTypes[format], artifacts[format])
}

// handleDeleteDiagram removes a stored record.
func (s *Server) handleDeleteDiagram(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// fail logs err, reports it to the HTTP hooks and writes the error response.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	route := r.URL.Path
	if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
		route = rctx.RoutePattern()
	}
	observability.HTTP().OnError(r.Context(), r.Method, route, err)

	if StatusFor(err) == http.StatusInternalServerError {
		s.deps.Logger.Error("request failed", "id", middleware.GetReqID(r.Context()), "err", err)
	} else {
		s.deps.Logger.Debug("request rejected", "id", middleware.GetReqID(r.Context()), "err", err)
	}
	writeErr(w, err)
}

// options builds pipeline options from the query string.
func (s *Server) options(r *http.Request) (pipeline.Options, error) {
	q := r.URL.Query()
	opts := pipeline.Options{
		Config: s.deps.Config,
		Style:  q.Get("style"),
	}

	flags := []struct {
		name string
		dst  *bool
	}{
		{"trace", &opts.Trace},
		{"numbers", &opts.SequenceNumbers},
		{"right_angles", &opts.RightAngles},
		{"detailed", &opts.Detailed},
		{"refresh", &opts.Refresh},
	}
	for _, f := range flags {
		v, err := queryBool(r, f.name)
		if err != nil {
			return opts, err
		}
		*f.dst = v
	}
	return opts, nil
}

// readBody reads at most MaxBodySize bytes of the request body.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodySize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return nil, errors.New(errors.ErrCodeInvalidInput, "request body exceeds %d bytes", tooLarge.Limit)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read request body")
	}
	return data, nil
}

func queryBool(r *http.Request, name string) (bool, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, errors.New(errors.ErrCodeInvalidInput, "query parameter %s: %q is not a boolean", name, v)
	}
	return b, nil
}

func cacheHeader(hit bool) string {
	if hit {
		return "HIT"
	}
	return "MISS"
}
