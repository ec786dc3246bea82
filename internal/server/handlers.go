package server

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/matzehuels/barrace/pkg/buildinfo"
	"github.com/matzehuels/barrace/pkg/dataset"
	"github.com/matzehuels/barrace/pkg/errors"
	"github.com/matzehuels/barrace/pkg/pipeline"
	"github.com/matzehuels/barrace/pkg/settings"
	"github.com/matzehuels/barrace/pkg/timeline"
)

// inputRequest carries a dataset, either as JSON or as CSV text, and
// optional settings in their JSON form. Missing settings keys keep their
// defaults.
type inputRequest struct {
	Dataset  json.RawMessage `json:"dataset,omitempty"`
	CSV      string          `json:"csv,omitempty"`
	Settings json.RawMessage `json:"settings,omitempty"`
}

type frameRequest struct {
	inputRequest
	Index  float64 `json:"index"`
	Format string  `json:"format,omitempty"`
	Scale  float64 `json:"scale,omitempty"`
	Locale string  `json:"locale,omitempty"`
	Embed  bool    `json:"embed,omitempty"`
}

type planRequest struct {
	Settings json.RawMessage `json:"settings,omitempty"`
	Steps    int             `json:"steps"`
	FPS      int             `json:"fps,omitempty"`
}

type validateResponse struct {
	Valid    bool   `json:"valid"`
	Entities int    `json:"entities"`
	Steps    int    `json:"steps"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Hash     string `json:"hash"`
}

type planFrame struct {
	AtMs  int64          `json:"atMs"`
	Index float64        `json:"index"`
	State timeline.State `json:"state"`
}

type planResponse struct {
	FPS    int         `json:"fps"`
	Frames []planFrame `json:"frames"`
}

var contentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatPDF:  "application/pdf",
	pipeline.FormatJSON: "application/json",
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req inputRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	in, err := req.inputs()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	width, height := in.Settings.FrameSize()
	writeJSON(w, http.StatusOK, validateResponse{
		Valid:    true,
		Entities: len(in.Dataset.Entities),
		Steps:    in.Dataset.Len(),
		Width:    width,
		Height:   height,
		Hash:     in.Hash,
	})
}

func (s *Server) handleFrames(w http.ResponseWriter, r *http.Request) {
	var req frameRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Format == "" {
		req.Format = pipeline.FormatSVG
	}
	in, err := req.inputs()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	opts := pipeline.Options{
		Dataset:  in.Dataset,
		Settings: in.Settings,
		Index:    req.Index,
		Formats:  []string{req.Format},
		Scale:    req.Scale,
		Locale:   req.Locale,
		Embed:    req.Embed,
		Logger:   s.logger,
	}
	_, artifacts, hit, err := s.runner.RenderFrameWithCacheInfo(r.Context(), in, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	cacheStatus := "MISS"
	if hit {
		cacheStatus = "HIT"
	}
	w.Header().Set("Content-Type", contentTypes[req.Format])
	w.Header().Set("X-Cache", cacheStatus)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifacts[req.Format])
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Steps <= 0 {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "steps must be > 0, got %d", req.Steps))
		return
	}
	if req.FPS == 0 {
		req.FPS = pipeline.DefaultFPS
	}
	if req.FPS < 0 || req.FPS > pipeline.MaxFPS {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "fps must be in [1, %d], got %d", pipeline.MaxFPS, req.FPS))
		return
	}
	st, err := decodeSettings(req.Settings)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	frames, err := s.runner.Plan(r.Context(), timeline.FromSettings(st.Timeline, req.Steps), req.FPS)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp := planResponse{FPS: req.FPS, Frames: make([]planFrame, len(frames))}
	for i, f := range frames {
		resp.Frames[i] = planFrame{AtMs: f.At.Milliseconds(), Index: f.Index, State: f.State}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (req inputRequest) inputs() (*pipeline.Inputs, error) {
	st, err := decodeSettings(req.Settings)
	if err != nil {
		return nil, err
	}

	h := st.Values.EmptyCellHandling
	var ds *dataset.Dataset
	switch {
	case len(req.Dataset) > 0 && req.CSV != "":
		return nil, errors.New(errors.ErrCodeInvalidInput, "send either dataset or csv, not both")
	case len(req.Dataset) > 0:
		ds, err = dataset.ReadJSON(bytes.NewReader(req.Dataset), h)
	case req.CSV != "":
		ds, err = dataset.ReadCSV(strings.NewReader(req.CSV), h)
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "dataset or csv is required")
	}
	if err != nil {
		return nil, err
	}
	return pipeline.NewInputs(ds, st, "")
}

func decodeSettings(raw json.RawMessage) (*settings.Settings, error) {
	if len(raw) == 0 {
		return settings.Default(), nil
	}
	return settings.Decode(bytes.NewReader(raw), settings.FormatJSON)
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return err
		}
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request: %v", err)
	}
	return nil
}
