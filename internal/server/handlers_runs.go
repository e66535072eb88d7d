package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/martin/tailorproof/internal/corpus"
	"github.com/martin/tailorproof/internal/jobdesc"
	"github.com/martin/tailorproof/internal/pipeline"
	"github.com/martin/tailorproof/internal/profile"
	"github.com/martin/tailorproof/internal/server/middleware"
	"github.com/martin/tailorproof/internal/types"
)

// createRunRequest is the POST /v1/runs payload. The profile is passed
// through schema validation exactly like a profile file loaded by the CLI.
type createRunRequest struct {
	Job struct {
		Title   string `json:"title"`
		Company string `json:"company"`
		Text    string `json:"text"`
	} `json:"job"`
	Profile json.RawMessage `json:"profile"`

	Compact       bool   `json:"compact"`
	Rewrite       bool   `json:"rewrite"`
	CoverLetter   bool   `json:"cover_letter"`
	CandidateName string `json:"candidate_name"`
	Notes         string `json:"notes"`
}

// runResponse is the full outcome of a run. The trace is included inline:
// it is the artifact that proves where every statement came from.
type runResponse struct {
	RunID       string                 `json:"run_id,omitempty"`
	Document    string                 `json:"document"`
	CoverLetter string                 `json:"cover_letter,omitempty"`
	Evaluation  types.EvaluationReport `json:"evaluation"`
	Trace       *types.Trace           `json:"trace"`
}

// parseRunRequest decodes and validates the request into pipeline options.
func (s *Server) parseRunRequest(r *http.Request) (*pipeline.RunOptions, int, error) {
	var req createRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, http.StatusBadRequest, errors.New("invalid request body")
	}
	if req.Job.Text == "" {
		return nil, http.StatusBadRequest, errors.New("job.text is required")
	}
	if len(req.Profile) == 0 {
		return nil, http.StatusBadRequest, errors.New("profile is required")
	}

	prof, err := profile.Parse(req.Profile)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}

	job, err := jobdesc.New(req.Job.Text, req.Job.Title, req.Job.Company, s.pipelineCfg.Keywords.MaxTerms)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}

	opts := &pipeline.RunOptions{
		Job:              job,
		Profile:          prof,
		Config:           s.pipelineCfg,
		Compact:          req.Compact,
		Rewrite:          req.Rewrite,
		CoverLetter:      req.CoverLetter,
		CoverLetterNotes: req.Notes,
		CandidateName:    req.CandidateName,
		APIKey:           s.apiKey,
		Store:            s.store,
		UserID:           s.requestUser(r),
		Log:              s.log,
	}
	return opts, 0, nil
}

// requestUser attributes the run to the bearer token's user when one is
// presented. Runs do not require authentication; a bad token just means an
// unattributed run.
func (s *Server) requestUser(r *http.Request) *uuid.UUID {
	if s.jwtService == nil {
		return nil
	}
	token := middleware.BearerToken(r)
	if token == "" {
		return nil
	}
	userID, err := s.jwtService.UserFromToken(token)
	if err != nil {
		return nil
	}
	return &userID
}

// handleCreateRun executes a full pipeline run synchronously.
func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	opts, status, err := s.parseRunRequest(r)
	if err != nil {
		s.errorResponse(w, status, err.Error())
		return
	}

	result, err := pipeline.RunPipeline(r.Context(), *opts)
	if err != nil {
		s.errorResponse(w, runErrorStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, toRunResponse(result))
}

// handleRunStream executes a run while streaming progress over SSE.
func (s *Server) handleRunStream(w http.ResponseWriter, r *http.Request) {
	opts, status, err := s.parseRunRequest(r)
	if err != nil {
		s.errorResponse(w, status, err.Error())
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	opts.OnProgress = func(event pipeline.ProgressEvent) {
		// Strip the heavyweight content payloads; the stream is for humans
		// watching progress, the result event has everything.
		sse.WriteEvent("progress", map[string]string{ //nolint:errcheck
			"stage":   event.Stage,
			"message": event.Message,
		})
	}

	result, err := pipeline.RunPipeline(r.Context(), *opts)
	if err != nil {
		sse.WriteError(err.Error())
		return
	}

	resp := toRunResponse(result)
	sse.WriteEvent("result", resp) //nolint:errcheck
	sse.WriteComplete(resp.RunID, "completed")
}

// handleListRuns lists persisted runs, newest first.
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			s.errorResponse(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	runs, err := s.store.ListRuns(r.Context(), limit)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"runs":  runs,
		"count": len(runs),
	})
}

// handleGetRun returns one persisted run.
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	runID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid run id")
		return
	}

	run, err := s.store.GetRun(r.Context(), runID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	if run == nil {
		notFound := &ErrRunNotFound{RunID: runID}
		s.errorResponse(w, HTTPStatus(notFound), notFound.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, run)
}

// handleGetRunTrace returns the stored trace for a run.
func (s *Server) handleGetRunTrace(w http.ResponseWriter, r *http.Request) {
	runID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid run id")
		return
	}

	tr, err := s.store.GetTrace(r.Context(), runID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	if tr == nil {
		notFound := &ErrRunNotFound{RunID: runID}
		s.errorResponse(w, HTTPStatus(notFound), notFound.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, tr)
}

func toRunResponse(result *pipeline.RunResult) runResponse {
	resp := runResponse{
		Document:    result.Document,
		CoverLetter: result.CoverLetter,
		Evaluation:  result.Evaluation,
		Trace:       result.Trace,
	}
	if result.RunID != uuid.Nil {
		resp.RunID = result.RunID.String()
	}
	return resp
}

// runErrorStatus maps pipeline failures to HTTP statuses: evidence problems
// in the submitted profile are the client's to fix, the rest are server side.
func runErrorStatus(err error) int {
	var integrity *corpus.IntegrityError
	if errors.As(err, &integrity) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
