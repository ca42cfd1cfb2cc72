package status

import (
	"errors"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/viant/evalrt/service/dao"
)

type healthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondOK(w, RequestIDFromContext(r.Context()), healthResponse{
		Status:    "healthy",
		Version:   s.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(s.startTime).Round(time.Second).String(),
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	respondOK(w, RequestIDFromContext(r.Context()), s.source.Metrics().Snapshot())
}

// handleListEvaluators accepts an optional comma separated state filter, e.g. ?state=bound,closed
func (s *Server) handleListEvaluators(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	var parameters []*dao.Parameter
	if state := r.URL.Query().Get("state"); state != "" {
		parameters = append(parameters, dao.NewParameter(dao.ParamState, strings.Split(state, ",")...))
	}
	records, err := s.source.Evaluators(r.Context(), parameters...)
	if err != nil {
		s.respondFailure(w, reqID, err)
		return
	}
	respondOK(w, reqID, records)
}

func (s *Server) handleGetEvaluator(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	record, err := s.source.Evaluator(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondFailure(w, reqID, err)
		return
	}
	respondOK(w, reqID, record)
}

func (s *Server) handleGetJournal(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	id := chi.URLParam(r, "id")
	if _, err := s.source.Evaluator(r.Context(), id); err != nil {
		s.respondFailure(w, reqID, err)
		return
	}
	entries, err := s.source.Journal(r.Context(), id)
	if err != nil {
		s.respondFailure(w, reqID, err)
		return
	}
	respondOK(w, reqID, entries)
}

func (s *Server) handleListContexts(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	id := chi.URLParam(r, "id")
	if _, err := s.source.Evaluator(r.Context(), id); err != nil {
		s.respondFailure(w, reqID, err)
		return
	}
	contexts, err := s.source.Contexts(r.Context(), id)
	if err != nil {
		s.respondFailure(w, reqID, err)
		return
	}
	respondOK(w, reqID, contexts)
}

func (s *Server) handleGetContext(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	aContext, err := s.source.Context(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "contextId"))
	if err != nil {
		s.respondFailure(w, reqID, err)
		return
	}
	respondOK(w, reqID, aContext)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	task, err := s.source.Task(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "taskId"))
	if err != nil {
		s.respondFailure(w, reqID, err)
		return
	}
	respondOK(w, reqID, task)
}

func (s *Server) respondFailure(w http.ResponseWriter, reqID string, err error) {
	if errors.Is(err, dao.ErrNotFound) {
		respondError(w, reqID, http.StatusNotFound, &APIError{Code: CodeNotFound, Message: err.Error()})
		return
	}
	s.logger.Error("status request failed", "request_id", reqID, "error", err)
	respondError(w, reqID, http.StatusInternalServerError, &APIError{Code: CodeInternal, Message: err.Error()})
}
