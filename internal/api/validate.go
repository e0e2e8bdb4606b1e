package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/metatool-io/metatool/internal/api/middleware"
	"github.com/metatool-io/metatool/internal/engine"
)

// handleValidate accepts an uploaded metadata document, runs the full
// validation pipeline and returns the resulting FieldSets as JSON.
//
// The model type is taken from the "modeltype" query parameter. The request
// body is the raw document; its size is capped by MaxRequestSize.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	modeltype := r.URL.Query().Get("modeltype")
	if modeltype == "" {
		WriteErrorResponse(w, r, s.logger, BadRequest("missing required query parameter: modeltype"))

		return
	}

	body := http.MaxBytesReader(w, r.Body, s.config.MaxRequestSize)
	defer body.Close()

	sets, err := s.engine.ValidateModel(r.Context(), modeltype, body, s.opts)
	if err != nil {
		s.writeValidateError(w, r, modeltype, err)

		return
	}

	s.logger.Info("Validated document",
		slog.String("modeltype", modeltype),
		slog.Int("fieldsets", len(sets)),
		slog.String("correlation_id", middleware.GetCorrelationID(r.Context())),
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(sets); err != nil {
		s.logger.Error("Failed to encode validation response",
			slog.String("modeltype", modeltype),
			slog.String("correlation_id", middleware.GetCorrelationID(r.Context())),
		)
	}
}

func (s *Server) writeValidateError(w http.ResponseWriter, r *http.Request, modeltype string, err error) {
	var maxBytesErr *http.MaxBytesError

	switch {
	case errors.Is(err, engine.ErrNoGenerator):
		WriteErrorResponse(w, r, s.logger, UnsupportedModelType(modeltype))
	case errors.As(err, &maxBytesErr):
		WriteErrorResponse(w, r, s.logger, NewProblemDetail(
			http.StatusRequestEntityTooLarge,
			"Request Entity Too Large",
			"uploaded document exceeds the configured size limit",
		))
	case errors.Is(err, io.ErrUnexpectedEOF):
		WriteErrorResponse(w, r, s.logger, BadRequest("truncated document: "+err.Error()))
	default:
		WriteErrorResponse(w, r, s.logger, BadRequest("cannot parse document: "+err.Error()))
	}
}
