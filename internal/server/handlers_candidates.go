package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/jonathan/candidate-intake/internal/schemas"
	"github.com/jonathan/candidate-intake/internal/types"
)

// maxRequestBodyBytes caps candidate submissions at 1 MiB.
const maxRequestBodyBytes = 1 << 20

// handleSubmitCandidate creates or updates the candidate identified by email
//
// @Summary Create or update a candidate
// @Description Validates the submission and upserts the candidate keyed by email.
// @Tags candidate
// @Accept json
// @Produce json
// @Param candidate body types.CandidateInput true "Candidate details"
// @Success 200 {object} types.OperationResult[types.CandidateInput]
// @Failure 400 {object} types.OperationResult[types.CandidateInput]
// @Failure 413 {object} types.OperationResult[types.CandidateInput]
// @Failure 415 {object} types.OperationResult[types.CandidateInput]
// @Failure 429 {object} map[string]interface{}
// @Router /api/candidate [post]
func (s *Server) handleSubmitCandidate(w http.ResponseWriter, r *http.Request) {
	input, err := s.decodeCandidate(w, r)
	if err != nil {
		s.failureResponse(w, err)
		return
	}

	result := s.candidates.SubmitCandidate(r.Context(), input)
	status := http.StatusOK
	if result.HasError() {
		status = http.StatusBadRequest
	}
	s.jsonResponse(w, status, result)
}

func (s *Server) decodeCandidate(w http.ResponseWriter, r *http.Request) (types.CandidateInput, error) {
	var input types.CandidateInput

	if ct := r.Header.Get("Content-Type"); ct != "" && !isJSONMediaType(ct) {
		return input, &ErrUnsupportedMediaType{ContentType: ct}
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return input, &ErrRequestTooLarge{Limit: tooLarge.Limit}
		}
		return input, &ErrBadRequest{Messages: []string{"failed to read request body"}}
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return input, &ErrBadRequest{Messages: []string{"request body is required"}}
	}

	if err := schemas.ValidateCandidateBody(body); err != nil {
		var shapeErr *schemas.ValidationError
		if errors.As(err, &shapeErr) {
			return input, &ErrBadRequest{Messages: shapeErr.Messages()}
		}
		return input, err
	}

	if err := json.Unmarshal(body, &input); err != nil {
		return input, &ErrBadRequest{Messages: []string{"invalid request body: " + err.Error()}}
	}
	return input, nil
}

// failureResponse reports a request that never reached the candidate service.
func (s *Server) failureResponse(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	kind := types.KindValidation
	if status >= http.StatusInternalServerError {
		kind = types.KindOperational
		s.logger.Error("Request failed", slog.Any("error", err))
	}
	result := types.NewOperationResult[types.CandidateInput]()
	result.Fail(kind, errorMessages(err)...)
	s.jsonResponse(w, status, result)
}

func isJSONMediaType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}
