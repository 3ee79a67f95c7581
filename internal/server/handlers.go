package server

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/founder-match/internal/logging"
	"github.com/jonathan/founder-match/internal/server/middleware"
)

var queryValidator = validator.New()

// recommendationsQuery holds the query parameters of GET /recommendations.
type recommendationsQuery struct {
	Refresh string `validate:"omitempty,boolean"`
}

// parseRecommendationsQuery validates the query string and returns the refresh flag.
func parseRecommendationsQuery(r *http.Request) (bool, error) {
	q := recommendationsQuery{Refresh: r.URL.Query().Get("refresh")}
	if err := queryValidator.Struct(q); err != nil {
		return false, &ErrValidation{Field: "refresh", Message: "must be a boolean"}
	}
	if q.Refresh == "" {
		return false, nil
	}
	refresh, err := strconv.ParseBool(q.Refresh)
	if err != nil {
		return false, &ErrValidation{Field: "refresh", Message: "must be a boolean"}
	}
	return refresh, nil
}

// handleGetRecommendations serves GET /recommendations for the authenticated member.
func (s *Server) handleGetRecommendations(w http.ResponseWriter, r *http.Request) {
	subjectID, err := middleware.GetSubjectID(r)
	if err != nil {
		s.writeError(w, r, &ErrUnauthorized{})
		return
	}

	refresh, err := parseRecommendationsQuery(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.recommender.GetRecommendations(r.Context(), subjectID, refresh)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	logging.Ctx(r.Context()).Debug().
		Str("subject_id", subjectID.String()).
		Bool("cached", result.Cached).
		Int("count", len(result.Recommendations)).
		Msg("served recommendations")

	s.jsonResponse(w, http.StatusOK, result.Response())
}

// writeError maps err to a status code and writes a JSON error body. Details
// of internal failures are logged, not returned.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logging.Ctx(r.Context()).Error().Err(err).Msg("request failed")
	}
	s.errorResponse(w, status, ErrorMessage(err))
}
