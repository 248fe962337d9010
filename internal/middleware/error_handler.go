package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"

	"github.com/dayumstir/bnpl-ledger/internal/domain"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// MapError translates domain and database errors into HTTP responses.
// Domain errors carry their own classification; anything reaching the
// pgx branch escaped the service layer unclassified.
func MapError(err error) (int, ErrorResponse) {
	if kind, ok := domain.KindOf(err); ok {
		switch kind {
		case domain.KindValidation:
			return http.StatusBadRequest, ErrorResponse{Error: err.Error()}
		case domain.KindConflict:
			return http.StatusConflict, ErrorResponse{Error: err.Error()}
		case domain.KindNotFound:
			return http.StatusNotFound, ErrorResponse{Error: err.Error()}
		case domain.KindDependency:
			return http.StatusBadGateway, ErrorResponse{Error: "upstream dependency unavailable"}
		case domain.KindConfiguration:
			log.Error().Err(err).Msg("configuration error")
			return http.StatusInternalServerError, ErrorResponse{Error: "internal server error"}
		}
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return http.StatusNotFound, ErrorResponse{Error: "resource not found"}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return http.StatusConflict, ErrorResponse{
				Error:   "resource already exists",
				Details: pgErr.Detail,
			}
		case "23503": // foreign_key_violation
			return http.StatusBadRequest, ErrorResponse{
				Error:   "referenced resource does not exist",
				Details: pgErr.Detail,
			}
		case "23514": // check_violation
			return http.StatusBadRequest, ErrorResponse{
				Error:   "constraint violation",
				Details: pgErr.Detail,
			}
		case "23P01": // exclusion_violation
			return http.StatusConflict, ErrorResponse{
				Error:   "overlapping resource",
				Details: pgErr.Detail,
			}
		}
	}

	log.Error().Err(err).Msg("unhandled error")
	return http.StatusInternalServerError, ErrorResponse{Error: "internal server error"}
}

func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last().Err
			status, resp := MapError(err)
			c.JSON(status, resp)
		}
	}
}
