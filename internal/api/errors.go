package api

import (
	"errors"
	"net/http"

	"duck-sheets/internal/domain"
)

// httpStatusFromDomainError maps domain errors to HTTP status codes.
func httpStatusFromDomainError(err error) int {
	var notFound *domain.NotFoundError
	var validation *domain.ValidationError
	var conflict *domain.ConflictError
	var naming *domain.NamingConflictError
	var unavailable *domain.SourceUnavailableError
	var emptySchema *domain.EmptySchemaError

	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &conflict), errors.As(err, &naming):
		return http.StatusConflict
	case errors.As(err, &unavailable), errors.As(err, &emptySchema):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
