package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kavinrs01/task-manager-server/internal/api/middleware"
	"github.com/kavinrs01/task-manager-server/internal/domain"
	"github.com/kavinrs01/task-manager-server/internal/domain/taskpolicy"
)

// getActor extracts the authenticated actor from the request context,
// writing a 401 response when it is absent. The auth middleware is
// responsible for placing it there.
func getActor(w http.ResponseWriter, r *http.Request) (taskpolicy.Actor, bool) {
	actor, ok := middleware.GetActor(r)
	if !ok || actor.ID == uuid.Nil {
		HandleAPIError(w, r, domain.ErrUnauthorized, "Authentication required")
		return taskpolicy.Actor{}, false
	}
	return actor, true
}

// getPathUUID extracts and parses a UUID path parameter.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return uuid.Nil, domain.NewValidationError(paramName, "is required", domain.ErrValidation)
	}

	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(paramName, "has invalid format", domain.ErrInvalidID)
	}

	return id, nil
}

// getActorAndPathUUID extracts both the actor and a UUID path
// parameter, writing the error response itself when either fails.
func getActorAndPathUUID(
	w http.ResponseWriter,
	r *http.Request,
	paramName string,
) (taskpolicy.Actor, uuid.UUID, bool) {
	actor, ok := getActor(w, r)
	if !ok {
		return taskpolicy.Actor{}, uuid.Nil, false
	}

	id, err := getPathUUID(r, paramName)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return taskpolicy.Actor{}, uuid.Nil, false
	}

	return actor, id, true
}
