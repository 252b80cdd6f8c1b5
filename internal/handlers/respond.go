package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pulse-social/pulse-social/internal/apperrors"
	"github.com/pulse-social/pulse-social/internal/middleware"
)

type errorResponse struct {
	Error string `json:"error"`
}

// abortWithError maps the service error taxonomy onto HTTP statuses.
// Conflicts are business outcomes (409), never 5xx; store failures stay
// generic.
func abortWithError(c *gin.Context, err error) {
	switch apperrors.KindOf(err) {
	case apperrors.KindValidation, apperrors.KindInvalidOperation:
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	case apperrors.KindConflict:
		c.JSON(http.StatusConflict, errorResponse{Error: err.Error()})
	case apperrors.KindNotFound:
		c.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

// currentUserID parses the verified id the auth middleware attached.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	raw := middleware.GetUserID(c)
	if raw == "" {
		c.JSON(http.StatusUnauthorized, errorResponse{Error: "user not authenticated"})
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusUnauthorized, errorResponse{Error: "invalid user identity"})
		return uuid.Nil, false
	}
	return id, true
}

func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

// pageParams reads page/limit query values; non-numeric or missing input
// falls back to zero and is normalized to defaults by the service.
func pageParams(c *gin.Context) (int, int) {
	query := struct {
		Page  int `form:"page"`
		Limit int `form:"limit"`
	}{}
	_ = c.ShouldBindQuery(&query)
	return query.Page, query.Limit
}
