package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-backoffice/client"
	"github.com/yeremiapane/restaurant-backoffice/history"
	"github.com/yeremiapane/restaurant-backoffice/liveboard"
	"github.com/yeremiapane/restaurant-backoffice/middlewares"
	"github.com/yeremiapane/restaurant-backoffice/reorder"
	"github.com/yeremiapane/restaurant-backoffice/services"
	"github.com/yeremiapane/restaurant-backoffice/session"
	"github.com/yeremiapane/restaurant-backoffice/utils"
	"github.com/yeremiapane/restaurant-backoffice/validation"
)

const msgConnection = "Error de conexión"

// respondFailure maps an error from the service layer to a response. message
// is the toast shown for failures that have no better wording.
func respondFailure(c *gin.Context, registry *session.Registry, err error, message string) {
	_ = c.Error(err)

	var fieldErrs validation.FieldErrors
	var apiErr *client.APIError
	switch {
	case client.IsUnauthorized(err):
		middlewares.SessionExpired(c, registry)
	case errors.As(err, &fieldErrs):
		utils.RespondErrorData(c, http.StatusUnprocessableEntity, "Revisa los campos marcados", fieldErrs)
	case errors.Is(err, services.ErrBadPayload), errors.Is(err, history.ErrInvalidQuery):
		utils.RespondErrorData(c, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, client.ErrNotFound), errors.Is(err, reorder.ErrUnknownItem):
		utils.RespondErrorData(c, http.StatusNotFound, message, nil)
	case errors.Is(err, liveboard.ErrInvalidTransition):
		utils.RespondErrorData(c, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, client.ErrTransport):
		utils.RespondErrorData(c, http.StatusBadGateway, msgConnection, nil)
	case errors.As(err, &apiErr), errors.Is(err, client.ErrDecode):
		utils.RespondErrorData(c, http.StatusBadGateway, message, nil)
	default:
		utils.Error().WithError(err).Error(message)
		utils.RespondErrorData(c, http.StatusInternalServerError, message, nil)
	}
}
