package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-backoffice/middlewares"
	"github.com/yeremiapane/restaurant-backoffice/models"
	"github.com/yeremiapane/restaurant-backoffice/session"
	"github.com/yeremiapane/restaurant-backoffice/utils"
)

type AuthController struct {
	Registry *session.Registry
}

func NewAuthController(registry *session.Registry) *AuthController {
	return &AuthController{Registry: registry}
}

type loginData struct {
	User    *models.User `json:"user,omitempty"`
	Token   string       `json:"token,omitempty"`
	Message string       `json:"message,omitempty"`
}

// Login authenticates against the backend and hands its session cookie to the
// browser. Failures answer {error: message} with the text for the login form.
func (ac *AuthController) Login(c *gin.Context) {
	var input models.LoginRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondErrorData(c, http.StatusBadRequest, "Ingresa tu correo y contraseña", nil)
		return
	}

	gate, resp, err := ac.Registry.Login(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		var loginErr *session.LoginError
		if !errors.As(err, &loginErr) {
			respondFailure(c, ac.Registry, err, "Error al iniciar sesión")
			return
		}
		utils.Info().WithField("email", input.Email).WithError(loginErr.Err).Info("login rejected")
		utils.RespondErrorData(c, http.StatusUnauthorized, loginErr.Message, nil)
		return
	}

	for _, cookie := range resp.Cookies {
		cookie.Domain = ""
		http.SetCookie(c.Writer, cookie)
	}

	utils.Info().WithField("email", input.Email).Info("login successful")
	utils.RespondJSON(c, http.StatusOK, "Inicio de sesión exitoso", loginData{
		User:    gate.User(),
		Token:   gate.Token(),
		Message: resp.Result.Message,
	})
}

func (ac *AuthController) Logout(c *gin.Context) {
	ac.Registry.Logout(middlewares.RequestCredentials(c))
	http.SetCookie(c.Writer, session.ExpiredCookie())
	utils.RespondNotice(c, http.StatusOK, models.SuccessNotice("Sesión cerrada"), gin.H{"redirect": session.LoginPath})
}

// Verify reports whether the browser still holds a live session.
func (ac *AuthController) Verify(c *gin.Context) {
	gate, ok := ac.Registry.Authorize(c.Request.Context(), middlewares.RequestCredentials(c))
	if !ok {
		utils.RespondRedirect(c, http.StatusUnauthorized, "No autenticado", session.LoginPath)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Autenticado", gin.H{
		"state": gate.State().String(),
		"user":  gate.User(),
	})
}
