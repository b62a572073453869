package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"pqr_flow_app_go/db"
	"pqr_flow_app_go/services"

	"github.com/labstack/echo/v4"
)

type passwordRequest struct {
	Password string `json:"password"`
}

type tokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SetupHandler performs the first-run configuration and opens a session
func SetupHandler(c echo.Context) error {
	var req passwordRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("Invalid request body")
	}
	if req.Password == "" {
		return badRequest("La contraseña es obligatoria")
	}

	if _, err := services.Setup(db.DB, req.Password); err != nil {
		return serviceError(err)
	}

	token, expiresAt, err := services.Login(db.DB, req.Password, getConfig(c).JWTSecret)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusCreated, tokenResponse{Token: token, ExpiresAt: expiresAt})
}

// SetupStatusHandler tells the client whether first-run setup is still pending
func SetupStatusHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]bool{"setup_done": services.IsSetupDone(db.DB)})
}

// LoginHandler exchanges the office password for an access token
func LoginHandler(c echo.Context) error {
	var req passwordRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("Invalid request body")
	}
	if req.Password == "" {
		return badRequest("La contraseña es obligatoria")
	}

	token, expiresAt, err := services.Login(db.DB, req.Password, getConfig(c).JWTSecret)
	if err != nil {
		if errors.Is(err, services.ErrUnauthorized) {
			services.Monitor.TrackFailedLogin(c.RealIP())
			return echo.NewHTTPError(http.StatusUnauthorized, "Credenciales incorrectas")
		}
		return serviceError(err)
	}
	services.Monitor.ResetFailedLogins(c.RealIP())
	return c.JSON(http.StatusOK, tokenResponse{Token: token, ExpiresAt: expiresAt})
}

// ChangePasswordHandler replaces the office password
func ChangePasswordHandler(c echo.Context) error {
	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := c.Bind(&req); err != nil {
		return badRequest("Invalid request body")
	}
	if err := services.ChangePassword(db.DB, req.CurrentPassword, req.NewPassword); err != nil {
		return serviceError(err)
	}
	return messageResponse(c, http.StatusOK, "Contraseña actualizada")
}

// ForgotPasswordHandler sends a recovery link when the address is a configured
// recovery email. The response is the same either way.
func ForgotPasswordHandler(c echo.Context) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.Bind(&req); err != nil {
		return badRequest("Invalid request body")
	}
	if req.Email == "" {
		return badRequest("El correo es obligatorio")
	}

	token, err := services.RequestRecovery(db.DB, req.Email)
	if err != nil {
		return serviceError(err)
	}

	if token != nil {
		appCfg := getConfig(c)
		office := ""
		if sysCfg, err := services.GetSystemConfig(db.DB); err == nil {
			office = sysCfg.DisplayName()
		}
		email, err := services.BuildRecoveryEmail(c.Request().Context(), token.Email, office, services.RecoveryLink(appCfg.AppURL, token.Token))
		if err != nil {
			log.Printf("[EMAIL] could not build recovery email: %v", err)
		} else {
			services.SendEmailAsync(appCfg, email)
		}
	}

	return messageResponse(c, http.StatusOK, "Si el correo está registrado, recibirá un enlace de recuperación")
}

// VerifyTokenHandler checks a recovery token before the reset form is shown
func VerifyTokenHandler(c echo.Context) error {
	var req struct {
		Token string `json:"token"`
	}
	if err := c.Bind(&req); err != nil {
		return badRequest("Invalid request body")
	}
	email, err := services.VerifyRecoveryToken(db.DB, req.Token)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"valid": true, "email": email})
}

// ResetPasswordHandler sets a new password with a recovery token
func ResetPasswordHandler(c echo.Context) error {
	var req struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return badRequest("Invalid request body")
	}
	if err := services.ResetPassword(db.DB, req.Token, req.Password); err != nil {
		return serviceError(err)
	}
	return messageResponse(c, http.StatusOK, "Contraseña restablecida")
}
