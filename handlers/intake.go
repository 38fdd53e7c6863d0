package handlers

import (
	"net/http"

	"github.com/prog-Noon/rakaizfoundation/config"
	"github.com/prog-Noon/rakaizfoundation/logging"
	"github.com/prog-Noon/rakaizfoundation/services"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// intakeRequest is a public form submission, as JSON or as an urlencoded form
type intakeRequest struct {
	services.IntakeInput
	TurnstileToken string `json:"turnstile_token" form:"cf-turnstile-response"`
}

// IntakeResponse acknowledges a stored submission
type IntakeResponse struct {
	ID      string            `json:"id"`
	Kind    services.FormKind `json:"kind"`
	Status  string            `json:"status,omitempty"`
	Message string            `json:"message"`
}

var intakeMessages = map[services.FormKind]string{
	services.FormContact:        "Your message has been sent. We will get back to you soon.",
	services.FormServiceRequest: "Your request has been received. We will contact you soon.",
	services.FormAppointment:    "Your appointment request has been received. We will confirm it soon.",
}

// SubmitFormHandler stores a visitor submission of the given kind
func SubmitFormHandler(intake *services.IntakeService, kind services.FormKind) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req intakeRequest
		if err := c.Bind(&req); err != nil {
			return badRequest("Invalid form data")
		}

		if cfg, ok := c.Get("config").(*config.Config); ok && cfg.TurnstileEnabled() {
			if _, err := services.VerifyTurnstileToken(c.Request().Context(), req.TurnstileToken, cfg.TurnstileSecretKey, c.RealIP()); err != nil {
				logging.Log.Info("Turnstile verification failed",
					zap.String("kind", string(kind)),
					zap.String("ip", c.RealIP()),
					zap.Error(err))
				verr := services.NewValidationError()
				verr.Add("turnstile_token", "Please complete the security check.")
				return serviceError(verr, "")
			}
		}

		input := req.IntakeInput
		input.IPAddress = c.RealIP()
		input.UserAgent = c.Request().UserAgent()

		result, err := intake.Submit(c.Request().Context(), kind, input)
		if err != nil {
			return serviceError(err, "Failed to submit the form. Please try again.")
		}

		resp := IntakeResponse{Kind: result.Kind, Message: intakeMessages[kind]}
		switch {
		case result.ContactMessage != nil:
			resp.ID = result.ContactMessage.ID
		case result.ServiceRequest != nil:
			resp.ID = result.ServiceRequest.ID
			resp.Status = result.ServiceRequest.Status
		}
		return c.JSON(http.StatusCreated, resp)
	}
}
