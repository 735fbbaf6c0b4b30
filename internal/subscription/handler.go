package subscription

import (
	"log/slog"
	"net/http"

	"sms-relay/internal/model"

	"github.com/labstack/echo/v4"
)

// twimlEmpty is the empty TwiML document Twilio expects on every webhook
// response, success or not. Anything else triggers provider-side retries.
const twimlEmpty = "<Response></Response>"

type Handler struct {
	svc    *Service
	logger *slog.Logger
}

func NewHandler(svc *Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Webhook handles the inbound SMS webhook.
//
// @Summary      Twilio inbound SMS webhook
// @Description  Drives the subscribe/unsubscribe state machine from inbound messages.
// @Accept       x-www-form-urlencoded
// @Produce      xml
// @Param        From  formData  string  true   "sender phone number"
// @Param        Body  formData  string  false  "message text"
// @Success      200  {string}  string  "<Response></Response>"
// @Failure      500  {string}  string  "<Response></Response>"
// @Router       /twilio-webhook [post]
func (h *Handler) Webhook(c echo.Context) error {
	evt := model.InboundEvent{
		From: c.FormValue("From"),
		Body: c.FormValue("Body"),
	}

	outcome, err := h.svc.HandleInbound(c.Request().Context(), evt)
	if err != nil {
		// Internal failures are logged, never surfaced to the provider.
		h.logger.Error("inbound handling failed", "from", evt.From, "outcome", outcome, "err", err)
		return c.Blob(http.StatusInternalServerError, echo.MIMETextXML, []byte(twimlEmpty))
	}

	return c.Blob(http.StatusOK, echo.MIMETextXML, []byte(twimlEmpty))
}
