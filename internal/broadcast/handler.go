package broadcast

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"sms-relay/internal/model"
	"sms-relay/internal/store"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	dispatcher *Dispatcher
	store      store.Store
	logger     *slog.Logger
}

func NewHandler(dispatcher *Dispatcher, st store.Store, logger *slog.Logger) *Handler {
	return &Handler{dispatcher: dispatcher, store: st, logger: logger}
}

// SendAlert handles the operator broadcast trigger.
//
// @Summary      Broadcast a message to all subscribers
// @Accept       json
// @Produce      json
// @Param        request  body  model.BroadcastRequest  true  "broadcast payload"
// @Success      200  {object}  map[string]any
// @Failure      400  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /send-alert [post]
func (h *Handler) SendAlert(c echo.Context) error {
	var req model.BroadcastRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Message required (max 200 chars)"})
	}

	result, err := h.dispatcher.Broadcast(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidMessage) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Message required (max 200 chars)"})
		}
		h.logger.Error("broadcast failed",
			"broadcast_id", result.ID,
			"attempted", result.Attempted,
			"failed", result.Failed,
			"err", err,
		)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to send messages"})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"sentTo":  result.Attempted,
	})
}

// SubscriberCount reports how many numbers are currently subscribed.
//
// @Summary      Current subscriber count
// @Produce      json
// @Success      200  {object}  map[string]int
// @Router       /subscribers/count [get]
func (h *Handler) SubscriberCount(c echo.Context) error {
	n, err := h.store.Count(c.Request().Context())
	if err != nil {
		h.logger.Error("subscriber count failed", "err", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, map[string]int{"count": n})
}
