// mode.go — обработчик POST /api/v1/mode/transition.
// Смена режима хранилища (rw→ro, ro→rw с confirm).
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	apierrors "github.com/bigkaa/soundboard/media-store/internal/api/errors"
	"github.com/bigkaa/soundboard/media-store/internal/api/generated"
	"github.com/bigkaa/soundboard/media-store/internal/domain/mode"
)

// ModeHandler — обработчик endpoint смены режима.
type ModeHandler struct {
	sm     *mode.StateMachine
	logger *slog.Logger
}

// NewModeHandler создаёт обработчик смены режима.
func NewModeHandler(sm *mode.StateMachine, logger *slog.Logger) *ModeHandler {
	return &ModeHandler{
		sm:     sm,
		logger: logger.With(slog.String("component", "mode_handler")),
	}
}

// TransitionMode обрабатывает POST /api/v1/mode/transition.
func (h *ModeHandler) TransitionMode(w http.ResponseWriter, r *http.Request) {
	var req generated.ModeTransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.ValidationError(w, "Некорректный JSON: "+err.Error())
		return
	}

	targetMode, err := mode.ParseMode(string(req.Mode))
	if err != nil {
		apierrors.ValidationError(w, err.Error())
		return
	}

	confirm := req.Confirm != nil && *req.Confirm
	reason := ""
	if req.Reason != nil {
		reason = *req.Reason
	}

	previousMode := h.sm.CurrentMode()

	if err := h.sm.TransitionTo(targetMode, confirm, reason); err != nil {
		var transErr *mode.TransitionError
		if errors.As(err, &transErr) {
			switch transErr.Code {
			case mode.CodeConfirmationRequired:
				apierrors.ConfirmationRequired(w, transErr.Message)
			default:
				apierrors.InvalidTransition(w, transErr.Message)
			}
			return
		}
		apierrors.InternalError(w, "Ошибка смены режима")
		return
	}

	now := time.Now().UTC()

	h.logger.Info("Режим изменён",
		slog.String("from", string(previousMode)),
		slog.String("to", string(targetMode)),
		slog.String("reason", reason),
	)

	ops := h.sm.AllowedOperations()
	apiOps := make([]string, 0, len(ops))
	for _, op := range ops {
		apiOps = append(apiOps, string(op))
	}

	resp := generated.ModeTransitionResponse{
		PreviousMode:      string(previousMode),
		CurrentMode:       string(targetMode),
		AllowedOperations: apiOps,
		TransitionedAt:    now,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}
