package v1

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"orderform-backend/internal/domain"
	"orderform-backend/internal/form"
	"orderform-backend/internal/usecase"
	"orderform-backend/pkg/logger"
	"orderform-backend/pkg/utils"
)

const (
	SessionHeader = "X-Session-ID"
	SessionCookie = "sid"

	maxFormMemory = 1 << 20
)

type OrderHandler struct {
	orderUC    *usecase.OrderUsecase
	sessionTTL time.Duration
}

func NewOrderHandler(uc *usecase.OrderUsecase, sessionTTL time.Duration) *OrderHandler {
	return &OrderHandler{
		orderUC:    uc,
		sessionTTL: sessionTTL,
	}
}

type orderResult struct {
	State   string       `json:"state"`
	Message string       `json:"message"`
	Reason  string       `json:"reason,omitempty"`
	Order   domain.Order `json:"order"`
}

// POST /api/v1/orders
func (h *OrderHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	in, err := parseOrderInput(r)
	if err != nil {
		logger.WithContext(r.Context()).Warn().Err(err).Msg("PlaceOrder: invalid form body")
		utils.WriteError(w, http.StatusBadRequest, "Invalid form data")
		return
	}

	sid := h.sessionID(w, r)
	meta := domain.ClientMeta{
		IP:        utils.ClientIP(r),
		UserAgent: r.UserAgent(),
		SourceURL: r.Referer(),
	}

	out, err := h.orderUC.PlaceOrder(r.Context(), sid, in, meta)
	if err != nil {
		if errors.Is(err, form.ErrSubmissionInProgress) {
			utils.WriteError(w, http.StatusConflict, err.Error())
			return
		}
		utils.WriteError(w, http.StatusInternalServerError, "Failed to place order")
		return
	}

	res := orderResult{
		State:   out.State.String(),
		Message: out.Message,
		Reason:  out.Reason,
		Order:   out.Order,
	}
	if out.State != domain.StateSuccess {
		utils.WriteJSON(w, http.StatusBadGateway, domain.Response{Success: false, Message: out.Reason, Data: res})
		return
	}
	utils.WriteJSON(w, http.StatusOK, domain.Response{Success: true, Message: "Order placed", Data: res})
}

// POST /api/v1/orders/validate
func (h *OrderHandler) Validate(w http.ResponseWriter, r *http.Request) {
	in, err := parseOrderInput(r)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid form data")
		return
	}

	feedback := h.orderUC.Validate(h.sessionID(w, r), in)
	utils.WriteJSON(w, http.StatusOK, domain.Response{Success: true, Data: feedback})
}

// GET /api/v1/orders/state
func (h *OrderHandler) GetState(w http.ResponseWriter, r *http.Request) {
	view := h.orderUC.State(h.sessionID(w, r))
	utils.WriteJSON(w, http.StatusOK, domain.Response{Success: true, Data: view})
}

// sessionID resolves the form session from the header or cookie, issuing a
// new one when the visitor has none.
func (h *OrderHandler) sessionID(w http.ResponseWriter, r *http.Request) string {
	if id := r.Header.Get(SessionHeader); id != "" {
		return id
	}
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value
	}

	id := uuid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int(h.sessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	w.Header().Set(SessionHeader, id)
	return id
}

// parseOrderInput accepts the same multipart body the landing page sends, or
// a urlencoded one.
func parseOrderInput(r *http.Request) (usecase.OrderInput, error) {
	if err := r.ParseMultipartForm(maxFormMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return usecase.OrderInput{}, err
	}
	return usecase.OrderInput{
		Name:    r.PostFormValue(domain.FieldName),
		Mobile:  r.PostFormValue(domain.FieldMobile),
		Address: r.PostFormValue(domain.FieldAddress),
		Product: r.PostFormValue(domain.FieldProduct),
	}, nil
}
