package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"orderform-backend/internal/domain"
	"orderform-backend/internal/form"
	"orderform-backend/internal/infrastructure/sheets"
	"orderform-backend/pkg/cache"
	"orderform-backend/pkg/logger"
)

// LeadTracker reports placed orders to an ads platform.
type LeadTracker interface {
	SendLeadEvent(ctx context.Context, order domain.Order, eventID string, meta domain.ClientMeta)
}

// OrderInput is what a visitor typed into the landing page form.
type OrderInput struct {
	Name    string
	Mobile  string
	Address string
	Product string
}

// Session is one visitor's form instance.
type Session struct {
	ID         string
	Controller *form.Controller
	Button     *form.SubmitButton

	mu   sync.Mutex
	last *form.Outcome
}

// SessionView is the read-only state exposed over HTTP.
type SessionView struct {
	SessionID      string `json:"sessionId"`
	State          string `json:"state"`
	ButtonLabel    string `json:"buttonLabel"`
	ButtonDisabled bool   `json:"buttonDisabled"`
	LastMessage    string `json:"lastMessage,omitempty"`
}

func (s *Session) View() SessionView {
	v := SessionView{
		SessionID:      s.ID,
		State:          s.Controller.State().String(),
		ButtonLabel:    s.Button.Label(),
		ButtonDisabled: s.Button.Disabled(),
	}
	s.mu.Lock()
	if s.last != nil {
		v.LastMessage = s.last.Message
	}
	s.mu.Unlock()
	return v
}

func (s *Session) acknowledge(out form.Outcome) {
	s.mu.Lock()
	s.last = &out
	s.mu.Unlock()
}

type OrderUsecase struct {
	sessions   cache.CacheService
	transport  form.Transport
	tracker    LeadTracker
	product    string
	sessionTTL time.Duration

	// Sessions with a submission in flight. They outlive cache expiry so a
	// slow endpoint cannot hand the same visitor a second, idle form.
	mu     sync.Mutex
	pinned map[string]*pin
}

type pin struct {
	session *Session
	refs    int
}

func NewOrderUsecase(sessions cache.CacheService, transport form.Transport, tracker LeadTracker, product string, sessionTTL time.Duration) *OrderUsecase {
	if product == "" {
		product = domain.DefaultProduct
	}
	return &OrderUsecase{
		sessions:   sessions,
		transport:  transport,
		tracker:    tracker,
		product:    product,
		sessionTTL: sessionTTL,
		pinned:     make(map[string]*pin),
	}
}

// Session returns the form instance for id, creating it on first use. Every
// call extends the session's lifetime.
func (u *OrderUsecase) Session(id string) *Session {
	key := "session:" + id
	if v, ok := u.sessions.Get(key); ok {
		s := v.(*Session)
		u.sessions.Set(key, s, u.sessionTTL)
		return s
	}

	u.mu.Lock()
	p, ok := u.pinned[id]
	u.mu.Unlock()
	if ok {
		u.sessions.Set(key, p.session, u.sessionTTL)
		return p.session
	}

	s := u.newSession(id)
	if !u.sessions.Add(key, s, u.sessionTTL) {
		// Lost the race with a concurrent request for the same session.
		if v, ok := u.sessions.Get(key); ok {
			return v.(*Session)
		}
		u.sessions.Set(key, s, u.sessionTTL)
	}
	return s
}

func (u *OrderUsecase) newSession(id string) *Session {
	s := &Session{
		ID:     id,
		Button: form.NewSubmitButton(domain.LabelPlaceOrder),
	}
	s.Controller = form.NewController(
		form.Fields{
			Name:    form.NewInput(""),
			Mobile:  form.NewInput(""),
			Address: form.NewInput(""),
			Product: form.NewInput(u.product),
		},
		s.Button,
		u.transport,
		form.WithProduct(u.product),
		form.WithNotifier(s.acknowledge),
	)
	return s
}

// Sessions reports how many form sessions are held, expired ones not yet
// cleaned up included.
func (u *OrderUsecase) Sessions() int {
	return u.sessions.Count()
}

// hold keeps s reachable by id until the returned func is called.
func (u *OrderUsecase) hold(s *Session) func() {
	u.mu.Lock()
	p, ok := u.pinned[s.ID]
	if !ok {
		p = &pin{session: s}
		u.pinned[s.ID] = p
	}
	p.refs++
	u.mu.Unlock()

	return func() {
		u.mu.Lock()
		defer u.mu.Unlock()
		if p.refs--; p.refs == 0 {
			delete(u.pinned, s.ID)
		}
	}
}

// PlaceOrder loads the visitor's input into their form and submits it.
// form.ErrSubmissionInProgress is returned while an earlier submission from
// the same session is pending.
func (u *OrderUsecase) PlaceOrder(ctx context.Context, sessionID string, in OrderInput, meta domain.ClientMeta) (form.Outcome, error) {
	s := u.Session(sessionID)
	defer u.hold(s)()

	start := time.Now()
	out, err := s.Controller.SubmitWith(ctx, in.Name, in.Mobile, in.Address, in.Product)
	if err != nil {
		return out, err
	}
	logger.OrderOutcome(ctx, out.State.String(), out.Order.Product, time.Since(start), out.Err)

	if out.State == domain.StateSuccess && u.tracker != nil {
		u.tracker.SendLeadEvent(ctx, out.Order, uuid.New().String(), meta)
	} else if sheets.IsTimeout(out.Err) {
		logger.WithContext(ctx).Warn().Str("session_id", sessionID).Msg("Order endpoint timed out")
	}
	return out, nil
}

// Validate runs the blur listeners against the given input. It never writes
// to the session's form, so it cannot change what a pending PlaceOrder sends.
// The result is cosmetic and never blocks PlaceOrder.
func (u *OrderUsecase) Validate(sessionID string, in OrderInput) map[string]domain.FieldFeedback {
	u.Session(sessionID)

	mobile := form.SanitizeMobile(in.Mobile)
	return map[string]domain.FieldFeedback{
		domain.FieldName:    domain.NewFieldFeedback(in.Name, form.ValidateName(in.Name)),
		domain.FieldMobile:  domain.NewFieldFeedback(mobile, form.ValidateMobile(mobile)),
		domain.FieldAddress: domain.NewFieldFeedback(in.Address, form.ValidateAddress(in.Address)),
	}
}

// State returns the session's current form state.
func (u *OrderUsecase) State(sessionID string) SessionView {
	return u.Session(sessionID).View()
}
