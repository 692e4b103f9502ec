package form

import (
	"context"
	"errors"
	"sync"

	"orderform-backend/internal/domain"
	"orderform-backend/pkg/logger"
)

// ErrSubmissionInProgress is returned when Submit is called while a previous
// submission of the same form is still pending.
var ErrSubmissionInProgress = errors.New("submission already in progress")

// Transport sends an order to the remote endpoint.
type Transport interface {
	Submit(ctx context.Context, order domain.Order) (*domain.EndpointResponse, error)
}

// Outcome is handed to the Notifier once a submission settles.
type Outcome struct {
	State   domain.SubmissionState
	Order   domain.Order
	Message string // acknowledgment text
	Reason  string // failure reason, empty on success
	Err     error
}

// Notifier receives the acknowledgment. It replaces a blocking alert and must
// not call back into the controller's Submit.
type Notifier func(Outcome)

// Controller runs the order submission workflow for one form instance.
type Controller struct {
	fields    Fields
	button    Button
	transport Transport
	notify    Notifier
	product   string
	idleLabel string

	mu    sync.Mutex
	state domain.SubmissionState
	busy  bool
}

type Option func(*Controller)

// WithNotifier sets the acknowledgment callback.
func WithNotifier(n Notifier) Option {
	return func(c *Controller) { c.notify = n }
}

// WithProduct sets the product sent when Fields.Product is nil or empty.
func WithProduct(product string) Option {
	return func(c *Controller) { c.product = product }
}

func NewController(fields Fields, button Button, transport Transport, opts ...Option) *Controller {
	c := &Controller{
		fields:    fields,
		button:    button,
		transport: transport,
		product:   domain.DefaultProduct,
		idleLabel: button.Label(),
	}
	if c.idleLabel == "" {
		c.idleLabel = domain.LabelPlaceOrder
		button.SetLabel(c.idleLabel)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State reports where the controller is in the submission lifecycle.
func (c *Controller) State() domain.SubmissionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Busy reports whether a submission is pending. While busy the submit button
// stays disabled.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// Submit collects the form, sends it and reports the settled outcome. A
// non-nil error means the submission did not run at all; transport and
// endpoint failures are reported through Outcome.Err.
//
// The submit button is re-enabled and its label restored on every exit path.
func (c *Controller) Submit(ctx context.Context) (Outcome, error) {
	release, err := c.acquire(nil)
	if err != nil {
		return Outcome{State: domain.StateSubmitting}, err
	}
	defer release()

	return c.run(ctx), nil
}

// SubmitWith loads the given values into the form and submits them. The
// values are written only once the guard is held, so the order sent is
// always built from these values.
func (c *Controller) SubmitWith(ctx context.Context, name, mobile, address, product string) (Outcome, error) {
	release, err := c.acquire(func() { c.fill(name, mobile, address, product) })
	if err != nil {
		return Outcome{State: domain.StateSubmitting}, err
	}
	defer release()

	return c.run(ctx), nil
}

func (c *Controller) run(ctx context.Context) Outcome {
	log := logger.WithContext(ctx)
	order := c.collect()

	resp, err := c.transport.Submit(ctx, order)
	if err == nil {
		if resp == nil {
			resp = &domain.EndpointResponse{}
		}
		log.Debug().Str("status", resp.Status).Str("message", resp.Message).Msg("Order endpoint response")
		if !resp.IsSuccess() {
			err = domain.NewProtocolError(resp)
		}
	}

	if err != nil {
		log.Error().Err(err).Str("product", order.Product).Msg("Order submission failed")
		out := Outcome{
			State:   domain.StateError,
			Order:   order,
			Message: FailureMessage(err.Error()),
			Reason:  err.Error(),
			Err:     err,
		}
		c.settle(out)
		return out
	}

	out := Outcome{
		State:   domain.StateSuccess,
		Order:   order,
		Message: SuccessMessage(order.Product),
	}
	c.settle(out)
	c.Reset()
	return out
}

// Fill replaces the field values, as a visitor typing into the form would.
// The mobile value goes through the same sanitizer as the input listener.
func (c *Controller) Fill(name, mobile, address, product string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return ErrSubmissionInProgress
	}
	c.fill(name, mobile, address, product)
	return nil
}

func (c *Controller) fill(name, mobile, address, product string) {
	c.fields.Name.SetValue(name)
	c.OnMobileInput(mobile)
	c.fields.Address.SetValue(address)
	if c.fields.Product != nil && product != "" {
		c.fields.Product.SetValue(product)
	}
}

// Reset clears every field value and its feedback.
func (c *Controller) Reset() {
	for _, f := range []Field{c.fields.Name, c.fields.Mobile, c.fields.Address} {
		f.SetValue("")
		f.SetStatus(domain.FieldUnknown)
	}
	if c.fields.Product != nil {
		c.fields.Product.SetValue(c.product)
	}
}

// OnMobileInput is the mobile input listener: digits only, at most 11.
func (c *Controller) OnMobileInput(raw string) string {
	v := SanitizeMobile(raw)
	c.fields.Mobile.SetValue(v)
	return v
}

// OnBlur recolours a field after focus loss. It never blocks submission.
func (c *Controller) OnBlur(name string) domain.FieldFeedback {
	var (
		f      Field
		status domain.FieldStatus
	)
	switch name {
	case domain.FieldName:
		f = c.fields.Name
		status = ValidateName(f.Value())
	case domain.FieldMobile:
		f = c.fields.Mobile
		status = ValidateMobile(f.Value())
	case domain.FieldAddress:
		f = c.fields.Address
		status = ValidateAddress(f.Value())
	default:
		return domain.NewFieldFeedback("", domain.FieldUnknown)
	}
	f.SetStatus(status)
	return domain.NewFieldFeedback(f.Value(), status)
}

// Feedback runs every blur listener.
func (c *Controller) Feedback() map[string]domain.FieldFeedback {
	return map[string]domain.FieldFeedback{
		domain.FieldName:    c.OnBlur(domain.FieldName),
		domain.FieldMobile:  c.OnBlur(domain.FieldMobile),
		domain.FieldAddress: c.OnBlur(domain.FieldAddress),
	}
}

// acquire enters Submitting and returns the matching release. load, when
// set, runs in the same critical section that takes the guard.
func (c *Controller) acquire(load func()) (func(), error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.busy {
		return nil, ErrSubmissionInProgress
	}
	if load != nil {
		load()
	}
	c.busy = true
	c.state = domain.StateSubmitting
	c.button.SetDisabled(true)
	c.button.SetLabel(domain.LabelSubmitting)

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.button.SetDisabled(false)
		c.button.SetLabel(c.idleLabel)
		c.state = domain.StateIdle
		c.busy = false
	}, nil
}

func (c *Controller) settle(out Outcome) {
	c.mu.Lock()
	c.state = out.State
	c.mu.Unlock()

	if c.notify != nil {
		c.notify(out)
	}
}

func (c *Controller) collect() domain.Order {
	product := c.product
	if c.fields.Product != nil {
		if v := c.fields.Product.Value(); v != "" {
			product = v
		}
	}
	return domain.NewOrder(
		c.fields.Name.Value(),
		c.fields.Mobile.Value(),
		c.fields.Address.Value(),
		product,
	)
}
