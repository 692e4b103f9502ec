package form

import (
	"sync"

	"orderform-backend/internal/domain"
)

// Field is a single named input of the order form.
type Field interface {
	Value() string
	SetValue(v string)
	SetStatus(s domain.FieldStatus)
}

// Button is the submit control.
type Button interface {
	Label() string
	SetLabel(label string)
	Disabled() bool
	SetDisabled(disabled bool)
}

// Fields groups the inputs the controller reads on submit. Product may be nil,
// in which case the controller's fixed product is sent.
type Fields struct {
	Name    Field
	Mobile  Field
	Address Field
	Product Field
}

// Input is an in-memory Field, safe for concurrent use.
type Input struct {
	mu     sync.RWMutex
	value  string
	status domain.FieldStatus
}

func NewInput(value string) *Input {
	return &Input{value: value}
}

func (i *Input) Value() string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.value
}

func (i *Input) SetValue(v string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.value = v
}

func (i *Input) Status() domain.FieldStatus {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.status
}

func (i *Input) SetStatus(s domain.FieldStatus) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.status = s
}

// SubmitButton is an in-memory Button, safe for concurrent use.
type SubmitButton struct {
	mu       sync.RWMutex
	label    string
	disabled bool
}

func NewSubmitButton(label string) *SubmitButton {
	return &SubmitButton{label: label}
}

func (b *SubmitButton) Label() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.label
}

func (b *SubmitButton) SetLabel(label string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.label = label
}

func (b *SubmitButton) Disabled() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.disabled
}

func (b *SubmitButton) SetDisabled(disabled bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.disabled = disabled
}
