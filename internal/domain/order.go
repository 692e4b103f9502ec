package domain

import "strings"

// --- Order Entities ---

// Order is built fresh from the form fields at submit time.
type Order struct {
	Name    string `json:"name"`
	Mobile  string `json:"mobile"`
	Address string `json:"address"`
	Product string `json:"product"`
}

// NewOrder trims the free-text fields. Product is taken as-is since it comes
// from a fixed selection.
func NewOrder(name, mobile, address, product string) Order {
	return Order{
		Name:    strings.TrimSpace(name),
		Mobile:  strings.TrimSpace(mobile),
		Address: strings.TrimSpace(address),
		Product: product,
	}
}

// FormFields returns the multipart field names and values in wire order.
func (o Order) FormFields() [][2]string {
	return [][2]string{
		{FieldName, o.Name},
		{FieldMobile, o.Mobile},
		{FieldAddress, o.Address},
		{FieldProduct, o.Product},
	}
}

// EndpointResponse is the JSON body returned by the spreadsheet endpoint.
type EndpointResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// IsSuccess reports whether the endpoint accepted the order.
func (r *EndpointResponse) IsSuccess() bool {
	return r != nil && r.Status == EndpointStatusSuccess
}

// --- Submission State ---

type SubmissionState int

const (
	StateIdle SubmissionState = iota
	StateSubmitting
	StateSuccess
	StateError
)

func (s SubmissionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	case StateSuccess:
		return "success"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// --- Field Feedback ---

type FieldStatus int

const (
	FieldUnknown FieldStatus = iota
	FieldValid
	FieldInvalid
)

func (s FieldStatus) String() string {
	switch s {
	case FieldValid:
		return "valid"
	case FieldInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// BorderColor is the colour the landing page paints the field border with.
func (s FieldStatus) BorderColor() string {
	switch s {
	case FieldValid:
		return BorderColorValid
	case FieldInvalid:
		return BorderColorInvalid
	default:
		return ""
	}
}
