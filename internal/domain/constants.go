package domain

// Form field names, shared by the landing page and the spreadsheet endpoint.
const (
	FieldName    = "name"
	FieldMobile  = "mobile"
	FieldAddress = "address"
	FieldProduct = "product"
)

// Endpoint statuses
const (
	EndpointStatusSuccess = "success"
)

// Submit button labels
const (
	LabelPlaceOrder = "Place Order Now"
	LabelSubmitting = "Submitting Order..."
)

// Field border colours
const (
	BorderColorValid   = "#48bb78"
	BorderColorInvalid = "#f56565"
)

// Validation thresholds
const (
	MinNameLength    = 3
	MinAddressLength = 10
	MobileDigits     = 11
)

const (
	DefaultProduct       = "YN Rice Cooker 1.8L"
	DefaultFailureReason = "Unknown error occurred"
)

// List Exports for API
var SubmissionStates = []string{
	StateIdle.String(),
	StateSubmitting.String(),
	StateSuccess.String(),
	StateError.String(),
}
