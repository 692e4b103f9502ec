package domain

// --- Shared Types ---

// ClientMeta carries what the HTTP layer knows about the visitor. Used only for
// conversion tracking.
type ClientMeta struct {
	IP        string
	UserAgent string
	SourceURL string
}

// FieldFeedback is the outcome of a single blur listener.
type FieldFeedback struct {
	Value  string      `json:"value"`
	Status FieldStatus `json:"-"`
	Valid  bool        `json:"valid"`
	Color  string      `json:"color"`
}

func NewFieldFeedback(value string, status FieldStatus) FieldFeedback {
	return FieldFeedback{
		Value:  value,
		Status: status,
		Valid:  status == FieldValid,
		Color:  status.BorderColor(),
	}
}

// Response standardizes API responses.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}
