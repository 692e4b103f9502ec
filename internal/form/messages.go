package form

import "fmt"

// SuccessMessage is the acknowledgment shown after the endpoint accepts an order.
func SuccessMessage(product string) string {
	return fmt.Sprintf("✅ Order Placed Successfully!\n\n"+
		"Thank you for your order. Our team will contact you shortly to confirm your delivery details.\n\n"+
		"Your %s will be delivered soon!", product)
}

// FailureMessage wraps the failure reason for the user.
func FailureMessage(reason string) string {
	return fmt.Sprintf("❌ Order Submission Failed\n\n%s\n\nPlease try again or contact us directly.", reason)
}
