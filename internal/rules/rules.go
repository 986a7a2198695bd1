// Package rules holds the shop's ordering and refund policies as pure
// functions over already-parsed times.
package rules

import (
	"time"

	"github.com/yexhin/cookie-customer-service/internal/timeutil"
)

// Delivery window and lead-time policy.
const (
	OpeningHour     = 10
	ClosingHour     = 21
	MinAdvanceHours = 4
	RefundWindowHrs = 3
)

const (
	MsgOrderAccepted = "I saved your order. Cookies will come to your way right away with all our love (ෆ˙ᵕ˙ෆ)♡."
	MsgOutsideHours  = "Sorry, orders must be placed between 10:00 and 21:00."
	MsgTooLate       = "Sorry. Since we would like to present you our qualified cookies, the orders have to be placed at least 4 hours in advance ( •̯́ ^ •̯̀)."
	MsgRefundOK      = "Refund approved."
	MsgRefundDenied  = "Refund denied for order: cancellation too late."
)

// Result is the outcome of the order validation rule.
type Result struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
}

// ValidateOrder decides whether a delivery time is acceptable given the
// placement time. The hour-window check runs before the advance-notice
// check; a delivery at an invalid hour is rejected for that reason even
// when it is also too soon.
func ValidateOrder(purchased, delivery time.Time) Result {
	if h := delivery.Hour(); h < OpeningHour || h >= ClosingHour {
		return Result{Valid: false, Message: MsgOutsideHours}
	}
	if timeutil.HoursBetween(purchased, delivery) < MinAdvanceHours {
		return Result{Valid: false, Message: MsgTooLate}
	}
	return Result{Valid: true, Message: MsgOrderAccepted}
}

// Refund is the outcome of the refund eligibility rule.
type Refund struct {
	Eligible bool   `json:"eligible"`
	Message  string `json:"message"`
}

// CheckRefund grants a refund when at least three hours remain before
// the delivery time. The boundary is inclusive.
func CheckRefund(now, delivery time.Time) Refund {
	if timeutil.HoursBetween(now, delivery) >= RefundWindowHrs {
		return Refund{Eligible: true, Message: MsgRefundOK}
	}
	return Refund{Eligible: false, Message: MsgRefundDenied}
}
