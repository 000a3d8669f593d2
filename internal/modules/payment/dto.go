package payment

type RecordPaymentRequest struct {
	Amount        int64  `json:"amount" binding:"required"`
	Status        string `json:"status" binding:"required"`
	FailureReason string `json:"failure_reason"`
}
