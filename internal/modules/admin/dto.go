package admin

type OverrideRequest struct {
	Status     string `json:"status" binding:"required"`
	Note       string `json:"note" binding:"required"`
	OperatorID string `json:"operator_id" binding:"required"`
}
