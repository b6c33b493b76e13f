package dto

// ReasonDTO carries an optional free-text reason for a transition.
type ReasonDTO struct {
	Motivo *string `json:"motivo" validate:"omitempty,max=1000"`
}
