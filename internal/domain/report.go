package domain

// OnThisDayRequest is the body of POST /api/ai/on-this-day.
type OnThisDayRequest struct {
	Name string `json:"name" validate:"required,max=100"`
	Date string `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	TZ   string `json:"tz,omitempty" validate:"omitempty,timezone"`
}

type OnThisDayResponse struct {
	Report string `json:"report"`
	Date   string `json:"date"`
}
