package domain

import "fmt"

type Laptop struct {
	ID         int64   `json:"id"`
	Brand      string  `json:"brand"`
	Model      string  `json:"model"`
	CPU        string  `json:"cpu"`
	RAM        string  `json:"ram"`
	Storage    string  `json:"storage"`
	ImageURL   string  `json:"image_url"`
	DailyPrice float64 `json:"daily_price"`
	Available  bool    `json:"available"`
}

type CreateLaptopRequest struct {
	Brand      string  `json:"brand"`
	Model      string  `json:"model"`
	CPU        string  `json:"cpu"`
	RAM        string  `json:"ram"`
	Storage    string  `json:"storage"`
	ImageURL   string  `json:"image_url"`
	DailyPrice float64 `json:"daily_price"`
}

func (r *CreateLaptopRequest) Validate() error {
	if r.Brand == "" {
		return fmt.Errorf("brand is required")
	}
	if r.Model == "" {
		return fmt.Errorf("model is required")
	}
	if r.DailyPrice <= 0 {
		return fmt.Errorf("daily_price must be greater than zero")
	}
	return nil
}
