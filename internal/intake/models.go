package intake

// Services offered on the intake form.
var Services = []string{"plumbing", "hvac", "electrical", "general"}

// Form carries the wizard fields. Country selects the dialling prefix used to
// normalise local phone numbers.
type Form struct {
	Service string `json:"service"`
	Urgency string `json:"urgency" validate:"omitempty,oneof=standard emergency"`
	Address string `json:"address"`
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email" validate:"omitempty,email"`
	Country string `json:"country" validate:"omitempty,len=2"`
}

// Payload is posted to every intake webhook.
type Payload struct {
	Source      string  `json:"source"`
	Service     string  `json:"service"`
	Urgency     string  `json:"urgency"`
	Address     string  `json:"address"`
	Name        string  `json:"name"`
	Phone       string  `json:"phone"`
	PhoneRaw    string  `json:"phone_raw"`
	Email       *string `json:"email"`
	ReferenceID string  `json:"reference_id"`
}

func (p Payload) fields() map[string]interface{} {
	out := map[string]interface{}{
		"source":  p.Source,
		"service": p.Service,
		"urgency": p.Urgency,
		"address": p.Address,
		"name":    p.Name,
		"phone":   p.Phone,
	}
	if p.Email != nil {
		out["email"] = *p.Email
	}
	return out
}

type SubmitResult struct {
	ReferenceID  string `json:"reference_id"`
	Step         Step   `json:"step"`
	Progress     int    `json:"progress"`
	Acknowledged int    `json:"acknowledged"`
}

type StepRequest struct {
	Step   Step   `json:"step" validate:"required,oneof=service details contact success"`
	Action string `json:"action" validate:"required,oneof=next back"`
	Form   Form   `json:"form"`
}

type StepResult struct {
	Step     Step `json:"step"`
	Progress int  `json:"progress"`
}
