package intake

import (
	"fmt"
	"strings"

	pkgerrors "nexusq/pkg/errors"
)

type Step string

const (
	StepService Step = "service"
	StepDetails Step = "details"
	StepContact Step = "contact"
	StepSuccess Step = "success"
)

var progress = map[Step]int{
	StepService: 25,
	StepDetails: 50,
	StepContact: 75,
	StepSuccess: 100,
}

func (s Step) Progress() int {
	return progress[s]
}

func KnownService(s string) bool {
	for _, known := range Services {
		if s == known {
			return true
		}
	}
	return false
}

func fieldError(field, msg string) error {
	return pkgerrors.ErrValidation.WithMessage(msg).WithDetail("field", field)
}

// Next moves the wizard forward once the fields of the current step are filled in.
func Next(current Step, form Form) (Step, error) {
	switch current {
	case StepService:
		if !KnownService(form.Service) {
			return current, fieldError("service", "Please select a service.")
		}
		return StepDetails, nil
	case StepDetails:
		if strings.TrimSpace(form.Address) == "" {
			return current, fieldError("address", "Please enter the service address.")
		}
		return StepContact, nil
	case StepContact:
		if strings.TrimSpace(form.Name) == "" {
			return current, fieldError("name", "Please enter your full name.")
		}
		if strings.TrimSpace(form.Phone) == "" {
			return current, fieldError("phone", "Please enter your phone number.")
		}
		return StepSuccess, nil
	}
	return current, pkgerrors.ErrValidation.WithMessage(fmt.Sprintf("cannot advance from %s", current))
}

// Back is only possible from details and contact.
func Back(current Step) (Step, error) {
	switch current {
	case StepDetails:
		return StepService, nil
	case StepContact:
		return StepDetails, nil
	}
	return current, pkgerrors.ErrValidation.WithMessage(fmt.Sprintf("cannot go back from %s", current))
}
