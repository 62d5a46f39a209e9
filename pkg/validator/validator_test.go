package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Email string `json:"email" validate:"required,email"`
	Stage string `json:"stage" validate:"oneof=new qualifying quoted booked"`
	Phone string `json:"phone,omitempty" validate:"omitempty,e164"`
}

func TestValidate(t *testing.T) {
	require.NoError(t, Validate(sample{Email: "a@b.com", Stage: "new"}))

	err := Validate(sample{Email: "nope", Stage: "lost", Phone: "0771"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field 'email' must be a valid email address")
	assert.Contains(t, err.Error(), "field 'stage' must be one of: new qualifying quoted booked")
}

func TestFields(t *testing.T) {
	err := Get().Struct(sample{Stage: "new", Phone: "12"})
	fields := Fields(err)

	assert.Equal(t, "is required", fields["email"])
	assert.Equal(t, "must be an international phone number", fields["phone"])
	assert.Nil(t, Fields(errors.New("other")))
}

func TestValidateVar(t *testing.T) {
	assert.NoError(t, ValidateVar("+263771840862", "e164"))
	assert.Error(t, ValidateVar("0771840862", "e164"))
}
