package intake

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "nexusq/pkg/errors"
)

func TestWizard_ForwardFlow(t *testing.T) {
	form := Form{}

	_, err := Next(StepService, form)
	require.Error(t, err)
	assert.Equal(t, "Please select a service.", pkgerrors.ToErrorResponse(err).Error)

	form.Service = "plumbing"
	step, err := Next(StepService, form)
	require.NoError(t, err)
	assert.Equal(t, StepDetails, step)
	assert.Equal(t, 50, step.Progress())

	_, err = Next(StepDetails, form)
	assert.True(t, pkgerrors.IsValidation(err))

	form.Address = "12 Samora Machel Ave"
	step, err = Next(StepDetails, form)
	require.NoError(t, err)
	assert.Equal(t, StepContact, step)

	form.Name = "Rudo"
	_, err = Next(StepContact, form)
	assert.Equal(t, "phone", pkgerrors.ToErrorResponse(err).Details["field"])

	form.Phone = "0771840862"
	step, err = Next(StepContact, form)
	require.NoError(t, err)
	assert.Equal(t, StepSuccess, step)
	assert.Equal(t, 100, step.Progress())

	_, err = Next(StepSuccess, form)
	assert.Error(t, err)
}

func TestWizard_Back(t *testing.T) {
	step, err := Back(StepContact)
	require.NoError(t, err)
	assert.Equal(t, StepDetails, step)

	step, err = Back(StepDetails)
	require.NoError(t, err)
	assert.Equal(t, StepService, step)
	assert.Equal(t, 25, step.Progress())

	_, err = Back(StepService)
	assert.Error(t, err)
	_, err = Back(StepSuccess)
	assert.Error(t, err)
}

func TestKnownService(t *testing.T) {
	assert.True(t, KnownService("hvac"))
	assert.False(t, KnownService("roofing"))
	assert.False(t, KnownService(""))
}
