package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signUpForm struct {
	Name     string `validate:"required,min=3"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=3"`
}

func TestValidate_Success(t *testing.T) {
	f := signUpForm{Name: "Abc", Email: "a@x.com", Password: "abc"}
	assert.NoError(t, Validate(f))
}

func TestValidate_MissingRequired(t *testing.T) {
	f := signUpForm{Email: "a@x.com", Password: "abc"}
	err := Validate(f)
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	fields := valErr.Fields()
	assert.Contains(t, fields, "Name")
	assert.Equal(t, "is required", fields["Name"])
}

func TestValidate_ShortName(t *testing.T) {
	f := signUpForm{Name: "Ab", Email: "a@x.com", Password: "abc"}
	err := Validate(f)
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "must be at least 3 characters", valErr.Fields()["Name"])
}

func TestValidate_InvalidEmail(t *testing.T) {
	f := signUpForm{Name: "Abc", Email: "not-an-email", Password: "abc"}
	err := Validate(f)
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "must be a valid email address", valErr.Fields()["Email"])
}

func TestValidationError_ErrorString(t *testing.T) {
	err := Validate(signUpForm{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field 'Name'")
	assert.Contains(t, err.Error(), "field 'Email'")
	assert.Contains(t, err.Error(), "field 'Password'")
}
