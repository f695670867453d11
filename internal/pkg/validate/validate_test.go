package validate

import (
	"testing"

	"github.com/medportal-notify/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestStruct_MissingRequiredField(t *testing.T) {
	err := Struct(domain.MarkAllReadRequest{})
	assert.ErrorIs(t, err, domain.ErrBadRequest)
	assert.ErrorContains(t, err, "field 'UserID' failed 'required'")
}

func TestStruct_Valid(t *testing.T) {
	assert.NoError(t, Struct(domain.LabStatusRequest{LabID: "lab-1", Status: "approved"}))
}
