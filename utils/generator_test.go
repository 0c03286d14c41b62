package utils

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestGenerateMeetingID(t *testing.T) {
	id := uuid.MustParse("123e4567-e89b-12d3-a456-426614174abc")
	assert.Equal(t, "AZM-174ABC", GenerateMeetingID(id))

	// same booking always yields the same code
	assert.Equal(t, GenerateMeetingID(id), GenerateMeetingID(id))

	other := uuid.New()
	got := GenerateMeetingID(other)
	assert.Len(t, got, 10)
	assert.Equal(t, "AZM-", got[:4])
}
