package sns

import (
	"strings"
	"testing"

	"github.com/cheflamb/brigade-api/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate("+15551234567", "hello"))
	assert.NoError(t, Validate("+447911123456", strings.Repeat("x", MaxMessageLength)))

	assert.ErrorIs(t, Validate("5551234567", "hello"), domain.ErrInvalidPhoneNumber)
	assert.ErrorIs(t, Validate("+05551234567", "hello"), domain.ErrInvalidPhoneNumber)
	assert.ErrorIs(t, Validate("+1555-123-4567", "hello"), domain.ErrInvalidPhoneNumber)
	assert.ErrorIs(t, Validate("", "hello"), domain.ErrInvalidPhoneNumber)

	assert.ErrorIs(t, Validate("+15551234567", strings.Repeat("x", MaxMessageLength+1)), domain.ErrMessageTooLong)
}

func TestIsOptOut_ExactKeywords(t *testing.T) {
	for _, body := range []string{"STOP", "QUIT", "CANCEL", "UNSUBSCRIBE", "END"} {
		assert.True(t, IsOptOut(body), body)
	}
}

func TestIsOptOut_CaseAndWhitespaceInsensitive(t *testing.T) {
	assert.True(t, IsOptOut("stop"))
	assert.True(t, IsOptOut("  Stop  "))
	assert.True(t, IsOptOut("\tEND\n"))
}

func TestIsOptOut_PhrasesDoNotMatch(t *testing.T) {
	assert.False(t, IsOptOut("please stop"))
	assert.False(t, IsOptOut("stop it"))
	assert.False(t, IsOptOut("stopping"))
	assert.False(t, IsOptOut("can you cancel my order"))
	assert.False(t, IsOptOut(""))
}
