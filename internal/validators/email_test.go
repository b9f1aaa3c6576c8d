package validators

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsPhoneValid(t *testing.T) {
	assert.True(t, IsPhoneValid("+48123456789"))
	assert.True(t, IsPhoneValid("1234567"))
	assert.False(t, IsPhoneValid("12-34"))
	assert.False(t, IsPhoneValid("+1234567890123456"))
}

func TestIsEmailDomainValid_RejectsMalformed(t *testing.T) {
	assert.False(t, IsEmailDomainValid("no-at-sign"))
	assert.False(t, IsEmailDomainValid("trailing@"))
}
