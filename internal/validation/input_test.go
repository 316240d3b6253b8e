package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	valid := []string{"player@example.com", " Dream.Team+ban@mail.co ", "a_b@sub.domain.org"}
	for _, email := range valid {
		assert.NoError(t, ValidateEmail(email), email)
	}

	invalid := []string{"", "   ", "no-at-sign", "a@b", "two@@example.com", "bad space@example.com", "x@-.c"}
	for _, email := range invalid {
		assert.Error(t, ValidateEmail(email), email)
	}
}

func TestValidateRequired(t *testing.T) {
	assert.Error(t, ValidateRequired("reason", "   ", MaxReasonLength))
	assert.NoError(t, ValidateRequired("reason", " x-ray ", MaxReasonLength))
	assert.Error(t, ValidateRequired("reason", strings.Repeat("я", MaxReasonLength+1), MaxReasonLength))
}

func TestValidateOptional(t *testing.T) {
	assert.NoError(t, ValidateOptional("discord", nil, MaxDiscordTagLength))

	long := strings.Repeat("d", MaxDiscordTagLength+1)
	assert.Error(t, ValidateOptional("discord", &long, MaxDiscordTagLength))

	short := "dream#0001"
	assert.NoError(t, ValidateOptional("discord", &short, MaxDiscordTagLength))
}
