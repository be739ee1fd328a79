package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateMathInput(t *testing.T) {
	tests := []struct {
		name  string
		topic string
		valid bool
	}{
		{"keyword", "solve the quadratic equation", true},
		{"symbols", "x^2 + 5x + 6 = 0", true},
		{"fraction", "what does 3/4 + 1/2 come out to", true},
		{"trig function", "sin of 30 degrees", true},
		{"greek letter", "area of a circle with radius r and π", true},
		{"decimal", "is 3.14159 rational", true},
		{"edge case phrasing", "what is 15% of 80", true},
		{"edge case find", "find the missing side of the shape", true},
		{"empty", "", false},
		{"whitespace only", "   ", false},
		{"off topic joke", "tell me a joke", false},
		{"off topic weather", "what's the weather like today", false},
		{"non math prose", "describe your favorite season", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			valid, msg := ValidateMathInput(tt.topic)
			assert.Equal(t, tt.valid, valid)
			if tt.valid {
				assert.Empty(t, msg)
			} else {
				assert.NotEmpty(t, msg)
			}
		})
	}
}

func TestValidateMathInput_RejectionMessages(t *testing.T) {
	_, emptyMsg := ValidateMathInput("")
	assert.Equal(t, rejectEmpty, emptyMsg)

	_, offTopicMsg := ValidateMathInput("tell me a joke")
	assert.Equal(t, rejectOffTopic, offTopicMsg)

	_, nonMathMsg := ValidateMathInput("describe your favorite season")
	assert.Equal(t, rejectNonMath, nonMathMsg)
}
