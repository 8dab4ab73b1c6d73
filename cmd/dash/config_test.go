package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMask(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"abc", "***"},
		{"AIzaSyD-1234", "********1234"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, mask(tt.in))
	}
}
