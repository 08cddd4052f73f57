package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClickThroughExStyle(t *testing.T) {
	const other = 0x00000008 // WS_EX_TOPMOST

	tests := []struct {
		name       string
		style      uintptr
		through    bool
		want       uintptr
		needsAlpha bool
	}{
		{"plain to passthrough", other, true, other | WS_EX_LAYERED | WS_EX_TRANSPARENT, true},
		{"plain to intercept", other, false, other | WS_EX_LAYERED, true},
		{"layered to passthrough", other | WS_EX_LAYERED, true, other | WS_EX_LAYERED | WS_EX_TRANSPARENT, false},
		{"passthrough to intercept keeps layered", other | WS_EX_LAYERED | WS_EX_TRANSPARENT, false, other | WS_EX_LAYERED, false},
		{"already intercepting", WS_EX_LAYERED, false, WS_EX_LAYERED, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, needsAlpha := clickThroughExStyle(tt.style, tt.through)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.needsAlpha, needsAlpha)
		})
	}
}
