package gravatar

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestURL(t *testing.T) {
	tests := []struct {
		name  string
		opts  Options
		email string
		want  string
	}{
		{
			name:  "defaults hash email as given",
			opts:  Defaults(),
			email: "Admin@Example.com",
			want:  "http://www.gravatar.com/avatar/10aab6f86ad0d34ef9e0f71f146ae12a?s=100&d=retro&r=g",
		},
		{
			name:  "force lower",
			opts:  Options{Size: 100, Rating: "g", Default: "retro", ForceLower: true},
			email: "Admin@Example.com",
			want:  "http://www.gravatar.com/avatar/e64c7d89f26bd1972efa854d13d7dd61?s=100&d=retro&r=g",
		},
		{
			name:  "ssl and force default",
			opts:  Options{Size: 80, Default: "identicon", ForceDefault: true, UseSSL: true},
			email: "admin@example.com",
			want:  "https://secure.gravatar.com/avatar/e64c7d89f26bd1972efa854d13d7dd61?s=80&d=identicon&f=y",
		},
		{
			name:  "custom base",
			opts:  Options{BaseURL: "https://avatars.internal/"},
			email: "admin@example.com",
			want:  "https://avatars.internal/avatar/e64c7d89f26bd1972efa854d13d7dd61",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, New(tt.opts).URL(tt.email))
		})
	}
}
