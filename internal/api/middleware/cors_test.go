package middleware

import "testing"

func TestIsOriginAllowed(t *testing.T) {
	tests := []struct {
		name   string
		origin string
		config CORSConfig
		want   bool
	}{
		{name: "allow all", origin: "https://a.example", config: CORSConfig{AllowAllOrigins: true}, want: true},
		{name: "listed", origin: "https://a.example", config: CORSConfig{AllowedOrigins: []string{"https://A.example"}}, want: true},
		{name: "wildcard entry", origin: "https://b.example", config: CORSConfig{AllowedOrigins: []string{"*"}}, want: true},
		{name: "not listed", origin: "https://b.example", config: CORSConfig{AllowedOrigins: []string{"https://a.example"}}, want: false},
		{name: "no origin", origin: "", config: CORSConfig{AllowedOrigins: []string{"*"}}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsOriginAllowed(tt.origin, tt.config); got != tt.want {
				t.Errorf("IsOriginAllowed() = %v, want %v", got, tt.want)
			}
		})
	}
}
