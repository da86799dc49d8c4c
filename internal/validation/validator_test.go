package validation

import (
	"testing"
)

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		name  string
		email string
		want  bool
	}{
		{name: "simple valid address", email: "a@b.co", want: true},
		{name: "one letter tld after dotted local part", email: "a.b@c.d", want: false},
		{name: "dotted local part", email: "a.b@c.de", want: true},
		{name: "typical address", email: "your.email@example.com", want: true},
		{name: "plus addressing", email: "student+course@example.org", want: true},
		{name: "subdomain", email: "x@mail.school.edu", want: true},
		{name: "missing at sign", email: "ab.co", want: false},
		{name: "missing domain dot", email: "a@b", want: false},
		{name: "one letter tld", email: "a@b.c", want: false},
		{name: "numeric tld", email: "a@b.12", want: false},
		{name: "empty string", email: "", want: false},
		{name: "spaces inside", email: "a b@c.de", want: false},
		{name: "missing local part", email: "@b.co", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidEmail(tt.email); got != tt.want {
				t.Errorf("IsValidEmail(%q) = %v, want %v", tt.email, got, tt.want)
			}
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Student@Example.COM  ", "student@example.com"},
		{"a@b.co", "a@b.co"},
		{"\tA@B.CO\n", "a@b.co"},
	}

	for _, tt := range tests {
		if got := NormalizeEmail(tt.in); got != tt.want {
			t.Errorf("NormalizeEmail(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
