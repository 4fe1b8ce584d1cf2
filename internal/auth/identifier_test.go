package auth

import "testing"

func TestClassifyIdentifier(t *testing.T) {
	tests := []struct {
		identifier string
		want       IdentifierKind
	}{
		{"a@b.com", IdentifierEmail},
		{"alice@x.com", IdentifierEmail},
		{"alice", IdentifierUsername},
		{"alice@", IdentifierUsername},
		{"@x.com", IdentifierUsername},
		{"", IdentifierUsername},
		{"   ", IdentifierUsername},
	}

	for _, tt := range tests {
		t.Run(tt.identifier, func(t *testing.T) {
			if got := ClassifyIdentifier(tt.identifier); got != tt.want {
				t.Errorf("ClassifyIdentifier(%q) = %s, want %s", tt.identifier, got, tt.want)
			}
		})
	}
}
