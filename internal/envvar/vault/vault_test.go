package vault

import "testing"

func TestSplitReference(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		secret  string
		key     string
		withErr bool
	}{
		{"database:password", "database", "password", false},
		{"/kv/data/database:password", "/kv/data/database", "password", false},
		{"database", "", "", true},
		{":password", "", "", true},
		{"database:", "", "", true},
	}

	for _, tt := range tests {
		secret, key, err := splitReference(tt.input)
		if (err != nil) != tt.withErr {
			t.Fatalf("%q: expected error %t, got %v", tt.input, tt.withErr, err)
		}

		if secret != tt.secret || key != tt.key {
			t.Fatalf("%q: expected %q/%q, got %q/%q", tt.input, tt.secret, tt.key, secret, key)
		}
	}
}
