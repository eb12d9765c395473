package apikey

import (
	"errors"
	"strings"
	"testing"
)

func TestGenerate(t *testing.T) {
	key, hash, err := Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.HasPrefix(key, Prefix) || len(key) != len(Prefix)+2*randomBytes {
		t.Fatalf("key = %q", key)
	}
	if hash != Hash(key) || len(hash) != 64 {
		t.Fatalf("hash = %q", hash)
	}
	if err := ValidateFormat(key); err != nil {
		t.Fatalf("generated key rejected: %v", err)
	}
	other, _, _ := Generate()
	if other == key {
		t.Fatalf("two keys collided")
	}
}

func TestHashKnownValue(t *testing.T) {
	const want = "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
	if got := Hash("hello"); got != want {
		t.Fatalf("Hash(hello) = %s", got)
	}
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		key string
		ok  bool
	}{
		{key: strings.Repeat("k", MinLength-1)},
		{key: strings.Repeat("k", MinLength), ok: true},
		{key: strings.Repeat("k", MaxLength), ok: true},
		{key: strings.Repeat("k", MaxLength+1)},
	}
	for _, tt := range tests {
		err := ValidateFormat(tt.key)
		if tt.ok && err != nil {
			t.Fatalf("len %d rejected: %v", len(tt.key), err)
		}
		if !tt.ok && !errors.Is(err, ErrFormat) {
			t.Fatalf("len %d err = %v", len(tt.key), err)
		}
	}
}
