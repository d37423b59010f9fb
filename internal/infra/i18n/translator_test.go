//go:build !integration

package i18n

import (
	"testing"
	"testing/fstest"
)

func TestTranslator(t *testing.T) {
	translator, err := newTranslatorFromBytes([]byte("greeting: Hello\ninvalid_param: \"Invalid parameter: %s.\""))
	if err != nil {
		t.Fatalf("newTranslatorFromBytes failed: %v", err)
	}

	t.Run("should translate a simple key", func(t *testing.T) {
		if got := translator.T("greeting"); got != "Hello" {
			t.Errorf("wanted 'Hello', got '%s'", got)
		}
	})

	t.Run("should return key if not found", func(t *testing.T) {
		if got := translator.T("nonexistent_key"); got != "nonexistent_key" {
			t.Errorf("wanted 'nonexistent_key', got '%s'", got)
		}
	})

	t.Run("should format arguments correctly", func(t *testing.T) {
		if got := translator.T("invalid_param", "user_id"); got != "Invalid parameter: user_id." {
			t.Errorf("unexpected message '%s'", got)
		}
	})
}

func TestNewTranslator_Embedded(t *testing.T) {
	tr, err := NewTranslator(LocalesFS, "en")
	if err != nil {
		t.Fatalf("NewTranslator: %v", err)
	}
	for _, key := range []string{"rest_cannot_access", "rest_certificate_invalid", "rest_invalid_param", "rest_user_invalid", "rest_pms_not_active"} {
		if tr.T(key) == key {
			t.Errorf("missing english message for %s", key)
		}
	}
}

func TestNewTranslatorWithFallback(t *testing.T) {
	fsys := fstest.MapFS{"locales/en.yaml": {Data: []byte("hello: Hello")}}
	tr, err := NewTranslatorWithFallback(fsys, "de")
	if err != nil {
		t.Fatalf("expected fallback to en, got %v", err)
	}
	if tr.T("hello") != "Hello" {
		t.Error("fallback translator not loaded")
	}
	if _, err := NewTranslator(fsys, "de"); err == nil {
		t.Error("expected missing locale error")
	}
}
