package store

import (
	"errors"
	"testing"
)

func TestSettingsRepository_GetSet(t *testing.T) {
	repo := newTestStore(t).Settings()

	if _, err := repo.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}

	if err := repo.Set(SettingAlpha, "0.8"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	value, err := repo.Get(SettingAlpha)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if value != "0.8" {
		t.Errorf("Get() = %q, want %q", value, "0.8")
	}

	// Set replaces the previous value.
	if err := repo.Set(SettingAlpha, "0.5"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if value, _ := repo.Get(SettingAlpha); value != "0.5" {
		t.Errorf("Get() after overwrite = %q, want %q", value, "0.5")
	}
}

func TestSettingsRepository_TypedHelpers(t *testing.T) {
	repo := newTestStore(t).Settings()

	// Unset keys fall back to the default.
	if got := repo.GetFloat(SettingAlpha, 0.75); got != 0.75 {
		t.Errorf("GetFloat() default = %f, want 0.75", got)
	}
	if got := repo.GetBool(SettingPreserveEyes, true); !got {
		t.Error("GetBool() default = false, want true")
	}

	if err := repo.SetFloat(SettingFeatherSigma, 7); err != nil {
		t.Fatalf("SetFloat() error = %v", err)
	}
	if got := repo.GetFloat(SettingFeatherSigma, 0); got != 7 {
		t.Errorf("GetFloat() = %f, want 7", got)
	}

	if err := repo.SetBool(SettingPreserveMouth, false); err != nil {
		t.Fatalf("SetBool() error = %v", err)
	}
	if got := repo.GetBool(SettingPreserveMouth, true); got {
		t.Error("GetBool() = true, want false")
	}

	// Unparsable values fall back to the default.
	if err := repo.Set(SettingAlpha, "not-a-number"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if got := repo.GetFloat(SettingAlpha, 0.6); got != 0.6 {
		t.Errorf("GetFloat() with garbage = %f, want 0.6", got)
	}
}
