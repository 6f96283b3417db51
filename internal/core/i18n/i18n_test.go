package i18n

import "testing"

func TestGetTranslations(t *testing.T) {
	tests := []struct {
		name string
		lang string
	}{
		{name: "English", lang: "en"},
		{name: "Chinese", lang: "zh"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := GetTranslations(tt.lang)
			if tr == nil {
				t.Fatalf("GetTranslations(%q) returned nil", tt.lang)
			}
			if tr.Setup.Starting == "" {
				t.Errorf("setup.starting is empty for %q", tt.lang)
			}
			if tr.Launch.Started == "" {
				t.Errorf("launch.started is empty for %q", tt.lang)
			}
			if tr.Wizard.StepOf == "" {
				t.Errorf("wizard.step_of is empty for %q", tt.lang)
			}
			if tr.Errors.PipFailed == "" {
				t.Errorf("errors.pip_failed is empty for %q", tt.lang)
			}
			if tr.Errors.ConfigNotFound == "" {
				t.Errorf("errors.config_not_found is empty for %q", tt.lang)
			}
			if len(tr.Tips.Items) == 0 {
				t.Errorf("tips.items is empty for %q", tt.lang)
			}
		})
	}
}

func TestGetTranslationsFallback(t *testing.T) {
	// Unknown languages fall back to English
	got := GetTranslations("xx")
	want := GetTranslations("en")
	if got.Setup.Starting != want.Setup.Starting {
		t.Errorf("fallback setup.starting = %q; want %q", got.Setup.Starting, want.Setup.Starting)
	}
}

func TestSupportedLanguagesLoad(t *testing.T) {
	for _, lang := range SupportedLanguages {
		if _, err := loadTranslations(lang.Code); err != nil {
			t.Errorf("loadTranslations(%q) failed: %v", lang.Code, err)
		}
	}
}
