package registers

import "testing"

func TestNormalizeLocale(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"en_US", "en_us"},
		{"en-us", "en_us"},
		{"EN_us", "en_us"},
		{"en_US.UTF-8", "en_us"},
		{"de_DE@euro", "de_de"},
		{"de", "de"},
		{"zh_Hant_TW", "zh_hant_tw"},
		{"iw", "he"},
		{"", ""},
		{" . ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := NormalizeLocale(tt.in); got != tt.want {
				t.Errorf("NormalizeLocale(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRegisterDef_Description(t *testing.T) {
	reg := RegisterDef{
		Name: "voltage",
		Desc: map[string]string{
			"en_us": "Grid voltage",
			"de_de": "Netzspannung",
		},
	}

	tests := []struct {
		lang string
		want string
	}{
		{"en_US", "Grid voltage"},
		{"en-US.UTF-8", "Grid voltage"},
		{"en", "Grid voltage"},
		{"de", "Netzspannung"},
		{"de_AT", "Netzspannung"},
		{"ja", "voltage"},
		{"", "voltage"},
	}

	for _, tt := range tests {
		t.Run(tt.lang, func(t *testing.T) {
			if got := reg.Description(tt.lang); got != tt.want {
				t.Errorf("Description(%q) = %q, want %q", tt.lang, got, tt.want)
			}
		})
	}
}

func TestRegisterDef_DescriptionUndetermined(t *testing.T) {
	reg := RegisterDef{
		Name: "mode",
		Desc: map[string]string{
			UndeterminedLocale: "Operating mode",
			"fr_fr":            "Mode de fonctionnement",
		},
	}

	if got := reg.Description("fr"); got != "Mode de fonctionnement" {
		t.Errorf("Description(fr) = %q", got)
	}
	if got := reg.Description("ja_JP"); got != "Operating mode" {
		t.Errorf("Description(ja_JP) = %q, want locale-less text", got)
	}
}
