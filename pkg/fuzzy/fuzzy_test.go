package fuzzy

import "testing"

func TestNormalize(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"Abarrotes  Doña Lupe": "abarrotes dona lupe",
		"  CAFÉ   Olé ":        "cafe ole",
		"Tiendas Económicas":   "tiendas economicas",
		"":                     "",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLevenshteinDistance(t *testing.T) {
	t.Parallel()

	cases := []struct {
		a, b string
		want int
	}{
		{"", "abc", 3},
		{"abc", "", 3},
		{"kitten", "sitting", 3},
		{"Oxxo", "oxxo", 0},
		{"miscelánea", "miscelanea", 0},
		{"super", "supr", 1},
	}
	for _, tc := range cases {
		if got := LevenshteinDistance(tc.a, tc.b); got != tc.want {
			t.Errorf("LevenshteinDistance(%q, %q) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestMatch(t *testing.T) {
	t.Parallel()

	cases := []struct {
		query, text string
		want        bool
	}{
		{"lupe", "Abarrotes Doña Lupe", true},
		{"dona", "Abarrotes Doña Lupe", true},
		{"abarotes", "Abarrotes Doña Lupe", true},
		{"abar", "Abarrotes Doña Lupe", true},
		{"farmacia", "Abarrotes Doña Lupe", false},
		{"", "anything", true},
	}
	for _, tc := range cases {
		if got := Match(tc.query, tc.text, Threshold(tc.query)); got != tc.want {
			t.Errorf("Match(%q, %q) = %v, want %v", tc.query, tc.text, got, tc.want)
		}
	}
}

func TestThreshold(t *testing.T) {
	t.Parallel()

	if Threshold("oxo") != 1 || Threshold("tienda") != 2 || Threshold("abarrotes") != 3 {
		t.Errorf("thresholds = %d %d %d", Threshold("oxo"), Threshold("tienda"), Threshold("abarrotes"))
	}
}

func TestScoreRanksNameAboveAddress(t *testing.T) {
	t.Parallel()

	inName := Score("centro", "Súper Centro", "Av. Juárez 10")
	inAddress := Score("centro", "Súper Norte", "Calle Centro 5")
	none := Score("centro", "Farmacia", "Av. Reforma")
	if !(inName > inAddress && inAddress > none) {
		t.Errorf("scores name=%v address=%v none=%v", inName, inAddress, none)
	}
	if none != 0 {
		t.Errorf("unrelated score = %v", none)
	}
}
