package record

import "testing"

func TestFindDuplicate(t *testing.T) {
	open := []Record{
		{ID: 3, Company: "Kiosco C", ContactInfo: "", InCharge: "luis"},
		{ID: 2, Company: "Kiosco B", ContactInfo: "11 5555-0000", InCharge: "ana"},
		{ID: 1, Company: "Kiosco A", ContactInfo: "000", InCharge: "ana"},
	}

	cases := []struct {
		name      string
		company   string
		contact   string
		wantOwner string
		wantFound bool
	}{
		{"company exact", "Kiosco A", "", "ana", true},
		{"company case folded", "  kIOSCO c ", "", "luis", true},
		{"contact only", "Otra", "11 5555-0000", "ana", true},
		{"either field", "Kiosco A", "000", "ana", true},
		{"no match", "Ferreteria", "999", "", false},
		{"blank never matches blank", "", "", "", false},
		{"blank contact ignored", "Nueva", "  ", "", false},
		{"substring is not a match", "Kiosco", "", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			owner, found := FindDuplicate(open, tc.company, tc.contact)
			if owner != tc.wantOwner || found != tc.wantFound {
				t.Fatalf("FindDuplicate(%q, %q) = (%q, %v), want (%q, %v)",
					tc.company, tc.contact, owner, found, tc.wantOwner, tc.wantFound)
			}
		})
	}
}

func TestFindDuplicateFirstMatchWins(t *testing.T) {
	open := []Record{
		{ID: 9, Company: "Alpha", InCharge: "luis"},
		{ID: 4, Company: "ALPHA", InCharge: "ana"},
	}
	owner, found := FindDuplicate(open, "alpha", "")
	if !found || owner != "luis" {
		t.Fatalf("expected newest record owner luis, got %q %v", owner, found)
	}
}

func TestFindDuplicateUnicodeFolding(t *testing.T) {
	open := []Record{{Company: "PELUQUERÍA ÑANDÚ", InCharge: "ana"}}
	if _, found := FindDuplicate(open, "peluquería ñandú", ""); !found {
		t.Fatal("expected accented names to match case-insensitively")
	}
}

func TestMatches(t *testing.T) {
	r := &Record{Company: "Kiosco Sol", Address: "Av. Belgrano 100", Industry: "COMIDA",
		InCharge: "ana", ContactInfo: "351 444", Sold: OutcomeSold}

	cases := []struct {
		term   string
		status Outcome
		want   bool
	}{
		{"", "", true},
		{"sol", "", true},
		{"belgrano", "", true},
		{"comida", OutcomeSold, true},
		{"ANA", "", true},
		{"351", "", true},
		{"ropa", "", false},
		{"", OutcomePending, false},
	}
	for _, tc := range cases {
		if got := Matches(r, tc.term, tc.status); got != tc.want {
			t.Errorf("Matches(%q, %q) = %v, want %v", tc.term, tc.status, got, tc.want)
		}
	}
}

func TestParseOutcomeLegacy(t *testing.T) {
	o, ok := ParseOutcome("Interesado/Dudoso")
	if !ok || o != OutcomePending {
		t.Fatalf("legacy value should parse as Pendiente, got %q %v", o, ok)
	}
	if _, ok := ParseOutcome("Tal vez"); ok {
		t.Fatal("unknown outcome should not parse")
	}
}

func TestNormalizeIndustry(t *testing.T) {
	if got := NormalizeIndustry(" ropa "); got != "ROPA" {
		t.Fatalf("got %q", got)
	}
	if got := NormalizeIndustry("Veterinaria"); got != "Veterinaria" {
		t.Fatalf("free text should be kept, got %q", got)
	}
}
