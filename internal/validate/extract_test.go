package validate

import "testing"

func TestParseShareCount(t *testing.T) {
	tests := []struct {
		text   string
		want   int64
		wantOK bool
	}{
		{"1'240'835", 1240835, true},
		{"1.655.000", 1655000, true},
		{"2895835", 2895835, true},
		{"  703'040'000 registered shares", 703040000, true},
		{"CHF 1'000", 1000, true},
		{"no digits here", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseShareCount(tt.text)
		if ok != tt.wantOK {
			t.Errorf("ParseShareCount(%q) ok = %v, want %v", tt.text, ok, tt.wantOK)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseShareCount(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}

func TestSumDenominations(t *testing.T) {
	total := SumDenominations([]string{"1'240'835", "1'655'000"})
	if total != 2895835 {
		t.Errorf("SumDenominations = %d, want 2895835", total)
	}
}

func TestSumDenominations_SkipsUnparseable(t *testing.T) {
	total := SumDenominations([]string{"1'000", "garbage", "2'000"})
	if total != 3000 {
		t.Errorf("SumDenominations = %d, want 3000", total)
	}

	if got := SumDenominations(nil); got != 0 {
		t.Errorf("SumDenominations(nil) = %d, want 0", got)
	}
}

func TestCompareShares_Exact(t *testing.T) {
	if !CompareShares(2895835, 2895835, 0) {
		t.Error("equal counts should match")
	}
	if CompareShares(2895835, 2895000, 0) {
		t.Error("unequal counts must not match under exact policy")
	}
}

func TestCompareShares_ToleranceBand(t *testing.T) {
	// 5% around 1000 is [950, 1050] inclusive.
	if !CompareShares(1049, 1000, 5) {
		t.Error("1049 should fall inside the 5% band around 1000")
	}
	if !CompareShares(1050, 1000, 5) {
		t.Error("band is inclusive at the edge")
	}
	if CompareShares(1051, 1000, 5) {
		t.Error("1051 is outside the 5% band around 1000")
	}
	if !CompareShares(950, 1000, 5) {
		t.Error("950 should fall inside the 5% band around 1000")
	}
}

func TestDenominationsFromHTML(t *testing.T) {
	page := `<html><body><table>
		<tr><td>Ordinary</td><td>1'240'835</td></tr>
		<tr><td>Preferred</td><td>1'655'000</td></tr>
		<tr><td>Founded</td><td>1903</td></tr>
	</table></body></html>`

	got := DenominationsFromHTML(page)
	if len(got) != 2 {
		t.Fatalf("got %d cells %v, want 2", len(got), got)
	}
	if got[0] != "1'240'835" || got[1] != "1'655'000" {
		t.Errorf("cells = %v", got)
	}
	if total := SumDenominations(got); total != 2895835 {
		t.Errorf("total = %d, want 2895835", total)
	}
}

func TestDenominationsFromHTML_SkipsStruckValues(t *testing.T) {
	page := `<html><body><table>
		<tr><td class="strike">1'000'000</td></tr>
		<tr><td><span class="strike">2'000'000</span></td></tr>
		<tr><td><s>3'000'000</s></td></tr>
		<tr><td>1'240'835</td></tr>
	</table></body></html>`

	got := DenominationsFromHTML(page)
	if len(got) != 1 || got[0] != "1'240'835" {
		t.Errorf("got %v, want only the unstruck tranche", got)
	}
}

func TestDenominationsFromHTML_EmptyPage(t *testing.T) {
	if got := DenominationsFromHTML("<html><body><p>nothing</p></body></html>"); len(got) != 0 {
		t.Errorf("got %v, want none", got)
	}
}
