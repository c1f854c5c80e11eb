package contacts

import (
	"testing"
)

func TestExpand(t *testing.T) {
	records := [][]string{
		{"Name", "Favorite", "Phone", "Email", "Social", "Address"},
		{"Alice", "no", "123", "a@b.com", "", ""},
		{"Bob", "yes", "1, 2,, ", "", "@bob", ""},
	}

	got, err := Expand(records)
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expand() returned %d contacts, want 2", len(got))
	}

	alice := got[0]
	if alice.Name != "Alice" || alice.IsFavorite {
		t.Errorf("alice = %+v", alice)
	}
	if len(alice.Methods) != 2 ||
		alice.Methods[0] != (Method{Type: MethodPhone, Value: "123"}) ||
		alice.Methods[1] != (Method{Type: MethodEmail, Value: "a@b.com"}) {
		t.Errorf("alice methods = %+v", alice.Methods)
	}

	bob := got[1]
	if !bob.IsFavorite {
		t.Error("bob should be favorite")
	}
	wantBob := []Method{
		{Type: MethodPhone, Value: "1"},
		{Type: MethodPhone, Value: "2"},
		{Type: MethodSocial, Value: "@bob"},
	}
	if len(bob.Methods) != len(wantBob) {
		t.Fatalf("bob methods = %+v, want %+v", bob.Methods, wantBob)
	}
	for i := range wantBob {
		if bob.Methods[i] != wantBob[i] {
			t.Errorf("bob method[%d] = %+v, want %+v", i, bob.Methods[i], wantBob[i])
		}
	}
}

func TestExpand_HeaderVariants(t *testing.T) {
	// Reordered, lowercased and partial header; method columns are optional.
	records := [][]string{
		{" email ", "NAME"},
		{"x@y.z", "Zed"},
		{"", "", ""},
		{"", "Short"},
	}

	got, err := Expand(records)
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expand() returned %d contacts, want 2 (blank row skipped)", len(got))
	}
	if got[0].Name != "Zed" || len(got[0].Methods) != 1 || got[0].Methods[0].Type != MethodEmail {
		t.Errorf("first = %+v", got[0])
	}
	if got[1].Name != "Short" || len(got[1].Methods) != 0 {
		t.Errorf("second = %+v", got[1])
	}
}

func TestExpand_FavoriteStrict(t *testing.T) {
	tests := []struct {
		cell string
		want bool
	}{
		{"yes", true},
		{" yes ", true},
		{"Yes", false},
		{"true", false},
		{"1", false},
		{"", false},
	}

	for _, tt := range tests {
		got, err := Expand([][]string{{"Name", "Favorite"}, {"A", tt.cell}})
		if err != nil {
			t.Fatalf("Expand() error = %v", err)
		}
		if got[0].IsFavorite != tt.want {
			t.Errorf("Favorite %q => %v, want %v", tt.cell, got[0].IsFavorite, tt.want)
		}
	}
}

func TestExpand_Errors(t *testing.T) {
	tests := []struct {
		name    string
		records [][]string
		kind    Kind
	}{
		{"no records", nil, KindFormat},
		{"missing name column", [][]string{{"Phone"}, {"123"}}, KindValidation},
		{"empty name", [][]string{{"Name", "Phone"}, {"Ann", "1"}, {" ", "2"}}, KindValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Expand(tt.records)
			if err == nil {
				t.Fatal("Expand() expected error")
			}
			if KindOf(err) != tt.kind {
				t.Errorf("KindOf(%v) = %v, want %v", err, KindOf(err), tt.kind)
			}
		})
	}
}

func TestExpand_HeaderOnly(t *testing.T) {
	got, err := Expand([][]string{{"Name"}})
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Expand() = %+v, want none", got)
	}
}

func TestExpand_UnwrapsTextCells(t *testing.T) {
	got, err := Expand([][]string{
		{"Name", "Phone"},
		{`="007"`, `="0012, 0034"`},
	})
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if len(got) != 1 || got[0].Name != "007" {
		t.Fatalf("Expand() = %+v, want one contact named 007", got)
	}
	want := []Method{{Type: MethodPhone, Value: "0012"}, {Type: MethodPhone, Value: "0034"}}
	if len(got[0].Methods) != len(want) {
		t.Fatalf("methods = %+v, want %+v", got[0].Methods, want)
	}
	for i := range want {
		if got[0].Methods[i] != want[i] {
			t.Errorf("method[%d] = %+v, want %+v", i, got[0].Methods[i], want[i])
		}
	}
}

func TestCleanCell(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  plain  ", "plain"},
		{`="0012"`, "0012"},
		{`=" 7 "`, "7"},
		{`="`, `="`},
		{"", ""},
	}

	for _, tt := range tests {
		if got := CleanCell(tt.in); got != tt.want {
			t.Errorf("CleanCell(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMakeHeaderIndex_FirstDuplicateWins(t *testing.T) {
	idx := MakeHeaderIndex([]string{"Name", "Phone", "phone", ""})
	if idx["phone"] != 1 {
		t.Errorf("phone index = %d, want 1", idx["phone"])
	}
	if _, ok := idx[""]; ok {
		t.Error("blank header should not be indexed")
	}
}

func TestSplitValues(t *testing.T) {
	got := SplitValues(" a ,b,, ,c")
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("SplitValues() = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("SplitValues()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
