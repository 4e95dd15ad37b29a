package ui

import "testing"

func TestParseSwapQuery(t *testing.T) {
	tests := []struct {
		query   string
		width   int
		want    Mode
		wantErr bool
	}{
		{query: "", width: 40, want: ModeDynamic},
		{query: "dynamic", width: 40, want: ModeDynamic},
		{query: "static", width: 200, want: ModeStatic},
		{query: "(max-width: 100)", width: 100, want: ModeStatic},
		{query: "(max-width: 100)", width: 101, want: ModeDynamic},
		{query: "(max-width:768px)", width: 80, want: ModeStatic},
		{query: "(min-width: 160)", width: 160, want: ModeStatic},
		{query: "(min-width: 160)", width: 120, want: ModeDynamic},
		{query: " (MAX-WIDTH: 90) ", width: 90, want: ModeStatic},
		{query: "max-width: 100", wantErr: true},
		{query: "(max-width 100)", wantErr: true},
		{query: "(max-width: wide)", wantErr: true},
		{query: "(max-width: 0)", wantErr: true},
		{query: "(max-height: 40)", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			q, err := ParseSwapQuery(tt.query)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.query)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSwapQuery(%q): %v", tt.query, err)
			}
			if got := q.Mode(tt.width, true); got != tt.want {
				t.Errorf("Mode(%d) = %v; want %v", tt.width, got, tt.want)
			}
			if q.Match(tt.width) != (tt.want == ModeStatic) {
				t.Errorf("Match(%d) disagrees with Mode", tt.width)
			}
			if q.String() != tt.query {
				t.Errorf("String() = %q; want %q", q.String(), tt.query)
			}
		})
	}
}

func TestSwapQueryNonInteractive(t *testing.T) {
	for _, s := range []string{"", "dynamic", "(min-width: 10)"} {
		q, err := ParseSwapQuery(s)
		if err != nil {
			t.Fatal(err)
		}
		if q.Mode(300, false) != ModeStatic {
			t.Errorf("%q: piped output must use the static player", s)
		}
	}
}

func TestModeString(t *testing.T) {
	if ModeDynamic.String() != "dynamic" || ModeStatic.String() != "static" {
		t.Error("unexpected mode names")
	}
}
