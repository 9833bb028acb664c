package volume

import "testing"

func TestShortName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"file.txt", "FILE    TXT"},
		{"NOFLASH.TXT", "NOFLASH TXT"},
		{"README", "README     "},
		{"verylongname.text", "VERYLONGTEX"},
		{"a.b.c", "A       B.C"},
		{".hidden", "        HID"},
		{"", "FILE    TXT"},
		{"Temp-01.log", "TEMP-01 LOG"},
	}

	for _, tt := range tests {
		got := ShortName(tt.in)
		if string(got[:]) != tt.want {
			t.Errorf("ShortName(%q) = %q, want %q", tt.in, got[:], tt.want)
		}
	}
}

func TestFormatShortName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"FILE    TXT", "FILE.TXT"},
		{"README     ", "README"},
	}
	for _, tt := range tests {
		var n [11]byte
		copy(n[:], tt.in)
		if got := FormatShortName(n); got != tt.want {
			t.Errorf("FormatShortName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
