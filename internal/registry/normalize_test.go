package registry

import "testing"

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text", "chest pain", "chest pain"},
		{"extra whitespace", "  chest   pain \n radiating ", "chest pain radiating"},
		{"simple markup", "<b>irregular</b> mole", "irregular mole"},
		{"nested markup", "<div><p>lesion with <em>color change</em></p></div>", "lesion with color change"},
		{"script stripped", "<script>alert(1)</script>visible text", "visible text"},
		{"entity decoded", "S&amp;P elevation", "S&P elevation"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanText(tt.in); got != tt.want {
				t.Errorf("CleanText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
