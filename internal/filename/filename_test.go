package filename

import "testing"

func TestSanitize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "document"},
		{"a/b*c.pdf", "abc.pdf"},
		{"  report 2025.pdf  ", "report 2025.pdf"},
		{"../../etc/passwd", "....etcpasswd"},
		{"***", "document"},
		{"   ", "document"},
		{"Publicación_Ñ-1.pdf", "Publicación_Ñ-1.pdf"},
		{"tab\there", "tabhere"},
		{"\xff\xfeok", "ok"},
		{"DOF_2025-11-04_MAT_file1", "DOF_2025-11-04_MAT_file1"},
	}
	for _, tt := range tests {
		if got := Sanitize(tt.in); got != tt.want {
			t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitize_Idempotent(t *testing.T) {
	inputs := []string{
		"", " ", "a/b*c.pdf", " x ", "..", "ñ/ü", "<script>", "a  b", " - ", "\x00\x01", "DOF_None_MAT_file3",
	}
	for _, in := range inputs {
		once := Sanitize(in)
		if twice := Sanitize(once); twice != once {
			t.Errorf("Sanitize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestDownload(t *testing.T) {
	if got := Download("2025-11-04", "MAT", 12); got != "DOF_2025-11-04_MAT_file12.pdf" {
		t.Errorf("unexpected name %q", got)
	}
	if got := Download("", "VES", 3); got != "DOF_undated_VES_file3.pdf" {
		t.Errorf("unexpected name %q", got)
	}
	if got := Download("2025-11-04", "MAT/EXT", 1); got != "DOF_2025-11-04_MATEXT_file1.pdf" {
		t.Errorf("unexpected name %q", got)
	}
}
