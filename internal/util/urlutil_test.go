package util

import "testing"

func TestNormalizeServerURL(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "full url", raw: "http://127.0.0.1:7860", want: "http://127.0.0.1:7860"},
		{name: "trailing slash stripped", raw: "http://127.0.0.1:7860/", want: "http://127.0.0.1:7860"},
		{name: "bare host gets scheme", raw: "localhost:7860", want: "http://localhost:7860"},
		{name: "https preserved", raw: "https://sd.example.com", want: "https://sd.example.com"},
		{name: "surrounding space trimmed", raw: "  http://127.0.0.1:7860  ", want: "http://127.0.0.1:7860"},
		{name: "path kept without slash", raw: "http://host:7860/base/", want: "http://host:7860/base"},
		{name: "empty", raw: "", wantErr: true},
		{name: "bad scheme", raw: "ftp://host", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeServerURL(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("NormalizeServerURL(%q) expected error, got %q", tt.raw, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("NormalizeServerURL(%q) unexpected error: %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("NormalizeServerURL(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestJoinBaseURL(t *testing.T) {
	if got := JoinBaseURL("http://h:1", "/sdapi/v1/progress"); got != "http://h:1/sdapi/v1/progress" {
		t.Errorf("JoinBaseURL = %q", got)
	}
	if got := JoinBaseURL("http://h:1/", "sdapi/v1/progress"); got != "http://h:1/sdapi/v1/progress" {
		t.Errorf("JoinBaseURL without slashes = %q", got)
	}
}
