package archive

import (
	"strings"
	"testing"
)

func TestS3Storage_ImplementsStorage(t *testing.T) {
	var _ Storage = (*S3Storage)(nil)
}

func TestNewS3_RequiresBucket(t *testing.T) {
	if _, err := NewS3(S3Config{Region: "us-east-1"}); err == nil {
		t.Error("expected error for missing bucket")
	}
}

func TestS3Storage_Key(t *testing.T) {
	tests := []struct {
		prefix string
		path   string
		want   string
	}{
		{"", "charts/a.png", "charts/a.png"},
		{"tickertalk", "charts/a.png", "tickertalk/charts/a.png"},
		{"tickertalk/", "/charts/a.png", "tickertalk/charts/a.png"},
	}

	for _, tt := range tests {
		s := &S3Storage{prefix: strings.Trim(tt.prefix, "/")}
		got := s.key(tt.path)
		if got != tt.want {
			t.Errorf("key(%q) with prefix %q = %q, want %q", tt.path, tt.prefix, got, tt.want)
		}
		if rel := s.relative(got); rel != strings.TrimPrefix(tt.path, "/") {
			t.Errorf("relative(%q) = %q", got, rel)
		}
	}
}

func TestS3Storage_Location(t *testing.T) {
	s, err := NewS3(S3Config{Bucket: "charts-bucket", Region: "us-east-1", Prefix: "prod"})
	if err != nil {
		t.Fatalf("NewS3: %v", err)
	}
	got := s.Location("charts/abc/MSFT.png")
	if got != "s3://charts-bucket/prod/charts/abc/MSFT.png" {
		t.Errorf("unexpected location %s", got)
	}
}
