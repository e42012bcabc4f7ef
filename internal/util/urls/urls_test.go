package urls

import (
	"net/url"
	"testing"
)

func TestPathname(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain path", "/v1/forms/simple.svc", "/v1/forms/simple.svc"},
		{"strips query", "/v1/forms/simple.svc/Submissions?$top=10", "/v1/forms/simple.svc/Submissions"},
		{"strips fragment", "/v1/forms/simple.svc#anchor", "/v1/forms/simple.svc"},
		{"absolute url", "https://example.org/v1/forms/simple.svc?$count=true", "/v1/forms/simple.svc"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Pathname(tt.input); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestWithQueryParams_RemovesNilValues(t *testing.T) {
	result, err := WithQueryParams("/path?x=1&y=2", map[string]*string{"x": nil})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	u, err := url.Parse(result)
	if err != nil {
		t.Fatalf("result %q did not parse: %v", result, err)
	}
	q := u.Query()
	if q.Has("x") {
		t.Errorf("expected x removed, got %q", result)
	}
	if q.Get("y") != "2" {
		t.Errorf("expected y=2 preserved, got %q", result)
	}
}

func TestWithQueryParams_OverwritesExistingKeys(t *testing.T) {
	skip := "20"
	result, err := WithQueryParams("/path?$skip=10&$top=10", map[string]*string{"$skip": &skip})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	u, _ := url.Parse(result)
	q := u.Query()
	if q.Get("$skip") != "20" {
		t.Errorf("expected $skip=20, got %q", result)
	}
	if q.Get("$top") != "10" {
		t.Errorf("expected $top preserved, got %q", result)
	}
}

func TestWithQueryParams_SetsNewKeys(t *testing.T) {
	count := "true"
	result, err := WithQueryParams("/path", map[string]*string{"$count": &count})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	u, _ := url.Parse(result)
	if u.Query().Get("$count") != "true" {
		t.Errorf("expected $count=true, got %q", result)
	}
}

func TestWithQueryParams_PreservesPath(t *testing.T) {
	top := "5"
	result, err := WithQueryParams("https://example.org/v1/x.svc/Submissions?$skip=1", map[string]*string{"$top": &top})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	u, _ := url.Parse(result)
	if u.Path != "/v1/x.svc/Submissions" {
		t.Errorf("expected path preserved, got %q", u.Path)
	}
	if u.Host != "example.org" {
		t.Errorf("expected host preserved, got %q", u.Host)
	}
}
