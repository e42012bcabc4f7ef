package data

import (
	"context"
	"testing"

	"github.com/Urjashee/central-backend/internal/model"
)

func unwrap(t *testing.T, payload string) (string, error) {
	t.Helper()
	sub := &model.Submission{InstanceID: "one", XML: []byte(payload)}
	return NewEnvelopeUnwrapper().Unwrap(context.Background(), sub)
}

func TestUnwrap_StripsRootElement(t *testing.T) {
	got, err := unwrap(t, `<data id="simple"><name>Anne</name><age>30</age></data>`)
	if err != nil {
		t.Fatal(err)
	}
	if want := "<name>Anne</name><age>30</age>"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestUnwrap_PreservesContentVerbatim(t *testing.T) {
	// Entities and comments must pass through untouched; the fragment is
	// embedded into a larger document, not re-rendered.
	got, err := unwrap(t, "<data><!-- checked --><name>A &amp; B</name>\n  <note/></data>")
	if err != nil {
		t.Fatal(err)
	}
	if want := "<!-- checked --><name>A &amp; B</name>\n  <note/>"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestUnwrap_SkipsProlog(t *testing.T) {
	got, err := unwrap(t, `<?xml version="1.0"?><data><name>Anne</name></data>`)
	if err != nil {
		t.Fatal(err)
	}
	if want := "<name>Anne</name>"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestUnwrap_SelfClosingRoot(t *testing.T) {
	got, err := unwrap(t, "<data/>")
	if err != nil {
		t.Fatal(err)
	}
	if got != "" {
		t.Errorf("expected empty fragment, got %q", got)
	}
}

func TestUnwrap_Malformed(t *testing.T) {
	for _, payload := range []string{"", "   ", "<data><name>", "not xml"} {
		if _, err := unwrap(t, payload); err == nil {
			t.Errorf("expected error for payload %q", payload)
		}
	}
}
