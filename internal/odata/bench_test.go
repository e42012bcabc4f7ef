package odata

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"testing"

	"github.com/Urjashee/central-backend/internal/model"
)

func BenchmarkFlatten(b *testing.B) {
	fields := nestedForm().Fields

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		Flatten(fields, "org.opendatakit.user.nested")
	}
}

func BenchmarkEDMXDocument(b *testing.B) {
	metadata, err := NewMetadata(testDomain)
	if err != nil {
		b.Fatal(err)
	}
	form := nestedForm()

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := metadata.EDMXDocument(form); err != nil {
			b.Fatal(err)
		}
	}
}

func benchSubmissions(n int) []*model.Submission {
	subs := make([]*model.Submission, n)
	for i := range subs {
		subs[i] = testSubmission(fmt.Sprintf("uuid:bench-%06d", i))
	}
	return subs
}

func BenchmarkJSONStream(b *testing.B) {
	streamer := NewJSONStreamer(testDomain, singleRecordExtractor())
	form := simpleForm()
	subs := benchSubmissions(100)

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		rows := rowChannel(subs...)
		if err := streamer.Stream(context.Background(), io.Discard, form, SubmissionsTable,
			url.Values{}, "/v1/forms/simple.svc/Submissions", rows, int64(len(subs))); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkAtomStream(b *testing.B) {
	streamer, err := NewAtomStreamer(testDomain, echoUnwrapper("<name>Anne</name><age>30</age>"))
	if err != nil {
		b.Fatal(err)
	}
	form := simpleForm()
	subs := benchSubmissions(100)

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		rows := rowChannel(subs...)
		if err := streamer.Stream(context.Background(), io.Discard, form, SubmissionsTable,
			"/v1/forms/simple.svc/Submissions", rows); err != nil {
			b.Fatal(err)
		}
	}
}
