package odata

import (
	"time"

	"github.com/Urjashee/central-backend/internal/model"
)

const testDomain = "https://central.example.org"

// simpleForm has leaf fields only: one table, no complex types.
func simpleForm() *model.Form {
	return &model.Form{
		XMLFormID: "simple",
		Name:      "Simple Form",
		Fields: []*model.Field{
			{Name: "name", Type: model.FieldString},
			{Name: "age", Type: model.FieldInt},
		},
	}
}

// nestedForm exercises every structural shape: leaves of each primitive
// type, a structure, a repeat under the structure, and a repeat nested
// inside that repeat.
func nestedForm() *model.Form {
	return &model.Form{
		XMLFormID: "nested",
		Name:      "Nested Form",
		Fields: []*model.Field{
			{Name: "name", Type: model.FieldString},
			{Name: "age", Type: model.FieldInt},
			{Name: "location", Type: model.FieldGeopoint},
			{Name: "children", Type: model.FieldStructure, Children: []*model.Field{
				{Name: "child", Type: model.FieldRepeat, Children: []*model.Field{
					{Name: "name", Type: model.FieldString},
					{Name: "toy", Type: model.FieldRepeat, Children: []*model.Field{
						{Name: "name", Type: model.FieldString},
					}},
				}},
			}},
		},
	}
}

func testSubmission(id string) *model.Submission {
	return &model.Submission{
		InstanceID: id,
		Submitter:  "Alice",
		CreatedAt:  time.Date(2017, 9, 16, 12, 0, 0, 0, time.UTC),
		XML:        []byte(`<submission><data><data id="simple"><name>Anne</name><age>30</age></data></data></submission>`),
	}
}

// rowChannel returns a closed channel preloaded with the given
// submissions, simulating a source that completed cleanly.
func rowChannel(subs ...*model.Submission) <-chan RowResult {
	rows := make(chan RowResult, len(subs))
	for _, sub := range subs {
		rows <- RowResult{Submission: sub}
	}
	close(rows)
	return rows
}

// failingRowChannel yields the given submissions and then a source error.
func failingRowChannel(err error, subs ...*model.Submission) <-chan RowResult {
	rows := make(chan RowResult, len(subs)+1)
	for _, sub := range subs {
		rows <- RowResult{Submission: sub}
	}
	rows <- RowResult{Err: err}
	close(rows)
	return rows
}
