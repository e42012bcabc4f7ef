package store

import (
	"time"

	"github.com/Urjashee/central-backend/internal/model"
)

// Demo returns a store preloaded with a small household survey and a few
// submissions, so the serve command has something to expose without any
// external source wired up.
func Demo() *Memory {
	m := NewMemory()
	m.AddForm(&model.Form{
		XMLFormID: "households",
		Name:      "Household Survey",
		Fields: []*model.Field{
			{Name: "name", Type: model.FieldString},
			{Name: "age", Type: model.FieldInt},
			{Name: "location", Type: model.FieldGeopoint},
			{Name: "children", Type: model.FieldStructure, Children: []*model.Field{
				{Name: "child", Type: model.FieldRepeat, Children: []*model.Field{
					{Name: "name", Type: model.FieldString},
					{Name: "age", Type: model.FieldInt},
				}},
			}},
		},
	})

	m.AddSubmissions("households",
		&model.Submission{
			InstanceID: "uuid:4e2e06f8-0001-4c50-9f17-2b45ce5a9d1c",
			Submitter:  "Anne",
			CreatedAt:  time.Date(2026, 3, 4, 9, 30, 0, 0, time.UTC),
			XML: []byte(`<data id="households"><name>Anne</name><age>34</age>` +
				`<location>47.649434 -122.347739 26.8 3.14</location>` +
				`<children><child><name>Billy</name><age>4</age></child>` +
				`<child><name>Blaine</name><age>6</age></child></children></data>`),
		},
		&model.Submission{
			InstanceID: "uuid:4e2e06f8-0002-4c50-9f17-2b45ce5a9d1c",
			Submitter:  "Jane",
			CreatedAt:  time.Date(2026, 3, 4, 11, 5, 0, 0, time.UTC),
			XML: []byte(`<data id="households"><name>Jane</name><age>27</age>` +
				`<location>47.599115 -122.331753 10.3 1.92</location>` +
				`<children/></data>`),
		},
		&model.Submission{
			InstanceID: "uuid:4e2e06f8-0003-4c50-9f17-2b45ce5a9d1c",
			Submitter:  "Chelsea",
			CreatedAt:  time.Date(2026, 3, 5, 16, 22, 0, 0, time.UTC),
			XML: []byte(`<data id="households"><name>Chelsea</name><age>38</age>` +
				`<location>47.617034 -122.350605 5.9 0.75</location>` +
				`<children><child><name>Candace</name><age>2</age></child></children></data>`),
		},
	)

	return m
}
