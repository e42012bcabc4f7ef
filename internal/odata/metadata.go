package odata

import (
	"bytes"
	"encoding/xml"

	"github.com/Urjashee/central-backend/internal/model"
	"github.com/Urjashee/central-backend/internal/templates"
	"github.com/Urjashee/central-backend/internal/util/urls"
)

// Metadata renders the static OData documents for a form: the service
// document in both XML and JSON flavors, and the EDMX metadata schema.
// Construct one per process and share it; rendering is read-only.
type Metadata struct {
	domain   string
	renderer *templates.Renderer
	service  *templates.Compiled
	edmx     *templates.Compiled
}

// NewMetadata creates a document builder rooted at the given base domain
// (scheme and host, no trailing slash). Templates compile here so a
// malformed document shape fails at startup, not on the first request.
func NewMetadata(domain string) (*Metadata, error) {
	renderer := templates.NewRenderer(map[string]interface{}{"domain": domain})

	service, err := renderer.Compile("service-document", serviceDocumentBody)
	if err != nil {
		return nil, err
	}
	edmx, err := renderer.Compile("edmx", edmxBody)
	if err != nil {
		return nil, err
	}

	return &Metadata{domain: domain, renderer: renderer, service: service, edmx: edmx}, nil
}

// ServiceDocumentXML renders the Atom-style service document listing the
// primary Submissions collection and one collection per repeat table.
// formURL is the request URL for the service root; only its path survives
// into the document, prefixed by the configured domain.
func (m *Metadata) ServiceDocumentXML(form *model.Form, formURL string) (string, error) {
	return m.renderer.Render(m.service, map[string]interface{}{
		"formName":    xmlEscape(form.Name),
		"servicePath": urls.Pathname(formURL),
		"tables":      form.Tables(),
	})
}

// ServiceDocument is the JSON flavor of the OData service document.
type ServiceDocument struct {
	Context string              `json:"@odata.context"`
	Value   []ServiceCollection `json:"value"`
}

// ServiceCollection is one addressable entity set advertised by the
// service document.
type ServiceCollection struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
	URL  string `json:"url"`
}

// ServiceDocumentJSON builds the JSON service document for a form. The
// collection list always leads with Submissions, then one entry per repeat
// table in definition order.
func (m *Metadata) ServiceDocumentJSON(form *model.Form, formURL string) *ServiceDocument {
	collections := []ServiceCollection{{Name: SubmissionsTable, Kind: "EntitySet", URL: SubmissionsTable}}
	for _, table := range form.Tables() {
		name := SubmissionsTable + "." + table
		collections = append(collections, ServiceCollection{Name: name, Kind: "EntitySet", URL: name})
	}

	return &ServiceDocument{
		Context: m.domain + urls.Pathname(formURL) + "/$metadata",
		Value:   collections,
	}
}

// EDMXDocument renders the full EDMX metadata document for a form:
// flattened entity and complex types under the form's namespace, an entity
// container exposing one set per entity type, and capability annotations
// on the primary set declaring the unsupported query surface.
func (m *Metadata) EDMXDocument(form *model.Form) (string, error) {
	namespace := namespaceFor(form.XMLFormID)
	flat := Flatten(form.Schema(), namespace)

	return m.renderer.Render(m.edmx, map[string]interface{}{
		"namespace":    namespace,
		"xmlFormId":    form.XMLFormID,
		"entityTypes":  flat.EntityTypes,
		"complexTypes": flat.ComplexTypes,
	})
}

// xmlEscape entity-encodes XML-special characters in s. Templates render
// as raw text, so anything user-controlled gets escaped before it reaches
// a template context.
func xmlEscape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

const serviceDocumentBody = `<?xml version="1.0" encoding="UTF-8"?>
<app:service xmlns:app="http://www.w3.org/2007/app" xmlns:atom="http://www.w3.org/2005/Atom" xmlns:metadata="http://docs.oasis-open.org/odata/ns/metadata" metadata:context="{{.domain}}{{.servicePath}}/$metadata">
  <app:workspace>
    <atom:title type="text">{{.formName}}</atom:title>
    <app:collection href="Submissions">
      <atom:title type="text">Submissions</atom:title>
    </app:collection>
{{- range .tables}}
    <app:collection href="Submissions.{{.}}">
      <atom:title type="text">Submissions.{{.}}</atom:title>
    </app:collection>
{{- end}}
  </app:workspace>
</app:service>`

// Every entity type carries the synthetic __id key ahead of its declared
// properties; for repeat types the declared list already leads with the
// synthesized parent reference.
const edmxBody = `<?xml version="1.0" encoding="UTF-8"?>
<edmx:Edmx xmlns:edmx="http://docs.oasis-open.org/odata/ns/edmx" Version="4.0">
  <edmx:DataServices>
    <Schema xmlns="http://docs.oasis-open.org/odata/ns/edm" Namespace="{{.namespace}}">
{{- range .entityTypes}}
      <EntityType Name="{{.Name}}">
        <Key><PropertyRef Name="{{.Key}}"/></Key>
        <Property Name="__id" Type="Edm.String"/>
{{- range .Properties}}
        <Property Name="{{.Name}}" Type="{{.Type}}"/>
{{- end}}
      </EntityType>
{{- end}}
{{- range .complexTypes}}
      <ComplexType Name="{{.Name}}">
{{- range .Properties}}
        <Property Name="{{.Name}}" Type="{{.Type}}"/>
{{- end}}
      </ComplexType>
{{- end}}
      <EntityContainer Name="{{.xmlFormId}}">
{{- range .entityTypes}}
{{- if .Primary}}
        <EntitySet Name="{{.Name}}" EntityType="{{$.namespace}}.{{.Name}}">
          <Annotation Term="Org.OData.Capabilities.V1.ConformanceLevel" EnumMember="Org.OData.Capabilities.V1.ConformanceLevelType/Minimal"/>
          <Annotation Term="Org.OData.Capabilities.V1.BatchSupported" Bool="false"/>
          <Annotation Term="Org.OData.Capabilities.V1.CountRestrictions">
            <Record><PropertyValue Property="Countable" Bool="true"/></Record>
          </Annotation>
          <Annotation Term="Org.OData.Capabilities.V1.FilterRestrictions">
            <Record>
              <PropertyValue Property="Filterable" Bool="true"/>
              <PropertyValue Property="RequiresFilter" Bool="false"/>
              <PropertyValue Property="NonFilterableProperties">
                <Collection>
{{- range .Properties}}
                  <PropertyPath>{{.Name}}</PropertyPath>
{{- end}}
                </Collection>
              </PropertyValue>
            </Record>
          </Annotation>
          <Annotation Term="Org.OData.Capabilities.V1.SortRestrictions">
            <Record><PropertyValue Property="Sortable" Bool="false"/></Record>
          </Annotation>
          <Annotation Term="Org.OData.Capabilities.V1.ExpandRestrictions">
            <Record><PropertyValue Property="Expandable" Bool="false"/></Record>
          </Annotation>
        </EntitySet>
{{- else}}
        <EntitySet Name="{{.Name}}" EntityType="{{$.namespace}}.{{.Name}}"/>
{{- end}}
{{- end}}
      </EntityContainer>
    </Schema>
  </edmx:DataServices>
</edmx:Edmx>`
