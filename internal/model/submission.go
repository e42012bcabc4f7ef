package model

import "time"

// Submission is one stored form submission row. The XML payload is opaque
// at this layer; the data collaborators unwrap and decompose it on demand.
type Submission struct {
	InstanceID string    `json:"instanceId"` // Client-assigned instance identifier
	Submitter  string    `json:"submitter"`  // Display name of the submitting actor
	CreatedAt  time.Time `json:"createdAt"`  // Server receipt timestamp
	XML        []byte    `json:"-"`          // Stored submission payload
}
