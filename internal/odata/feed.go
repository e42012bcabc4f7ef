package odata

import "io"

// feedState tracks a feed transformer's framing progress. Each Stream call
// owns exactly one transformer, so state never crosses requests.
type feedState int

const (
	// stateBeforeHeader means nothing has been written yet; the header is
	// deferred until the first row arrives or the stream ends.
	stateBeforeHeader feedState = iota
	// stateStreaming means the header is out and rows are being emitted.
	stateStreaming
	// stateDone means the footer has been written and the document is
	// complete.
	stateDone
)

func (s feedState) String() string {
	switch s {
	case stateBeforeHeader:
		return "before-header"
	case stateStreaming:
		return "streaming"
	case stateDone:
		return "done"
	default:
		return "unknown"
	}
}

func writeString(w io.Writer, s string) error {
	_, err := io.WriteString(w, s)
	return err
}
