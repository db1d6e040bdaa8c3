package domain

// Cursor is the agent's nextSequence token. It is carried verbatim from a
// streams header into the next request's from parameter.
type Cursor string

// IsZero reports whether no cursor has been read yet.
func (c Cursor) IsZero() bool { return c == "" }

func (c Cursor) String() string { return string(c) }

// Unavailable is the value an agent reports for a channel without data.
const Unavailable = "UNAVAILABLE"

// Observation is one reported channel element from a Samples block, before
// normalization.
type Observation struct {
	Kind       string
	DataItemID string
	Timestamp  string
	Value      string
}

// Snapshot is a parsed current or sample response.
type Snapshot struct {
	NextSequence Cursor
	Observations []Observation
}

// Measurement is the record shape accepted by the storage service's data
// write endpoint.
type Measurement struct {
	Measurement string `json:"measurement"`
	Timestamp   string `json:"timestamp,omitempty"`
	Tags        Tags   `json:"tags"`
	Fields      Fields `json:"fields"`
}

type Tags struct {
	DataItemID string `json:"dataItemId"`
}

type Fields struct {
	Value string `json:"value"`
}
