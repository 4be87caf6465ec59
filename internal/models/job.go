// Package models defines the typed wire structures for the SivaCoR API.
// Responses are decoded into these structs at the network boundary so shape
// errors surface as decode failures instead of zero-valued fields downstream.
package models

// JobStatus is the backend job state. Values below Success are active
// (non-terminal); Success and above are terminal and never transition again.
type JobStatus int

const (
	StatusInactive JobStatus = 0
	StatusQueued   JobStatus = 1
	StatusRunning  JobStatus = 2
	StatusSuccess  JobStatus = 3
	StatusError    JobStatus = 4
	StatusCanceled JobStatus = 5
)

// IsTerminal reports whether the status is SUCCESS, ERROR, or CANCELED.
func (s JobStatus) IsTerminal() bool {
	return s >= StatusSuccess
}

// IsActive reports whether the job may still transition.
func (s JobStatus) IsActive() bool {
	return !s.IsTerminal()
}

// String returns the display name used in the dashboard and CLI output.
func (s JobStatus) String() string {
	switch s {
	case StatusInactive:
		return "INACTIVE"
	case StatusQueued:
		return "QUEUED"
	case StatusRunning:
		return "RUNNING"
	case StatusSuccess:
		return "SUCCESS"
	case StatusError:
		return "ERROR"
	case StatusCanceled:
		return "CANCELED"
	default:
		return "UNKNOWN"
	}
}

// JobRecord mirrors the server-owned job document. The client holds a
// read-only cached copy, replaced wholesale on each poll.
type JobRecord struct {
	ID         string    `json:"_id"`
	Status     JobStatus `json:"status"`
	CreatedAt  string    `json:"created"`
	UpdatedAt  string    `json:"updated"`
	Log        []string  `json:"log,omitempty"`
	ResultPath string    `json:"resultPath,omitempty"`
	Error      string    `json:"error,omitempty"`
}

// WireStage is the stage element shape expected by the submit endpoint.
type WireStage struct {
	ImageName string `json:"image_name"`
	ImageTag  string `json:"image_tag"`
	MainFile  string `json:"main_file"`
}
