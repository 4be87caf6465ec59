package models

// Well-known submission metadata keys for result artifact file ids.
const (
	MetaJobID             = "job_id"
	MetaSignature         = "signature"
	MetaDeclaration       = "declaration"
	MetaTimestamp         = "timestamp"
	MetaStdout            = "stdout"
	MetaStderr            = "stderr"
	MetaReplicatedPackage = "replicated_package"
	MetaPerformance       = "performance"
)

// SubmissionMeta holds the metadata block of a submission folder. The backend
// populates artifact ids as the job progresses, so any field may be empty
// mid-run.
type SubmissionMeta struct {
	JobID             string `json:"job_id,omitempty"`
	Signature         string `json:"signature,omitempty"`
	Declaration       string `json:"declaration,omitempty"`
	Timestamp         string `json:"timestamp,omitempty"`
	Stdout            string `json:"stdout,omitempty"`
	Stderr            string `json:"stderr,omitempty"`
	ReplicatedPackage string `json:"replicated_package,omitempty"`

	// Performance lists one metrics artifact id per stage, in stage order.
	Performance []string `json:"performance,omitempty"`
}

// Submission is the backend grouping object correlated 1:1 with a job via
// Meta.JobID. Read-only from the client's perspective.
type Submission struct {
	ID        string         `json:"_id"`
	Name      string         `json:"name"`
	CreatedAt string         `json:"created"`
	Meta      SubmissionMeta `json:"meta"`
}

// ArtifactID returns the artifact file id stored under a well-known metadata
// key, or "" if the backend has not populated it yet.
func (s *Submission) ArtifactID(key string) string {
	switch key {
	case MetaSignature:
		return s.Meta.Signature
	case MetaDeclaration:
		return s.Meta.Declaration
	case MetaTimestamp:
		return s.Meta.Timestamp
	case MetaStdout:
		return s.Meta.Stdout
	case MetaStderr:
		return s.Meta.Stderr
	case MetaReplicatedPackage:
		return s.Meta.ReplicatedPackage
	default:
		return ""
	}
}

// ArtifactKeys lists the downloadable artifact metadata keys.
func ArtifactKeys() []string {
	return []string{
		MetaSignature,
		MetaDeclaration,
		MetaTimestamp,
		MetaStdout,
		MetaStderr,
		MetaReplicatedPackage,
	}
}

// Collection is a top-level grouping container (e.g. "Submissions").
type Collection struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}
