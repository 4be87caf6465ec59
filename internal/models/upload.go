package models

// UploadSession is the handle returned by the upload-initiate endpoint.
type UploadSession struct {
	ID string `json:"_id"`
}

// UploadedFile is the finalized file object returned by the last chunk call.
type UploadedFile struct {
	ID   string `json:"_id"`
	Name string `json:"name,omitempty"`
	Size int64  `json:"size,omitempty"`
}

// User is the authenticated user, as far as the orchestration core needs it.
type User struct {
	ID    string `json:"_id"`
	Login string `json:"login"`
}
