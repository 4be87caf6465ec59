package models

import (
	"errors"
	"strings"
)

// StageConfig is one step of a multi-stage job: the container image to run
// and the entry file it executes. ID is an opaque, client-generated handle
// used to track form rows across edits; it never goes over the wire.
type StageConfig struct {
	ID        string `json:"id"`
	Image     string `json:"image"`
	Tag       string `json:"tag"`
	EntryFile string `json:"entryFilePath"`
}

// Stage validation errors.
var (
	ErrMissingImage     = errors.New("stage image is required")
	ErrMissingTag       = errors.New("stage tag is required")
	ErrMissingEntryFile = errors.New("stage entry file is required")
)

// Validate reports whether the stage is fully populated.
func (s *StageConfig) Validate() error {
	if strings.TrimSpace(s.Image) == "" {
		return ErrMissingImage
	}
	if strings.TrimSpace(s.Tag) == "" {
		return ErrMissingTag
	}
	if strings.TrimSpace(s.EntryFile) == "" {
		return ErrMissingEntryFile
	}
	return nil
}

// ToWire converts the stage to the shape expected by the submit endpoint.
func (s *StageConfig) ToWire() WireStage {
	return WireStage{
		ImageName: s.Image,
		ImageTag:  s.Tag,
		MainFile:  s.EntryFile,
	}
}
