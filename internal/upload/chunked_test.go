package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/sivacor/sivacor-cli/internal/models"
)

type chunkCall struct {
	offset int64
	size   int
}

// fakeUploadService records the chunk sequence and returns the file id on
// the final chunk only, like the real endpoint.
type fakeUploadService struct {
	total     int64
	calls     []chunkCall
	received  int64
	failAt    int // fail on the Nth chunk (1-based), 0 = never
	initErr   error
	initiated int
}

func (f *fakeUploadService) InitiateUpload(ctx context.Context, folderID, name string, size int64, mimeType string) (*models.UploadSession, error) {
	f.initiated++
	if f.initErr != nil {
		return nil, f.initErr
	}
	return &models.UploadSession{ID: "session-1"}, nil
}

func (f *fakeUploadService) UploadChunk(ctx context.Context, uploadID string, offset int64, chunk []byte) (*models.UploadedFile, error) {
	if f.failAt > 0 && len(f.calls)+1 == f.failAt {
		return nil, errors.New("boom")
	}
	if offset != f.received {
		return nil, fmt.Errorf("offset %d does not match received bytes %d", offset, f.received)
	}
	f.calls = append(f.calls, chunkCall{offset: offset, size: len(chunk)})
	f.received += int64(len(chunk))
	resp := &models.UploadedFile{}
	if f.received == f.total {
		resp.ID = "file-1"
	}
	return resp, nil
}

func TestUploadChunkSequence(t *testing.T) {
	const mib = 1024 * 1024

	tests := []struct {
		name       string
		size       int64
		chunkSize  int64
		wantChunks []int
	}{
		{"single short chunk", 100, 5 * mib, []int{100}},
		{"exact multiple", 10 * mib, 5 * mib, []int{5 * mib, 5 * mib}},
		{"twelve mib in five mib chunks", 12 * mib, 5 * mib, []int{5 * mib, 5 * mib, 2 * mib}},
		{"boundary plus one", 5*mib + 1, 5 * mib, []int{5 * mib, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeUploadService{total: tt.size}
			u := New(svc)
			u.SetChunkSize(tt.chunkSize)

			fileID, err := u.Upload(context.Background(), bytes.NewReader(make([]byte, tt.size)), "bundle.zip", tt.size, "application/zip", "folder-1")
			if err != nil {
				t.Fatalf("Upload failed: %v", err)
			}
			if fileID != "file-1" {
				t.Errorf("fileID = %q, want file-1", fileID)
			}

			if len(svc.calls) != len(tt.wantChunks) {
				t.Fatalf("got %d chunks, want %d", len(svc.calls), len(tt.wantChunks))
			}
			var offset int64
			for i, call := range svc.calls {
				if call.offset != offset {
					t.Errorf("chunk %d offset = %d, want %d", i, call.offset, offset)
				}
				if call.size != tt.wantChunks[i] {
					t.Errorf("chunk %d size = %d, want %d", i, call.size, tt.wantChunks[i])
				}
				offset += int64(call.size)
			}
			if offset != tt.size {
				t.Errorf("total sent = %d, want %d", offset, tt.size)
			}
		})
	}
}

func TestUploadProgressPercentages(t *testing.T) {
	const size = 12 * 1024 * 1024
	svc := &fakeUploadService{total: size}
	u := New(svc)
	u.SetChunkSize(5 * 1024 * 1024)

	var percents []int
	u.SetProgress(func(percent int, status string) {
		percents = append(percents, percent)
	})

	if _, err := u.Upload(context.Background(), bytes.NewReader(make([]byte, size)), "b.zip", size, "application/zip", "f"); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	// floor(5/12)=41, floor(10/12)=83, then 100 after the last chunk and
	// once more on completion.
	want := []int{0, 41, 83, 100, 100}
	if len(percents) != len(want) {
		t.Fatalf("got %d progress events %v, want %d", len(percents), percents, len(want))
	}
	for i := range want {
		if percents[i] != want[i] {
			t.Errorf("progress[%d] = %d, want %d", i, percents[i], want[i])
		}
	}
}

func TestUploadEmptyFile(t *testing.T) {
	svc := &fakeUploadService{}
	u := New(svc)

	_, err := u.Upload(context.Background(), bytes.NewReader(nil), "empty", 0, "text/plain", "f")
	if !errors.Is(err, ErrEmptyFile) {
		t.Fatalf("err = %v, want ErrEmptyFile", err)
	}
	if svc.initiated != 0 {
		t.Errorf("initiate was called %d times for an empty file", svc.initiated)
	}
}

func TestUploadChunkFailureAborts(t *testing.T) {
	const size = 12 * 1024 * 1024
	svc := &fakeUploadService{total: size, failAt: 2}
	u := New(svc)
	u.SetChunkSize(5 * 1024 * 1024)

	_, err := u.Upload(context.Background(), bytes.NewReader(make([]byte, size)), "b.zip", size, "application/zip", "f")
	if err == nil {
		t.Fatal("expected error after chunk failure")
	}
	// Only the first chunk landed; nothing was retried.
	if len(svc.calls) != 1 {
		t.Errorf("got %d successful chunks, want 1", len(svc.calls))
	}
}
