package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sivacor/sivacor-cli/internal/models"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(srv.URL, "test-token")
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return client, srv
}

func TestRequestCarriesBearerToken(t *testing.T) {
	var gotAuth string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(models.User{ID: "u1", Login: "alice"})
	}))

	user, err := client.GetCurrentUser(context.Background())
	if err != nil {
		t.Fatalf("GetCurrentUser failed: %v", err)
	}
	if gotAuth != "Bearer test-token" {
		t.Errorf("Authorization = %q, want Bearer test-token", gotAuth)
	}
	if user.Login != "alice" {
		t.Errorf("Login = %q, want alice", user.Login)
	}
}

func TestInitiateUploadQuery(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/file" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		q := r.URL.Query()
		for key, want := range map[string]string{
			"parentType": "folder",
			"parentId":   "folder-1",
			"name":       "bundle.zip",
			"size":       "12582912",
			"mimeType":   "application/zip",
		} {
			if got := q.Get(key); got != want {
				t.Errorf("query %s = %q, want %q", key, got, want)
			}
		}
		json.NewEncoder(w).Encode(models.UploadSession{ID: "session-1"})
	}))

	session, err := client.InitiateUpload(context.Background(), "folder-1", "bundle.zip", 12582912, "application/zip")
	if err != nil {
		t.Fatalf("InitiateUpload failed: %v", err)
	}
	if session.ID != "session-1" {
		t.Errorf("session id = %q", session.ID)
	}
}

func TestUploadChunkRawBody(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/file/chunk" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/octet-stream" {
			t.Errorf("Content-Type = %q", ct)
		}
		q := r.URL.Query()
		if q.Get("uploadId") != "session-1" || q.Get("offset") != "5242880" {
			t.Errorf("query = %v", q)
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != "chunk-bytes" {
			t.Errorf("body = %q", body)
		}
		json.NewEncoder(w).Encode(models.UploadedFile{ID: "file-1"})
	}))

	file, err := client.UploadChunk(context.Background(), "session-1", 5242880, []byte("chunk-bytes"))
	if err != nil {
		t.Fatalf("UploadChunk failed: %v", err)
	}
	if file.ID != "file-1" {
		t.Errorf("file id = %q", file.ID)
	}
}

func TestSubmitJobStagesJSON(t *testing.T) {
	var gotStages string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/sivacor/submit_job" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.URL.Query().Get("id"); got != "file-1" {
			t.Errorf("id = %q", got)
		}
		gotStages = r.URL.Query().Get("stages")
		json.NewEncoder(w).Encode(models.JobRecord{ID: "job-1"})
	}))

	stages := []models.WireStage{
		{ImageName: "python", ImageTag: "3.12", MainFile: "main.py"},
	}
	jobID, err := client.SubmitJob(context.Background(), "file-1", stages)
	if err != nil {
		t.Fatalf("SubmitJob failed: %v", err)
	}
	if jobID != "job-1" {
		t.Errorf("jobID = %q", jobID)
	}

	want := `[{"image_name":"python","image_tag":"3.12","main_file":"main.py"}]`
	if gotStages != want {
		t.Errorf("stages param = %s, want %s", gotStages, want)
	}
}

func TestSubmitJobEmptyResponse(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{}"))
	}))

	if _, err := client.SubmitJob(context.Background(), "file-1", []models.WireStage{{ImageName: "a", ImageTag: "b", MainFile: "c"}}); err == nil {
		t.Fatal("expected error for response without job id")
	}
}

func TestGetJobDecodesStatus(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/job/job-1" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte(`{"_id":"job-1","status":2,"log":["starting"]}`))
	}))

	job, err := client.GetJob(context.Background(), "job-1")
	if err != nil {
		t.Fatalf("GetJob failed: %v", err)
	}
	if job.Status != models.StatusRunning {
		t.Errorf("status = %v, want RUNNING", job.Status)
	}
	if len(job.Log) != 1 || job.Log[0] != "starting" {
		t.Errorf("log = %v", job.Log)
	}
}

func TestNotFoundMapsToSentinel(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such job", http.StatusNotFound)
	}))

	_, err := client.GetJob(context.Background(), "gone")
	if !IsNotFound(err) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestLatestSubmission(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/collection":
			if r.URL.Query().Get("name") != SubmissionsCollection {
				t.Errorf("collection name = %q", r.URL.Query().Get("name"))
			}
			json.NewEncoder(w).Encode([]models.Collection{{ID: "coll-1", Name: SubmissionsCollection}})
		case "/folder":
			q := r.URL.Query()
			if q.Get("parentId") != "coll-1" || q.Get("sort") != "created" || q.Get("sortdir") != "-1" || q.Get("limit") != "1" {
				t.Errorf("folder query = %v", q)
			}
			json.NewEncoder(w).Encode([]models.Submission{{ID: "sub-1", Name: "run-7"}})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))

	sub, err := client.LatestSubmission(context.Background())
	if err != nil {
		t.Fatalf("LatestSubmission failed: %v", err)
	}
	if sub.ID != "sub-1" {
		t.Errorf("sub id = %q", sub.ID)
	}
}

func TestDownloadFileNaming(t *testing.T) {
	tests := []struct {
		name        string
		disposition string
		wantName    string
	}{
		{"from header", `attachment; filename="results.tar.gz"`, "results.tar.gz"},
		{"missing header falls back to id", "", "file-1"},
		{"malformed header falls back to id", `;;;`, "file-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.disposition != "" {
					w.Header().Set("Content-Disposition", tt.disposition)
				}
				w.Write([]byte("payload"))
			}))

			body, name, _, err := client.DownloadFile(context.Background(), "file-1")
			if err != nil {
				t.Fatalf("DownloadFile failed: %v", err)
			}
			defer body.Close()

			if name != tt.wantName {
				t.Errorf("name = %q, want %q", name, tt.wantName)
			}
			data, _ := io.ReadAll(body)
			if string(data) != "payload" {
				t.Errorf("body = %q", data)
			}
		})
	}
}

func TestGetStageMetrics(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/file/m1/download" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte(`{"StartedAt":"2026-08-24T10:00:00Z","MaxCPUPercent":87.5,"NCPU":8,"MemTotal":16777216}`))
	}))

	m, err := client.GetStageMetrics(context.Background(), "m1")
	if err != nil {
		t.Fatalf("GetStageMetrics failed: %v", err)
	}
	if m.MaxCPUPercent != 87.5 || m.NCPU != 8 {
		t.Errorf("metrics = %+v", m)
	}
}

func TestLogStreamURL(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		want    string
		wantErr bool
	}{
		{"https to wss", "https://replicate.example.org/api/v1", "wss://replicate.example.org/logs/docker?token=test-token", false},
		{"http to ws", "http://localhost:8080/api/v1", "ws://localhost:8080/logs/docker?token=test-token", false},
		{"unsupported scheme", "ftp://example.org", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.baseURL, "test-token")
			if err != nil {
				t.Fatalf("NewClient failed: %v", err)
			}

			got, err := client.LogStreamURL()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("LogStreamURL failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("url = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient("", "token"); err == nil {
		t.Error("expected error for empty URL")
	}
	if _, err := NewClient("https://example.org", " "); err == nil {
		t.Error("expected error for empty token")
	}
}
