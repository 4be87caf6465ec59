package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	nethttp "net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog/log"

	"github.com/sivacor/sivacor-cli/internal/models"
)

// SubmissionsCollection is the well-known collection grouping all submissions.
const SubmissionsCollection = "Submissions"

// retryLogger implements the retryablehttp.LeveledLogger interface,
// routing retry noise through zerolog at the appropriate levels.
type retryLogger struct{}

func (l *retryLogger) Error(msg string, keysAndValues ...interface{}) {
	log.Error().Fields(keysAndValues).Msg(msg)
}

func (l *retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	log.Warn().Fields(keysAndValues).Msg(msg)
}

func (l *retryLogger) Info(msg string, keysAndValues ...interface{}) {
	// Retries at info level are noise for interactive use.
}

func (l *retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	log.Debug().Fields(keysAndValues).Msg(msg)
}

// Client is the SivaCoR REST API client.
type Client struct {
	httpClient *nethttp.Client
	baseURL    string
	token      string
}

// NewClient creates an API client for the given platform URL and bearer token.
func NewClient(baseURL, token string) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("platform URL is required")
	}
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("API token is required")
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 3
	retryClient.RetryWaitMin = 1 * time.Second
	retryClient.RetryWaitMax = 10 * time.Second
	retryClient.Logger = &retryLogger{}

	return &Client{
		httpClient: retryClient.StandardClient(),
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		token:      token,
	}, nil
}

// BaseURL returns the configured platform URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// LogStreamURL returns the websocket endpoint for live container logs.
// The bearer token rides a query parameter because the websocket handshake
// cannot carry custom headers from the original client environment.
func (c *Client) LogStreamURL() (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid platform URL: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = "/logs/docker"
	q := url.Values{}
	q.Set("token", c.token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// doRequest performs an HTTP request with authentication.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string) (*nethttp.Response, error) {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := nethttp.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	return resp, nil
}

// doJSON performs a request and decodes a JSON response into out.
func (c *Client) doJSON(ctx context.Context, op, method, path string, query url.Values, out interface{}) error {
	resp, err := c.doRequest(ctx, method, path, query, nil, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != nethttp.StatusOK && resp.StatusCode != nethttp.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return statusError(op, resp.StatusCode, string(body))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", op, err)
	}
	return nil
}

// GetCurrentUser returns the authenticated user.
func (c *Client) GetCurrentUser(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.doJSON(ctx, "get current user", "GET", "/user/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// InitiateUpload opens a chunked upload session for a file in a folder.
func (c *Client) InitiateUpload(ctx context.Context, folderID, name string, size int64, mimeType string) (*models.UploadSession, error) {
	q := url.Values{}
	q.Set("parentType", "folder")
	q.Set("parentId", folderID)
	q.Set("name", name)
	q.Set("size", strconv.FormatInt(size, 10))
	q.Set("mimeType", mimeType)

	resp, err := c.doRequest(ctx, "POST", "/file", q, nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != nethttp.StatusOK && resp.StatusCode != nethttp.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return nil, statusError("initiate upload", resp.StatusCode, string(body))
	}

	var session models.UploadSession
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("failed to decode upload session: %w", err)
	}
	return &session, nil
}

// UploadChunk sends one raw binary chunk at the given offset. The response
// for the final chunk carries the finalized file object; intermediate chunks
// return the upload session document, which callers may ignore.
func (c *Client) UploadChunk(ctx context.Context, uploadID string, offset int64, chunk []byte) (*models.UploadedFile, error) {
	q := url.Values{}
	q.Set("uploadId", uploadID)
	q.Set("offset", strconv.FormatInt(offset, 10))

	resp, err := c.doRequest(ctx, "POST", "/file/chunk", q, bytes.NewReader(chunk), "application/octet-stream")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != nethttp.StatusOK && resp.StatusCode != nethttp.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return nil, statusError("upload chunk", resp.StatusCode, string(body))
	}

	var file models.UploadedFile
	if err := json.NewDecoder(resp.Body).Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to decode chunk response: %w", err)
	}
	return &file, nil
}

// SubmitJob submits a replication job for an uploaded bundle with the given
// ordered stage list. Returns the new job id.
func (c *Client) SubmitJob(ctx context.Context, fileID string, stages []models.WireStage) (string, error) {
	stageJSON, err := json.Marshal(stages)
	if err != nil {
		return "", fmt.Errorf("failed to marshal stages: %w", err)
	}

	q := url.Values{}
	q.Set("id", fileID)
	q.Set("stages", string(stageJSON))

	var job models.JobRecord
	if err := c.doJSON(ctx, "submit job", "POST", "/sivacor/submit_job", q, &job); err != nil {
		return "", err
	}
	if job.ID == "" {
		return "", fmt.Errorf("submit job: response carried no job id")
	}
	return job.ID, nil
}

// GetJob retrieves the current job document.
func (c *Client) GetJob(ctx context.Context, jobID string) (*models.JobRecord, error) {
	var job models.JobRecord
	if err := c.doJSON(ctx, "get job", "GET", "/job/"+jobID, nil, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// CancelJob requests cancellation of a running job. The request is
// fire-and-forget: the job only counts as canceled once a subsequent poll
// observes the backend-confirmed CANCELED status.
func (c *Client) CancelJob(ctx context.Context, jobID string) error {
	return c.doJSON(ctx, "cancel job", "PUT", "/job/"+jobID+"/cancel", nil, nil)
}

// GetCollectionByName looks up a collection by its exact name.
func (c *Client) GetCollectionByName(ctx context.Context, name string) (*models.Collection, error) {
	q := url.Values{}
	q.Set("name", name)

	var collections []models.Collection
	if err := c.doJSON(ctx, "get collection", "GET", "/collection", q, &collections); err != nil {
		return nil, err
	}
	if len(collections) == 0 {
		return nil, fmt.Errorf("get collection %q: %w", name, ErrNotFound)
	}
	return &collections[0], nil
}

// GetSubmission retrieves a submission folder by id.
func (c *Client) GetSubmission(ctx context.Context, submissionID string) (*models.Submission, error) {
	var sub models.Submission
	if err := c.doJSON(ctx, "get submission", "GET", "/folder/"+submissionID, nil, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

// FindSubmissionByName looks up a submission folder by exact name within the
// Submissions collection.
func (c *Client) FindSubmissionByName(ctx context.Context, name string) (*models.Submission, error) {
	coll, err := c.GetCollectionByName(ctx, SubmissionsCollection)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("parentType", "collection")
	q.Set("parentId", coll.ID)
	q.Set("name", name)

	var subs []models.Submission
	if err := c.doJSON(ctx, "find submission", "GET", "/folder", q, &subs); err != nil {
		return nil, err
	}
	if len(subs) == 0 {
		return nil, fmt.Errorf("find submission %q: %w", name, ErrNotFound)
	}
	return &subs[0], nil
}

// LatestSubmission returns the most recently created submission folder.
func (c *Client) LatestSubmission(ctx context.Context) (*models.Submission, error) {
	coll, err := c.GetCollectionByName(ctx, SubmissionsCollection)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("parentType", "collection")
	q.Set("parentId", coll.ID)
	q.Set("sort", "created")
	q.Set("sortdir", "-1")
	q.Set("limit", "1")

	var subs []models.Submission
	if err := c.doJSON(ctx, "latest submission", "GET", "/folder", q, &subs); err != nil {
		return nil, err
	}
	if len(subs) == 0 {
		return nil, fmt.Errorf("latest submission: %w", ErrNotFound)
	}
	return &subs[0], nil
}

// ListSubmissions returns submission folders, most recent first.
func (c *Client) ListSubmissions(ctx context.Context, limit int) ([]models.Submission, error) {
	coll, err := c.GetCollectionByName(ctx, SubmissionsCollection)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("parentType", "collection")
	q.Set("parentId", coll.ID)
	q.Set("sort", "created")
	q.Set("sortdir", "-1")
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	var subs []models.Submission
	if err := c.doJSON(ctx, "list submissions", "GET", "/folder", q, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

// DownloadFile opens a download stream for a stored file. The caller owns the
// returned body. The filename comes from Content-Disposition, falling back to
// the file id.
func (c *Client) DownloadFile(ctx context.Context, fileID string) (io.ReadCloser, string, int64, error) {
	resp, err := c.doRequest(ctx, "GET", "/file/"+fileID+"/download", nil, nil, "")
	if err != nil {
		return nil, "", 0, err
	}

	if resp.StatusCode != nethttp.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, "", 0, statusError("download file", resp.StatusCode, string(body))
	}

	name := fileID
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			if fn := params["filename"]; fn != "" {
				name = fn
			}
		}
	}

	return resp.Body, name, resp.ContentLength, nil
}

// GetStageMetrics downloads and decodes the per-stage performance document
// stored under the given artifact file id.
func (c *Client) GetStageMetrics(ctx context.Context, fileID string) (*models.StageMetrics, error) {
	body, _, _, err := c.DownloadFile(ctx, fileID)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var m models.StageMetrics
	if err := json.NewDecoder(body).Decode(&m); err != nil {
		return nil, fmt.Errorf("failed to decode stage metrics: %w", err)
	}
	return &m, nil
}
