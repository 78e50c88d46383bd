package visuals

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/funnydev94625/AdGen/logging"
)

const (
	runwayBaseURL = "https://api.dev.runwayml.com/v1"
	runwayVersion = "2024-11-06"

	// referenceInstruction accompanies every reference-conditioned prompt.
	referenceInstruction = " Draw different from the reference image or Draw similar to the reference image"
	referenceTag         = "scene_5s_ago"
)

// ResultKind classifies a generation-task outcome at the service boundary.
type ResultKind int

const (
	ResultSucceeded ResultKind = iota
	ResultTransient            // recoverable, worth retrying
	ResultFatal                // misconfiguration, retrying cannot help
)

// TaskResult is the explicit outcome of one create+poll cycle.
type TaskResult struct {
	Kind ResultKind
	URL  string
	Err  error
}

func succeeded(url string) TaskResult { return TaskResult{Kind: ResultSucceeded, URL: url} }
func transient(err error) TaskResult  { return TaskResult{Kind: ResultTransient, Err: err} }
func fatal(err error) TaskResult      { return TaskResult{Kind: ResultFatal, Err: err} }

// ImageRequest is a tagged image-generation request: either unconditioned
// or conditioned on the previous scene's image.
type ImageRequest struct {
	Prompt      string
	refDataURI  string
	conditioned bool
}

// UnconditionedImage builds a request with no reference (the first scene).
func UnconditionedImage(prompt string) ImageRequest {
	return ImageRequest{Prompt: prompt}
}

// ReferenceConditionedImage builds a request carrying the rolling
// reference image as an inline data URI.
func ReferenceConditionedImage(prompt, refDataURI string) ImageRequest {
	return ImageRequest{Prompt: prompt, refDataURI: refDataURI, conditioned: true}
}

// VideoRequest asks for a clip conditioned on a first-frame image and a
// director-level script.
type VideoRequest struct {
	Script       string
	ImageDataURI string
	Duration     int
}

// Client talks to the RunwayML generation service: create a task, then
// poll until it settles.
type Client struct {
	apiKey       string
	httpClient   *http.Client
	logger       zerolog.Logger
	imageModel   string
	imageRatio   string
	videoModel   string
	videoRatio   string
	pollInterval time.Duration
}

// NewClient creates a new generation-service client.
func NewClient(apiKey, imageModel, imageRatio, videoModel, videoRatio string) *Client {
	return &Client{
		apiKey:       apiKey,
		httpClient:   &http.Client{Timeout: 120 * time.Second},
		logger:       logging.WithComponent("runway"),
		imageModel:   imageModel,
		imageRatio:   imageRatio,
		videoModel:   videoModel,
		videoRatio:   videoRatio,
		pollInterval: 5 * time.Second,
	}
}

type referenceImage struct {
	URI string `json:"uri"`
	Tag string `json:"tag"`
}

type promptImage struct {
	URI      string `json:"uri"`
	Position string `json:"position"`
}

type textToImageRequest struct {
	Model           string           `json:"model"`
	Ratio           string           `json:"ratio"`
	PromptText      string           `json:"promptText"`
	ReferenceImages []referenceImage `json:"referenceImages,omitempty"`
}

type imageToVideoRequest struct {
	Model       string        `json:"model"`
	Ratio       string        `json:"ratio"`
	PromptText  string        `json:"promptText"`
	PromptImage []promptImage `json:"promptImage"`
	Duration    int           `json:"duration"`
}

type taskResponse struct {
	ID            string   `json:"id"`
	Status        string   `json:"status"`
	Output        []string `json:"output"`
	FailureReason string   `json:"failure"`
}

// CreateImage submits a text-to-image task and polls it to completion.
func (c *Client) CreateImage(ctx context.Context, req ImageRequest) TaskResult {
	if c.apiKey == "" {
		return fatal(fmt.Errorf("RUNWAY_API_KEY not set"))
	}

	body := textToImageRequest{
		Model:      c.imageModel,
		Ratio:      c.imageRatio,
		PromptText: req.Prompt,
	}
	if req.conditioned {
		body.PromptText += referenceInstruction
		body.ReferenceImages = []referenceImage{{URI: req.refDataURI, Tag: referenceTag}}
	}
	return c.createAndPoll(ctx, "/text_to_image", body)
}

// CreateVideo submits an image-to-video task and polls it to completion.
func (c *Client) CreateVideo(ctx context.Context, req VideoRequest) TaskResult {
	if c.apiKey == "" {
		return fatal(fmt.Errorf("RUNWAY_API_KEY not set"))
	}

	body := imageToVideoRequest{
		Model:       c.videoModel,
		Ratio:       c.videoRatio,
		PromptText:  req.Script,
		PromptImage: []promptImage{{URI: req.ImageDataURI, Position: "first"}},
		Duration:    req.Duration,
	}
	return c.createAndPoll(ctx, "/image_to_video", body)
}

func (c *Client) createAndPoll(ctx context.Context, endpoint string, body any) TaskResult {
	payload, err := json.Marshal(body)
	if err != nil {
		return fatal(fmt.Errorf("marshal task request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, "POST", runwayBaseURL+endpoint, bytes.NewReader(payload))
	if err != nil {
		return fatal(err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return transient(fmt.Errorf("create task: %w", err))
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return transient(err)
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fatal(fmt.Errorf("create task: HTTP %d", resp.StatusCode))
	}
	if resp.StatusCode >= 300 {
		return transient(fmt.Errorf("create task: HTTP %d: %s", resp.StatusCode, respBytes))
	}

	var task taskResponse
	if err := json.Unmarshal(respBytes, &task); err != nil {
		return transient(fmt.Errorf("parse task response: %w", err))
	}
	if task.ID == "" {
		return transient(fmt.Errorf("create task: no task id in response"))
	}

	return c.poll(ctx, task.ID)
}

func (c *Client) poll(ctx context.Context, taskID string) TaskResult {
	for {
		select {
		case <-ctx.Done():
			return transient(ctx.Err())
		case <-time.After(c.pollInterval):
		}

		req, err := http.NewRequestWithContext(ctx, "GET", runwayBaseURL+"/tasks/"+taskID, nil)
		if err != nil {
			return fatal(err)
		}
		c.setHeaders(req)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return transient(fmt.Errorf("poll task %s: %w", taskID, err))
		}
		respBytes, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return transient(err)
		}

		var task taskResponse
		if err := json.Unmarshal(respBytes, &task); err != nil {
			return transient(fmt.Errorf("parse poll response: %w", err))
		}

		switch task.Status {
		case "SUCCEEDED":
			if len(task.Output) == 0 {
				return transient(fmt.Errorf("task %s succeeded with no output", taskID))
			}
			return succeeded(task.Output[0])
		case "FAILED":
			return transient(fmt.Errorf("task %s failed: %s", taskID, task.FailureReason))
		case "PENDING", "RUNNING", "THROTTLED":
			c.logger.Debug().Str("task", taskID).Str("status", task.Status).Msg("waiting on generation task")
		default:
			return transient(fmt.Errorf("task %s in unknown status %q", taskID, task.Status))
		}
	}
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("X-Runway-Version", runwayVersion)
	req.Header.Set("Content-Type", "application/json")
}

// Download fetches a generated artifact URL to a local file.
func (c *Client) Download(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("download %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download %s: HTTP %d", url, resp.StatusCode)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}
	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := io.Copy(f, resp.Body); err != nil {
		return fmt.Errorf("save %s: %w", dest, err)
	}
	return nil
}

// ImageDataURI encodes a local image file as an inline data URI for use
// as a generation reference.
func ImageDataURI(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = "image/png"
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
