package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"aula-backend/internal/models"
	"aula-backend/internal/timeutil"
)

// restClient talks JSON to the provider's REST API.
type restClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func newRESTClient(baseURL, apiKey string) *restClient {
	return &restClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type sessionPayload struct {
	Name        string `json:"name"`
	CourseName  string `json:"course_name"`
	GroupID     *int64 `json:"group_id,omitempty"`
	StartTime   int64  `json:"start_time"`
	EndTime     int64  `json:"end_time"`
	OpenEnded   bool   `json:"open_ended"`
	BoundaryMin int    `json:"boundary_minutes"`
}

func buildSessionPayload(activity *models.Activity, course *models.Course, groupID *int64) (*sessionPayload, error) {
	start, err := timeutil.ToUTC(activity.TimeStart)
	if err != nil {
		return nil, fmt.Errorf("normalize start time: %w", err)
	}
	end := timeutil.EndTime(start, activity.Duration)

	return &sessionPayload{
		Name:        activity.Name,
		CourseName:  course.FullName,
		GroupID:     groupID,
		StartTime:   start,
		EndTime:     end,
		OpenEnded:   timeutil.IsOpenEnded(end),
		BoundaryMin: timeutil.BoundaryMinutes,
	}, nil
}

func (c *restClient) CreateSession(ctx context.Context, activity *models.Activity, course *models.Course, groupID *int64) (string, error) {
	payload, err := buildSessionPayload(activity, course, groupID)
	if err != nil {
		return "", err
	}

	var resp struct {
		SessionID string `json:"session_id"`
	}
	if err := c.do(ctx, http.MethodPost, "/sessions", payload, &resp); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	if resp.SessionID == "" {
		return "", fmt.Errorf("create session: response carried no session id")
	}
	return resp.SessionID, nil
}

func (c *restClient) UpdateSession(ctx context.Context, activity *models.Activity, course *models.Course, link *models.SessionLink) error {
	payload, err := buildSessionPayload(activity, course, link.GroupID)
	if err != nil {
		return err
	}
	if err := c.do(ctx, http.MethodPut, "/sessions/"+link.SessionID, payload, nil); err != nil {
		return fmt.Errorf("update session %s: %w", link.SessionID, err)
	}
	return nil
}

func (c *restClient) DeleteSession(ctx context.Context, sessionID string) error {
	if err := c.do(ctx, http.MethodDelete, "/sessions/"+sessionID, nil, nil); err != nil {
		return fmt.Errorf("delete session %s: %w", sessionID, err)
	}
	return nil
}

func (c *restClient) GuestURL(ctx context.Context, sessionID string) (string, error) {
	var resp struct {
		URL string `json:"url"`
	}
	if err := c.do(ctx, http.MethodGet, "/sessions/"+sessionID+"/guest-url", nil, &resp); err != nil {
		return "", fmt.Errorf("guest url for session %s: %w", sessionID, err)
	}
	return resp.URL, nil
}

func (c *restClient) ListRecordings(ctx context.Context, sessionID string) ([]Recording, error) {
	var resp struct {
		Recordings []Recording `json:"recordings"`
	}
	if err := c.do(ctx, http.MethodGet, "/sessions/"+sessionID+"/recordings", nil, &resp); err != nil {
		return nil, fmt.Errorf("list recordings for session %s: %w", sessionID, err)
	}
	return resp.Recordings, nil
}

func (c *restClient) DeleteRecording(ctx context.Context, recordingID string) error {
	if err := c.do(ctx, http.MethodDelete, "/recordings/"+recordingID, nil, nil); err != nil {
		return fmt.Errorf("delete recording %s: %w", recordingID, err)
	}
	return nil
}

func (c *restClient) CheckConfiguration(ctx context.Context) error {
	var resp struct {
		TimeZone string `json:"time_zone"`
	}
	if err := c.do(ctx, http.MethodGet, "/configuration", nil, &resp); err != nil {
		return fmt.Errorf("check configuration: %w", err)
	}
	if resp.TimeZone == "" {
		return fmt.Errorf("check configuration: server reported no time zone")
	}
	return nil
}

func (c *restClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
