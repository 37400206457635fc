package remote

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"

	"aula-backend/internal/models"
	"aula-backend/internal/timeutil"
)

// soapClient talks the provider's legacy XML API. Kept for installations that
// have not migrated to the REST endpoints.
type soapClient struct {
	endpoint   string
	username   string
	password   string
	httpClient *http.Client
}

func newSOAPClient(endpoint, username, password string) *soapClient {
	return &soapClient{
		endpoint:   endpoint,
		username:   username,
		password:   password,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type soapEnvelope struct {
	XMLName xml.Name `xml:"Envelope"`
	Header  struct {
		Username string `xml:"Security>Username"`
		Password string `xml:"Security>Password"`
	} `xml:"Header"`
	Body soapBody `xml:"Body"`
}

type soapBody struct {
	Inner []byte `xml:",innerxml"`
}

type setSessionXML struct {
	XMLName   xml.Name `xml:"SetSession"`
	Name      string   `xml:"name"`
	Course    string   `xml:"courseName"`
	GroupID   *int64   `xml:"groupId,omitempty"`
	SessionID string   `xml:"sessionId,omitempty"`
	StartTime int64    `xml:"startTime"`
	EndTime   int64    `xml:"endTime"`
	OpenEnded bool     `xml:"openEnded"`
	Boundary  int      `xml:"boundaryTime"`
}

type sessionResponseXML struct {
	SessionID string `xml:"Body>SessionResponse>sessionId"`
}

type removeSessionXML struct {
	XMLName   xml.Name `xml:"RemoveSession"`
	SessionID string   `xml:"sessionId"`
}

type successResponseXML struct {
	Success bool `xml:"Body>SuccessResponse>success"`
}

type buildURLXML struct {
	XMLName   xml.Name `xml:"BuildSessionUrl"`
	SessionID string   `xml:"sessionId"`
}

type urlResponseXML struct {
	URL string `xml:"Body>UrlResponse>url"`
}

type listRecordingsXML struct {
	XMLName   xml.Name `xml:"ListSessionRecording"`
	SessionID string   `xml:"sessionId"`
}

type recordingXML struct {
	ID        string `xml:"recordingId"`
	Name      string `xml:"name"`
	URL       string `xml:"url"`
	StartTime int64  `xml:"startTime"`
	Duration  int64  `xml:"duration"`
}

type recordingsResponseXML struct {
	Recordings []recordingXML `xml:"Body>SessionRecordingResponse>recording"`
}

type removeRecordingXML struct {
	XMLName     xml.Name `xml:"RemoveSessionRecording"`
	RecordingID string   `xml:"recordingId"`
}

type serverConfigXML struct {
	XMLName xml.Name `xml:"GetServerConfiguration"`
}

type serverConfigResponseXML struct {
	TimeZone string `xml:"Body>ServerConfigurationResponse>timeZone"`
}

// The provider's delete endpoint answers with an element the generated
// bindings never matched, so a structurally empty decode is re-checked
// against the raw payload for a success marker.
var successElementRe = regexp.MustCompile(`<success[^>]*>true</success>`)

func (c *soapClient) sessionBody(activity *models.Activity, course *models.Course, groupID *int64, sessionID string) (*setSessionXML, error) {
	start, err := timeutil.ToUTC(activity.TimeStart)
	if err != nil {
		return nil, fmt.Errorf("normalize start time: %w", err)
	}
	end := timeutil.EndTime(start, activity.Duration)
	return &setSessionXML{
		Name:      activity.Name,
		Course:    course.FullName,
		GroupID:   groupID,
		SessionID: sessionID,
		StartTime: start,
		EndTime:   end,
		OpenEnded: timeutil.IsOpenEnded(end),
		Boundary:  timeutil.BoundaryMinutes,
	}, nil
}

func (c *soapClient) CreateSession(ctx context.Context, activity *models.Activity, course *models.Course, groupID *int64) (string, error) {
	body, err := c.sessionBody(activity, course, groupID, "")
	if err != nil {
		return "", err
	}
	raw, err := c.call(ctx, "SetSession", body)
	if err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	var resp sessionResponseXML
	if err := xml.Unmarshal(raw, &resp); err != nil || resp.SessionID == "" {
		return "", fmt.Errorf("create session: malformed response")
	}
	return resp.SessionID, nil
}

func (c *soapClient) UpdateSession(ctx context.Context, activity *models.Activity, course *models.Course, link *models.SessionLink) error {
	body, err := c.sessionBody(activity, course, link.GroupID, link.SessionID)
	if err != nil {
		return err
	}
	if _, err := c.call(ctx, "UpdateSessionDetails", body); err != nil {
		return fmt.Errorf("update session %s: %w", link.SessionID, err)
	}
	return nil
}

func (c *soapClient) DeleteSession(ctx context.Context, sessionID string) error {
	raw, err := c.call(ctx, "RemoveSession", &removeSessionXML{SessionID: sessionID})
	if err != nil {
		return fmt.Errorf("delete session %s: %w", sessionID, err)
	}
	var resp successResponseXML
	if err := xml.Unmarshal(raw, &resp); err == nil && resp.Success {
		return nil
	}
	if successElementRe.Match(raw) {
		return nil
	}
	return fmt.Errorf("delete session %s: provider reported failure", sessionID)
}

func (c *soapClient) GuestURL(ctx context.Context, sessionID string) (string, error) {
	raw, err := c.call(ctx, "BuildSessionUrl", &buildURLXML{SessionID: sessionID})
	if err != nil {
		return "", fmt.Errorf("guest url for session %s: %w", sessionID, err)
	}
	var resp urlResponseXML
	if err := xml.Unmarshal(raw, &resp); err != nil || resp.URL == "" {
		return "", fmt.Errorf("guest url for session %s: malformed response", sessionID)
	}
	return resp.URL, nil
}

func (c *soapClient) ListRecordings(ctx context.Context, sessionID string) ([]Recording, error) {
	raw, err := c.call(ctx, "ListSessionRecording", &listRecordingsXML{SessionID: sessionID})
	if err != nil {
		return nil, fmt.Errorf("list recordings for session %s: %w", sessionID, err)
	}
	var resp recordingsResponseXML
	if err := xml.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("list recordings for session %s: malformed response", sessionID)
	}
	recordings := make([]Recording, 0, len(resp.Recordings))
	for _, rec := range resp.Recordings {
		recordings = append(recordings, Recording{
			ID:              rec.ID,
			Name:            rec.Name,
			URL:             rec.URL,
			StartedAt:       time.Unix(rec.StartTime, 0).UTC(),
			DurationSeconds: rec.Duration,
		})
	}
	return recordings, nil
}

func (c *soapClient) DeleteRecording(ctx context.Context, recordingID string) error {
	// The provider returns an empty body here; only the transport outcome is
	// actionable.
	if _, err := c.call(ctx, "RemoveSessionRecording", &removeRecordingXML{RecordingID: recordingID}); err != nil {
		return fmt.Errorf("delete recording %s: %w", recordingID, err)
	}
	return nil
}

func (c *soapClient) CheckConfiguration(ctx context.Context) error {
	raw, err := c.call(ctx, "GetServerConfiguration", &serverConfigXML{})
	if err != nil {
		return fmt.Errorf("check configuration: %w", err)
	}
	var resp serverConfigResponseXML
	if err := xml.Unmarshal(raw, &resp); err != nil || resp.TimeZone == "" {
		return fmt.Errorf("check configuration: server reported no time zone")
	}
	return nil
}

func (c *soapClient) call(ctx context.Context, action string, body interface{}) ([]byte, error) {
	inner, err := xml.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode %s request: %w", action, err)
	}

	env := soapEnvelope{}
	env.Header.Username = c.username
	env.Header.Password = c.password
	env.Body = soapBody{Inner: inner}

	data, err := xml.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encode envelope: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("SOAPAction", action)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return raw, nil
}
