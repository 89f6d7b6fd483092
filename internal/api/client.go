package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"logbook/termbook/internal/models"
	"logbook/termbook/internal/session"
	"logbook/termbook/internal/storage"
)

const (
	DefaultBaseURL = "http://localhost:5000"
	DefaultTimeout = 30 * time.Second
)

// Config carries the gateway settings resolved from the environment.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client is the sole egress point for server communication. Before
// every request it reads the current token from durable storage (not
// from an in-memory copy) and attaches it as a bearer credential; the
// attachment step runs uniformly for every request and is a no-op when
// no token is stored. Calendar operations additionally attach the
// google credential when one exists.
//
// The client never retries and never swallows errors: failures are
// normalized into the taxonomy in errors.go with status and body
// preserved, and returned to the caller untouched otherwise.
type Client struct {
	httpClient *http.Client
	baseURL    string
	storage    *storage.Storage
}

func NewClient(config Config, st *storage.Storage) *Client {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}

	return &Client{
		httpClient: &http.Client{Timeout: config.Timeout},
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		storage:    st,
	}
}

// request shapes one outbound call before it hits the wire.
type request struct {
	method      string
	path        string
	body        io.Reader
	contentType string
	// withGoogle marks integration operations that carry the
	// secondary credential.
	withGoogle bool
}

func (c *Client) do(ctx context.Context, r request, result any) error {
	req, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.path, r.body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	req.Header.Set("X-Request-ID", uuid.NewString())

	// Token attachment has no conditional bypass: the storage read
	// happens on every request, and an absent token simply sends the
	// call anonymously.
	if token := c.storage.AccessToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if r.withGoogle {
		if creds, ok, _ := c.storage.Get(storage.KeyGoogleCredentials); ok && creds != "" {
			req.Header.Set("X-Google-Credentials", creds)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classifyTransport(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return NewNetworkError("failed to read response body", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return classifyResponse(resp.StatusCode, body)
	}

	if result != nil && len(body) > 0 {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload, result any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request body: %w", err)
	}
	return c.do(ctx, request{
		method:      http.MethodPost,
		path:        path,
		body:        bytes.NewReader(body),
		contentType: "application/json",
	}, result)
}

// Authentication ------------------------------------------------------

type authResponse struct {
	AccessToken string `json:"access_token"`
	Token       string `json:"token"`
	UserID      string `json:"user_id"`
	UserName    string `json:"user_name"`
}

func (r authResponse) token() string {
	// Older server revisions returned "token" instead of
	// "access_token".
	if r.AccessToken != "" {
		return r.AccessToken
	}
	return r.Token
}

// Authenticate exchanges credentials for a bearer token.
func (c *Client) Authenticate(ctx context.Context, email, password string) (*session.AuthResult, error) {
	payload := map[string]string{"email": email, "password": password}
	var resp authResponse
	if err := c.postJSON(ctx, "/auth/login", payload, &resp); err != nil {
		return nil, err
	}
	return &session.AuthResult{
		AccessToken: resp.token(),
		UserID:      resp.UserID,
		UserName:    resp.UserName,
	}, nil
}

// Register creates an account. A duplicate email surfaces as a
// validation error.
func (c *Client) Register(ctx context.Context, email, password, userName string) (*session.AuthResult, error) {
	payload := map[string]string{
		"email":     email,
		"password":  password,
		"user_name": userName,
	}
	var resp authResponse
	if err := c.postJSON(ctx, "/auth/signup", payload, &resp); err != nil {
		return nil, err
	}
	return &session.AuthResult{
		AccessToken: resp.token(),
		UserID:      resp.UserID,
		UserName:    userName,
	}, nil
}

// Relations -----------------------------------------------------------

func (c *Client) ListRelations(ctx context.Context) ([]models.Relation, error) {
	var relations []models.Relation
	err := c.do(ctx, request{method: http.MethodGet, path: "/relations"}, &relations)
	if err != nil {
		return nil, err
	}
	return relations, nil
}

func (c *Client) GetRelation(ctx context.Context, id string) (*models.Relation, error) {
	var relation models.Relation
	err := c.do(ctx, request{method: http.MethodGet, path: "/relations/" + url.PathEscape(id)}, &relation)
	if err != nil {
		return nil, err
	}
	return &relation, nil
}

func (c *Client) CreateRelation(ctx context.Context, fields models.RelationFields) (*models.Relation, error) {
	var relation models.Relation
	if err := c.postJSON(ctx, "/relations/add", fields, &relation); err != nil {
		return nil, err
	}
	return &relation, nil
}

func (c *Client) UpdateRelation(ctx context.Context, id string, fields models.RelationFields) (*models.Relation, error) {
	body, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}
	var relation models.Relation
	err = c.do(ctx, request{
		method:      http.MethodPut,
		path:        "/relations/" + url.PathEscape(id),
		body:        bytes.NewReader(body),
		contentType: "application/json",
	}, &relation)
	if err != nil {
		return nil, err
	}
	return &relation, nil
}

func (c *Client) DeleteRelation(ctx context.Context, id string) error {
	return c.do(ctx, request{method: http.MethodDelete, path: "/relations/" + url.PathEscape(id)}, nil)
}

// Interactions --------------------------------------------------------

func (c *Client) ListInteractions(ctx context.Context, relationID string) ([]models.Interaction, error) {
	var interactions []models.Interaction
	path := "/relations/" + url.PathEscape(relationID) + "/interactions"
	if err := c.do(ctx, request{method: http.MethodGet, path: path}, &interactions); err != nil {
		return nil, err
	}
	return interactions, nil
}

// CreateInteraction logs a new interaction. Without attachments the
// request is plain JSON; with attachments it switches to multipart
// form data carrying the text field and one part per file.
func (c *Client) CreateInteraction(ctx context.Context, relationID string, draft models.InteractionDraft) (*models.Interaction, error) {
	path := "/relations/" + url.PathEscape(relationID) + "/interactions"
	var interaction models.Interaction

	if len(draft.Attachments) == 0 {
		payload := map[string]string{"text": draft.Content}
		if err := c.postJSON(ctx, path, payload, &interaction); err != nil {
			return nil, err
		}
		return &interaction, nil
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if err := writer.WriteField("text", draft.Content); err != nil {
		return nil, fmt.Errorf("failed to write text field: %w", err)
	}
	for _, attachment := range draft.Attachments {
		part, err := writer.CreateFormFile("images", attachment.Filename)
		if err != nil {
			return nil, fmt.Errorf("failed to create file part: %w", err)
		}
		if _, err := io.Copy(part, attachment.Reader); err != nil {
			return nil, fmt.Errorf("failed to copy attachment %s: %w", attachment.Filename, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	err := c.do(ctx, request{
		method:      http.MethodPost,
		path:        path,
		body:        &buf,
		contentType: writer.FormDataContentType(),
	}, &interaction)
	if err != nil {
		return nil, err
	}
	return &interaction, nil
}

func (c *Client) UpdateInteraction(ctx context.Context, id, content string) (*models.Interaction, error) {
	body, err := json.Marshal(map[string]string{"content": content})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}
	var interaction models.Interaction
	err = c.do(ctx, request{
		method:      http.MethodPatch,
		path:        "/interactions/" + url.PathEscape(id),
		body:        bytes.NewReader(body),
		contentType: "application/json",
	}, &interaction)
	if err != nil {
		return nil, err
	}
	return &interaction, nil
}

func (c *Client) DeleteInteraction(ctx context.Context, id string) error {
	return c.do(ctx, request{method: http.MethodDelete, path: "/interactions/" + url.PathEscape(id)}, nil)
}

// Search --------------------------------------------------------------

// Search runs a ranked query over the user's interactions. Ranking and
// the AI answer are produced server-side; the client only shapes the
// request.
func (c *Client) Search(ctx context.Context, query string, mode models.SearchMode, matchCount int) (*models.SearchResponse, error) {
	if matchCount <= 0 {
		matchCount = 10
	}
	payload := map[string]any{
		"query":       query,
		"search_type": string(mode),
		"match_count": matchCount,
	}
	var resp models.SearchResponse
	if err := c.postJSON(ctx, "/api/search", payload, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Calendar integration ------------------------------------------------

func (c *Client) CalendarAuthURL(ctx context.Context) (string, error) {
	var resp struct {
		AuthURL string `json:"auth_url"`
	}
	err := c.do(ctx, request{method: http.MethodGet, path: "/api/calendar/auth-url"}, &resp)
	if err != nil {
		return "", err
	}
	return resp.AuthURL, nil
}

// CompleteCalendarAuth exchanges the authorization code for the
// credential blob the server minted. The blob is opaque to the client
// and is stored as-is.
func (c *Client) CompleteCalendarAuth(ctx context.Context, code, state string) (string, error) {
	payload := map[string]string{"code": code, "state": state}
	var resp struct {
		Credentials json.RawMessage `json:"credentials"`
		Message     string          `json:"message"`
	}
	if err := c.postJSON(ctx, "/api/calendar/oauth-callback", payload, &resp); err != nil {
		return "", err
	}
	return string(resp.Credentials), nil
}

func (c *Client) ListCalendarEvents(ctx context.Context) ([]models.CalendarEvent, error) {
	var events []models.CalendarEvent
	err := c.do(ctx, request{
		method:     http.MethodGet,
		path:       "/api/calendar/events",
		withGoogle: true,
	}, &events)
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (c *Client) CreateCalendarEvent(ctx context.Context, event models.CalendarEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode request body: %w", err)
	}
	return c.do(ctx, request{
		method:      http.MethodPost,
		path:        "/api/calendar/events",
		body:        bytes.NewReader(body),
		contentType: "application/json",
		withGoogle:  true,
	}, nil)
}

// Summarization -------------------------------------------------------

type summaryResponse struct {
	Summary string `json:"summary"`
}

// SummarizeText asks the server for an AI summary of free text. The
// endpoint takes form encoding, not JSON.
func (c *Client) SummarizeText(ctx context.Context, text string) (string, error) {
	form := url.Values{"text": {text}}
	var resp summaryResponse
	err := c.do(ctx, request{
		method:      http.MethodPost,
		path:        "/api/summarize/text",
		body:        strings.NewReader(form.Encode()),
		contentType: "application/x-www-form-urlencoded",
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Summary, nil
}

// SummarizeFile uploads one file for summarization.
func (c *Client) SummarizeFile(ctx context.Context, filename string, reader io.Reader) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := io.Copy(part, reader); err != nil {
		return "", fmt.Errorf("failed to copy file %s: %w", filename, err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	var resp summaryResponse
	err = c.do(ctx, request{
		method:      http.MethodPost,
		path:        "/api/summarize/file",
		body:        &buf,
		contentType: writer.FormDataContentType(),
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Summary, nil
}

// SummarizeDaily sends today's interactions for a digest.
func (c *Client) SummarizeDaily(ctx context.Context, interactions []models.DailyInteraction) (string, error) {
	payload := map[string]any{"interactions": interactions}
	var resp summaryResponse
	if err := c.postJSON(ctx, "/api/summarize/daily", payload, &resp); err != nil {
		return "", err
	}
	return resp.Summary, nil
}
