package ticket

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const requestTimeout = 10 * time.Second

// JiraClient talks to the Jira Cloud REST API (v3) with basic auth.
type JiraClient struct {
	BaseURL  string
	Username string
	APIToken string
	// FieldIDs maps canonical engine field names to Jira field identifiers.
	// Unmapped names fall back to the identifier itself.
	FieldIDs map[string]string

	HTTPClient *http.Client
}

// NewJiraClient constructs a client with the default field mapping and a
// bounded-timeout HTTP client.
func NewJiraClient(baseURL, username, apiToken string) *JiraClient {
	return &JiraClient{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		Username: username,
		APIToken: apiToken,
		FieldIDs: map[string]string{
			FieldSummary:          "summary",
			FieldDescription:      "description",
			FieldGoals:            "customfield_10081",
			FieldCustomAttributes: "customfield_10082",
			FieldRequirements:     "customfield_10083",
		},
		HTTPClient: &http.Client{Timeout: requestTimeout},
	}
}

type jiraIssue struct {
	Key    string         `json:"key"`
	Fields map[string]any `json:"fields"`
}

// FetchIssue retrieves the issue and maps its fields onto a Snapshot.
func (c *JiraClient) FetchIssue(ctx context.Context, issueKey string) (Snapshot, error) {
	url := fmt.Sprintf("%s/rest/api/3/issue/%s", c.BaseURL, issueKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Snapshot{}, err
	}
	c.decorate(req)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return Snapshot{}, fmt.Errorf("fetch issue %s: %w", issueKey, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return Snapshot{}, fmt.Errorf("fetch issue %s: %w", issueKey, ErrNotFound)
	case http.StatusUnauthorized, http.StatusForbidden:
		return Snapshot{}, fmt.Errorf("fetch issue %s: %w", issueKey, ErrUnauthorized)
	default:
		return Snapshot{}, fmt.Errorf("fetch issue %s: status %d", issueKey, resp.StatusCode)
	}

	var issue jiraIssue
	if err := json.NewDecoder(resp.Body).Decode(&issue); err != nil {
		return Snapshot{}, fmt.Errorf("fetch issue %s: decode: %w", issueKey, err)
	}

	return c.snapshotFromIssue(issueKey, issue), nil
}

func (c *JiraClient) snapshotFromIssue(issueKey string, issue jiraIssue) Snapshot {
	snap := Snapshot{
		IssueKey: issueKey,
		Fields:   make(map[string]any, len(c.FieldIDs)),
	}
	if issue.Key != "" {
		snap.IssueKey = issue.Key
	}

	if rawLabels, ok := issue.Fields["labels"].([]any); ok {
		for _, l := range rawLabels {
			if s, ok := l.(string); ok {
				snap.Labels = append(snap.Labels, s)
			}
		}
	}

	for name, id := range c.FieldIDs {
		if v, ok := issue.Fields[id]; ok && v != nil {
			snap.Fields[name] = v
		}
	}
	return snap
}

// PostComment adds a plain-text comment to the issue, wrapped in the minimal
// Atlassian Document Format envelope the v3 comment endpoint requires.
func (c *JiraClient) PostComment(ctx context.Context, issueKey, text string) error {
	payload := map[string]any{
		"body": map[string]any{
			"type":    "doc",
			"version": 1,
			"content": []any{
				map[string]any{
					"type": "paragraph",
					"content": []any{
						map[string]any{"type": "text", "text": text},
					},
				},
			},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/rest/api/3/issue/%s/comment", c.BaseURL, issueKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	c.decorate(req)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("post comment %s: %w", issueKey, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("post comment %s: status %d", issueKey, resp.StatusCode)
	}
	return nil
}

func (c *JiraClient) decorate(req *http.Request) {
	req.SetBasicAuth(c.Username, c.APIToken)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
}

var _ Source = (*JiraClient)(nil)
