package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2/google"

	"qaplan-backend/internal/sheetplan"
)

const (
	driveBase  = "https://www.googleapis.com/drive/v3"
	sheetsBase = "https://sheets.googleapis.com/v4"

	googleTimeout = 15 * time.Second
)

var googleScopes = []string{
	"https://www.googleapis.com/auth/drive",
	"https://www.googleapis.com/auth/spreadsheets",
}

// GoogleStore implements Store against the Google Drive and Sheets REST APIs
// using a service-account credential.
type GoogleStore struct {
	client   *http.Client
	folderID string
}

// NewGoogleStore reads a service-account JSON key file and builds an
// authenticated store scoped to the destination folder.
func NewGoogleStore(ctx context.Context, credentialsFile, folderID string) (*GoogleStore, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read google credentials: %w", err)
	}
	conf, err := google.JWTConfigFromJSON(data, googleScopes...)
	if err != nil {
		return nil, fmt.Errorf("parse google credentials: %w", err)
	}
	client := conf.Client(ctx)
	client.Timeout = googleTimeout
	return &GoogleStore{client: client, folderID: folderID}, nil
}

func (s *GoogleStore) CopyTemplate(ctx context.Context, templateID, folderID, name string) (string, error) {
	var copied struct {
		ID string `json:"id"`
	}
	copyURL := fmt.Sprintf("%s/files/%s/copy", driveBase, templateID)
	if err := s.doJSON(ctx, http.MethodPost, copyURL, map[string]string{"name": name}, &copied); err != nil {
		return "", fmt.Errorf("copy template: %w", err)
	}

	var file struct {
		Parents []string `json:"parents"`
	}
	getURL := fmt.Sprintf("%s/files/%s?fields=parents", driveBase, copied.ID)
	if err := s.doJSON(ctx, http.MethodGet, getURL, nil, &file); err != nil {
		return "", fmt.Errorf("read copy parents: %w", err)
	}

	moveURL := fmt.Sprintf("%s/files/%s?addParents=%s&removeParents=%s&fields=id",
		driveBase, copied.ID, url.QueryEscape(folderID), url.QueryEscape(strings.Join(file.Parents, ",")))
	if err := s.doJSON(ctx, http.MethodPatch, moveURL, struct{}{}, nil); err != nil {
		return "", fmt.Errorf("move copy to folder: %w", err)
	}

	return copied.ID, nil
}

func (s *GoogleStore) FindExisting(ctx context.Context, issueKey string) (string, error) {
	query := fmt.Sprintf("name contains '%s' and '%s' in parents and trashed = false", issueKey, s.folderID)
	listURL := fmt.Sprintf("%s/files?q=%s&fields=files(id,name)&pageSize=1", driveBase, url.QueryEscape(query))

	var result struct {
		Files []struct {
			ID string `json:"id"`
		} `json:"files"`
	}
	if err := s.doJSON(ctx, http.MethodGet, listURL, nil, &result); err != nil {
		return "", fmt.Errorf("find existing plan: %w", err)
	}
	if len(result.Files) == 0 {
		return "", nil
	}
	return result.Files[0].ID, nil
}

func (s *GoogleStore) ListTabs(ctx context.Context, documentID string) ([]string, error) {
	props, err := s.tabProperties(ctx, documentID)
	if err != nil {
		return nil, err
	}
	tabs := make([]string, 0, len(props))
	for _, p := range props {
		tabs = append(tabs, p.Title)
	}
	return tabs, nil
}

func (s *GoogleStore) BatchApply(ctx context.Context, documentID string, ops []sheetplan.MutationOp) error {
	if len(ops) == 0 {
		return nil
	}
	props, err := s.tabProperties(ctx, documentID)
	if err != nil {
		return err
	}
	tabIDs := make(map[string]int64, len(props))
	for _, p := range props {
		tabIDs[p.Title] = p.SheetID
	}

	requests := make([]map[string]any, 0, len(ops))
	for _, op := range ops {
		tabID, ok := tabIDs[op.Tab]
		if !ok {
			return fmt.Errorf("tab %q not found in document %s", op.Tab, documentID)
		}
		reqs, err := toRequests(op, tabID)
		if err != nil {
			return err
		}
		requests = append(requests, reqs...)
	}

	batchURL := fmt.Sprintf("%s/spreadsheets/%s:batchUpdate", sheetsBase, documentID)
	if err := s.doJSON(ctx, http.MethodPost, batchURL, map[string]any{"requests": requests}, nil); err != nil {
		return fmt.Errorf("batch update: %w", err)
	}
	return nil
}

type tabProps struct {
	SheetID int64  `json:"sheetId"`
	Title   string `json:"title"`
	Hidden  bool   `json:"hidden"`
}

func (s *GoogleStore) tabProperties(ctx context.Context, documentID string) ([]tabProps, error) {
	getURL := fmt.Sprintf("%s/spreadsheets/%s?fields=sheets.properties(sheetId,title,hidden)", sheetsBase, documentID)
	var doc struct {
		Sheets []struct {
			Properties tabProps `json:"properties"`
		} `json:"sheets"`
	}
	if err := s.doJSON(ctx, http.MethodGet, getURL, nil, &doc); err != nil {
		return nil, fmt.Errorf("get spreadsheet: %w", err)
	}
	props := make([]tabProps, 0, len(doc.Sheets))
	for _, sh := range doc.Sheets {
		props = append(props, sh.Properties)
	}
	return props, nil
}

// toRequests translates one MutationOp into Sheets batchUpdate request
// objects. Rows arrive 1-based; the API takes 0-based half-open ranges.
func toRequests(op sheetplan.MutationOp, tabID int64) ([]map[string]any, error) {
	switch op.Kind {
	case sheetplan.OpInsertRows:
		return []map[string]any{{
			"insertDimension": map[string]any{
				"range": map[string]any{
					"sheetId":    tabID,
					"dimension":  "ROWS",
					"startIndex": op.BeforeRow - 1,
					"endIndex":   op.BeforeRow - 1 + op.Count,
				},
				"inheritFromBefore": true,
			},
		}}, nil
	case sheetplan.OpWriteCell:
		col, err := columnIndex(op.Col)
		if err != nil {
			return nil, err
		}
		return []map[string]any{{
			"updateCells": map[string]any{
				"rows": []map[string]any{{
					"values": []map[string]any{{
						"userEnteredValue": map[string]any{"stringValue": op.Value},
					}},
				}},
				"fields": "userEnteredValue",
				"start": map[string]any{
					"sheetId":     tabID,
					"rowIndex":    op.Row - 1,
					"columnIndex": col,
				},
			},
		}}, nil
	case sheetplan.OpDeleteRows:
		reqs := make([]map[string]any, 0, len(op.Rows))
		for _, row := range op.Rows {
			reqs = append(reqs, map[string]any{
				"deleteDimension": map[string]any{
					"range": map[string]any{
						"sheetId":    tabID,
						"dimension":  "ROWS",
						"startIndex": row - 1,
						"endIndex":   row,
					},
				},
			})
		}
		return reqs, nil
	case sheetplan.OpSetTabVisibility:
		return []map[string]any{{
			"updateSheetProperties": map[string]any{
				"properties": map[string]any{
					"sheetId": tabID,
					"hidden":  op.Hidden,
				},
				"fields": "hidden",
			},
		}}, nil
	case sheetplan.OpDeleteTab:
		return []map[string]any{{
			"deleteSheet": map[string]any{"sheetId": tabID},
		}}, nil
	default:
		return nil, fmt.Errorf("unknown op kind %q", op.Kind)
	}
}

// columnIndex converts a column letter ("B", "AA") to a 0-based index.
func columnIndex(col string) (int, error) {
	col = strings.ToUpper(strings.TrimSpace(col))
	if col == "" {
		return 0, fmt.Errorf("empty column")
	}
	idx := 0
	for _, r := range col {
		if r < 'A' || r > 'Z' {
			return 0, fmt.Errorf("invalid column %q", col)
		}
		idx = idx*26 + int(r-'A') + 1
	}
	return idx - 1, nil
}

func (s *GoogleStore) doJSON(ctx context.Context, method, rawURL string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s: status %d", method, rawURL, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

var _ Store = (*GoogleStore)(nil)
