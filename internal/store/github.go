package store

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"
)

// GitHubConfig locates the repository holding the collection files.
type GitHubConfig struct {
	Owner  string
	Repo   string
	Branch string
	Token  string
	// Dir is the path prefix for collection files, default "data". Each
	// collection lives at <dir>/<name>.json.
	Dir string
	// BaseURL overrides the API endpoint, for tests.
	BaseURL string
}

// GitHubStore persists collections as JSON files in a GitHub repository via
// the Contents API. The blob sha returned on read doubles as the optimistic
// concurrency token: a PUT with a stale sha fails and surfaces as
// ErrConflict.
type GitHubStore struct {
	cfg        GitHubConfig
	httpClient *http.Client
}

// NewGitHub builds a store with an oauth2 client for the configured token.
func NewGitHub(cfg GitHubConfig) (*GitHubStore, error) {
	if cfg.Owner == "" || cfg.Repo == "" || cfg.Token == "" {
		return nil, fmt.Errorf("github store: owner, repo and token are required")
	}
	if cfg.Branch == "" {
		cfg.Branch = "main"
	}
	if cfg.Dir == "" {
		cfg.Dir = "data"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.github.com"
	}

	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
	client := oauth2.NewClient(context.Background(), src)
	client.Timeout = 15 * time.Second

	return &GitHubStore{cfg: cfg, httpClient: client}, nil
}

func (s *GitHubStore) contentsURL(collection string) string {
	path := fmt.Sprintf("%s/%s.json", s.cfg.Dir, collection)
	return fmt.Sprintf("%s/repos/%s/%s/contents/%s", s.cfg.BaseURL, s.cfg.Owner, s.cfg.Repo, path)
}

type githubContent struct {
	Content string `json:"content"`
	SHA     string `json:"sha"`
}

type githubPutRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	Branch  string `json:"branch"`
	SHA     string `json:"sha,omitempty"`
}

type githubPutResponse struct {
	Content struct {
		SHA string `json:"sha"`
	} `json:"content"`
}

func (s *GitHubStore) Read(ctx context.Context, collection string) ([]json.RawMessage, Token, error) {
	endpoint := s.contentsURL(collection) + "?ref=" + url.QueryEscape(s.cfg.Branch)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("github read %s: %w", collection, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, "", nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("github read %s: http %d", collection, resp.StatusCode)
	}

	var content githubContent
	if err := json.NewDecoder(resp.Body).Decode(&content); err != nil {
		return nil, "", fmt.Errorf("github read %s: decode: %w", collection, err)
	}

	raw, err := base64.StdEncoding.DecodeString(content.Content)
	if err != nil {
		// Contents API wraps base64 at 60 columns.
		raw, err = base64.StdEncoding.DecodeString(stripNewlines(content.Content))
		if err != nil {
			return nil, "", fmt.Errorf("github read %s: content: %w", collection, err)
		}
	}

	rows, err := decodeDoc(raw)
	if err != nil {
		return nil, "", fmt.Errorf("github read %s: %w", collection, err)
	}
	return rows, Token(content.SHA), nil
}

func (s *GitHubStore) Write(ctx context.Context, collection string, rows []json.RawMessage, expected Token) (Token, error) {
	doc, err := encodeDoc(rows)
	if err != nil {
		return "", err
	}

	payload := githubPutRequest{
		Message: fmt.Sprintf("maidbook: update %s", collection),
		Content: base64.StdEncoding.EncodeToString(doc),
		Branch:  s.cfg.Branch,
		SHA:     string(expected),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, s.contentsURL(collection), bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("github write %s: %w", collection, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
	case http.StatusConflict, http.StatusUnprocessableEntity:
		// 409 on sha mismatch; 422 when creating a file that already exists.
		return "", ErrConflict
	default:
		return "", fmt.Errorf("github write %s: http %d", collection, resp.StatusCode)
	}

	var put githubPutResponse
	if err := json.NewDecoder(resp.Body).Decode(&put); err != nil {
		return "", fmt.Errorf("github write %s: decode: %w", collection, err)
	}
	return Token(put.Content.SHA), nil
}

func stripNewlines(s string) string {
	buf := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' || s[i] == '\r' {
			continue
		}
		buf = append(buf, s[i])
	}
	return string(buf)
}
