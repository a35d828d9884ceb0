package models

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"time"

	"github.com/rs/zerolog"
)

// ErrArtifactNotFound is returned when an artifact exists neither in the
// repository root nor under models/.
var ErrArtifactNotFound = errors.New("artifact not found in repository")

// artifactExtensions are the serialized model formats the store recognises.
var artifactExtensions = []string{".json", ".pkl", ".joblib"}

// ArtifactInfo describes a model file as listed by the GitHub contents API.
type ArtifactInfo struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	Size        int64  `json:"size"`
	DownloadURL string `json:"download_url"`
}

type contentsEntry struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	Size        int64  `json:"size"`
	Type        string `json:"type"`
	DownloadURL string `json:"download_url"`
}

// Client fetches model artifacts from a GitHub repository. Artifacts live
// either in the repository root or in a models/ directory.
type Client struct {
	repo   string
	branch string
	token  string

	// apiBase and rawBase are overridable for tests.
	apiBase string
	rawBase string

	httpClient *http.Client
	logger     zerolog.Logger
}

func NewClient(repo string, branch string, token string, logger zerolog.Logger) *Client {
	if branch == "" {
		branch = "main"
	}
	return &Client{
		repo:       repo,
		branch:     branch,
		token:      token,
		apiBase:    fmt.Sprintf("https://api.github.com/repos/%s", repo),
		rawBase:    fmt.Sprintf("https://raw.githubusercontent.com/%s/%s", repo, branch),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

func (c *Client) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	if c.token != "" {
		req.Header.Set("Authorization", "token "+c.token)
	}
	return c.httpClient.Do(req)
}

// IsArtifact reports whether name has a recognised model file extension.
func IsArtifact(name string) bool {
	ext := path.Ext(name)
	for _, e := range artifactExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// List returns the artifacts present in the repository root and, when it
// exists, the models/ directory. A missing models/ directory is not an error.
func (c *Client) List(ctx context.Context) ([]ArtifactInfo, error) {
	artifacts, err := c.listDir(ctx, "")
	if err != nil {
		return nil, err
	}

	modelDirArtifacts, err := c.listDir(ctx, "models")
	if err != nil && !errors.Is(err, ErrArtifactNotFound) {
		return nil, err
	}
	artifacts = append(artifacts, modelDirArtifacts...)

	c.logger.Info().Int("count", len(artifacts)).Str("repo", c.repo).Msg("listed model artifacts")
	return artifacts, nil
}

func (c *Client) listDir(ctx context.Context, dir string) ([]ArtifactInfo, error) {
	url := c.apiBase + "/contents"
	if dir != "" {
		url += "/" + dir
	}
	resp, err := c.get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to list %q: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrArtifactNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d listing %q", resp.StatusCode, url)
	}

	var entries []contentsEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("failed to decode contents listing: %w", err)
	}

	var artifacts []ArtifactInfo
	for _, entry := range entries {
		if entry.Type != "file" || !IsArtifact(entry.Name) {
			continue
		}
		artifacts = append(artifacts, ArtifactInfo{
			Name:        entry.Name,
			Path:        entry.Path,
			Size:        entry.Size,
			DownloadURL: entry.DownloadURL,
		})
	}
	return artifacts, nil
}

// Download fetches the raw artifact bytes, trying the repository root first
// and falling back to models/<name>.
func (c *Client) Download(ctx context.Context, name string) ([]byte, error) {
	for _, url := range []string{c.rawBase + "/" + name, c.rawBase + "/models/" + name} {
		resp, err := c.get(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("failed to download %q: %w", name, err)
		}
		if resp.StatusCode == http.StatusNotFound {
			resp.Body.Close()
			continue
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("unexpected status %d downloading %q", resp.StatusCode, name)
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read %q: %w", name, err)
		}
		c.logger.Info().Str("artifact", name).Int("bytes", len(body)).Msg("downloaded artifact")
		return body, nil
	}
	return nil, fmt.Errorf("%q: %w", name, ErrArtifactNotFound)
}
