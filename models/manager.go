package models

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sync"

	"github.com/rs/zerolog"
)

// Conventional artifact names published by the training pipeline.
const (
	ArtifactCropDatabase   = "crop_database.json"
	ArtifactRuleConfig     = "rule_engine_config.json"
	ArtifactKnowledgeGraph = "knowledge_graph.json"
)

// Artifact is a model file held by the Manager. JSON artifacts are validated
// at load time; pickle/joblib artifacts are opaque byte payloads (they are
// Python-serialized and cannot be deserialized here).
type Artifact struct {
	Info   ArtifactInfo
	Data   []byte
	IsJSON bool
}

// ArtifactStatus is the externally visible state of one artifact.
type ArtifactStatus struct {
	Loaded bool         `json:"loaded"`
	Size   int64        `json:"size"`
	Error  string       `json:"error,omitempty"`
	Info   ArtifactInfo `json:"info"`
}

// Manager loads all artifacts from the model store, caching the raw bytes on
// disk. Artifact-level failures are recorded in Status rather than aborting
// the load.
type Manager struct {
	client *Client
	disk   *DiskCache
	logger zerolog.Logger

	mu       sync.RWMutex
	loaded   map[string]*Artifact
	statuses map[string]*ArtifactStatus
}

func NewManager(client *Client, disk *DiskCache, logger zerolog.Logger) *Manager {
	return &Manager{
		client:   client,
		disk:     disk,
		logger:   logger,
		loaded:   map[string]*Artifact{},
		statuses: map[string]*ArtifactStatus{},
	}
}

// LoadAll lists the repository and loads every artifact, reusing the disk
// cache where possible. Returns the number of successfully loaded artifacts.
func (m *Manager) LoadAll(ctx context.Context) (int, error) {
	infos, err := m.client.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list artifacts: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.loaded = map[string]*Artifact{}
	m.statuses = map[string]*ArtifactStatus{}

	count := 0
	for _, info := range infos {
		status := &ArtifactStatus{Info: info}
		m.statuses[info.Name] = status

		artifact, err := m.loadOne(ctx, info)
		if err != nil {
			m.logger.Warn().Err(err).Str("artifact", info.Name).Msg("failed to load artifact")
			status.Error = err.Error()
			continue
		}
		m.loaded[info.Name] = artifact
		status.Loaded = true
		status.Size = int64(len(artifact.Data))
		count++
	}
	m.logger.Info().Int("loaded", count).Int("total", len(infos)).Msg("model artifacts loaded")
	return count, nil
}

func (m *Manager) loadOne(ctx context.Context, info ArtifactInfo) (*Artifact, error) {
	var data []byte
	var err error
	if m.disk.Has(info.Name) {
		data, err = m.disk.Read(info.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to read cached artifact: %w", err)
		}
	} else {
		data, err = m.client.Download(ctx, info.Name)
		if err != nil {
			return nil, err
		}
		if err := m.disk.Put(info.Name, data); err != nil {
			return nil, fmt.Errorf("failed to cache artifact: %w", err)
		}
	}

	artifact := &Artifact{Info: info, Data: data}
	switch path.Ext(info.Name) {
	case ".json":
		if !json.Valid(data) {
			return nil, fmt.Errorf("artifact %q is not valid JSON", info.Name)
		}
		artifact.IsJSON = true
	case ".pkl", ".joblib":
		// opaque payload
	default:
		return nil, fmt.Errorf("unsupported artifact format %q", info.Name)
	}
	return artifact, nil
}

// Refresh clears the disk cache and reloads everything from the store.
func (m *Manager) Refresh(ctx context.Context) (int, error) {
	m.logger.Info().Msg("refreshing model artifacts")
	if err := m.disk.Clear(); err != nil {
		return 0, fmt.Errorf("failed to clear artifact cache: %w", err)
	}
	return m.LoadAll(ctx)
}

// Get returns a loaded artifact by name.
func (m *Manager) Get(name string) (*Artifact, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	artifact, ok := m.loaded[name]
	return artifact, ok
}

// Status reports the state of every artifact seen in the last load.
func (m *Manager) Status() map[string]ArtifactStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	statuses := make(map[string]ArtifactStatus, len(m.statuses))
	for name, status := range m.statuses {
		statuses[name] = *status
	}
	return statuses
}

// Counts returns (loaded, total) artifact counts.
func (m *Manager) Counts() (int, int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.loaded), len(m.statuses)
}

// CacheSize returns the total on-disk size of the artifact cache.
func (m *Manager) CacheSize() (int64, error) {
	return m.disk.Size()
}

func (m *Manager) jsonArtifact(name string) []byte {
	artifact, ok := m.Get(name)
	if !ok || !artifact.IsJSON {
		return nil
	}
	return artifact.Data
}

// CropDatabase returns the raw crop database JSON, or nil when unavailable.
func (m *Manager) CropDatabase() []byte {
	return m.jsonArtifact(ArtifactCropDatabase)
}

// RuleConfig returns the raw rule engine configuration JSON, or nil when
// unavailable.
func (m *Manager) RuleConfig() []byte {
	return m.jsonArtifact(ArtifactRuleConfig)
}

// KnowledgeGraph returns the raw knowledge graph JSON, or nil when
// unavailable.
func (m *Manager) KnowledgeGraph() []byte {
	return m.jsonArtifact(ArtifactKnowledgeGraph)
}
