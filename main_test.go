package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/afrah-create/agro-advisor/advisor-api/config"
	"github.com/afrah-create/agro-advisor/advisor-api/models"
)

func TestApplyGitHubConfig(t *testing.T) {
	settings := &config.Settings{
		GitHubRepo:   "configured/repo",
		GitHubBranch: "main",
		GitHubToken:  "secret",
	}

	applyGitHubConfig(settings, &models.GitHubConfig{Branch: "other"})
	assert.Equal(t, "configured/repo", settings.GitHubRepo, "empty repo must not override")
	assert.Equal(t, "main", settings.GitHubBranch)

	applyGitHubConfig(settings, &models.GitHubConfig{GitHubRepo: "someone/models", Branch: "release"})
	assert.Equal(t, "someone/models", settings.GitHubRepo)
	assert.Equal(t, "release", settings.GitHubBranch)
	assert.Equal(t, "secret", settings.GitHubToken, "empty token keeps the configured one")

	applyGitHubConfig(settings, &models.GitHubConfig{GitHubRepo: "someone/models", Branch: "release", Token: "t0k"})
	assert.Equal(t, "t0k", settings.GitHubToken)
}
