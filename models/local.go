package models

import (
	"encoding/json"
	"io"
	"os"
	"syscall"
)

// readFileSharedLock reads a file under a shared flock so that a concurrent
// writer holding the exclusive lock cannot be observed mid-write.
func readFileSharedLock(filename string) ([]byte, error) {
	file, err := os.OpenFile(filename, os.O_RDONLY, 0666)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	if err = syscall.Flock(int(file.Fd()), syscall.LOCK_SH); err != nil {
		return nil, err
	}
	defer func() { _ = syscall.Flock(int(file.Fd()), syscall.LOCK_UN) }()

	info, err := file.Stat()
	if err != nil {
		return nil, err
	}
	data := make([]byte, info.Size())
	if _, err = io.ReadFull(file, data); err != nil {
		return nil, err
	}
	return data, nil
}

// writeFileExclusiveLock writes a file under an exclusive flock, truncating
// any previous content.
func writeFileExclusiveLock(filename string, data []byte) error {
	file, err := os.OpenFile(filename, os.O_RDWR|os.O_CREATE, 0666)
	if err != nil {
		return err
	}
	defer file.Close()

	if err = syscall.Flock(int(file.Fd()), syscall.LOCK_EX); err != nil {
		return err
	}
	defer func() { _ = syscall.Flock(int(file.Fd()), syscall.LOCK_UN) }()

	if _, err := file.Write(data); err != nil {
		return err
	}
	return file.Truncate(int64(len(data)))
}

// GitHubConfig mirrors github_config.json from the original deployment.
type GitHubConfig struct {
	GitHubRepo string `json:"github_repo"`
	Branch     string `json:"branch"`
	Token      string `json:"token"`
}

// LoadGitHubConfig reads github_config.json. A missing file is reported via
// os.IsNotExist on the returned error so callers can fall back to env config.
func LoadGitHubConfig(path string) (*GitHubConfig, error) {
	data, err := readFileSharedLock(path)
	if err != nil {
		return nil, err
	}
	var cfg GitHubConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if cfg.Branch == "" {
		cfg.Branch = "main"
	}
	return &cfg, nil
}
