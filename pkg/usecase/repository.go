package usecase

import (
	"context"
	"os/exec"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/octastat/pkg/domain"
	"github.com/m-mizutani/octastat/pkg/domain/model"
)

// DetectRepository resolves the GitHub repository of the git checkout at
// repoPath from its origin remote.
func DetectRepository(ctx context.Context, repoPath string) (*model.Repository, error) {
	cmd := exec.CommandContext(ctx, "git", "remote", "get-url", "origin")
	cmd.Dir = repoPath
	output, err := cmd.Output()
	if err != nil {
		return nil, domain.ErrRepository.Wrap(err)
	}

	remoteURL := strings.TrimSpace(string(output))
	owner, name := parseGitHubURL(remoteURL)
	if owner == "" || name == "" {
		return nil, domain.ErrRepository.Wrap(goerr.New("failed to parse GitHub URL: " + remoteURL))
	}

	return &model.Repository{
		Owner: owner,
		Name:  name,
	}, nil
}

func parseGitHubURL(url string) (owner, repo string) {
	url = strings.TrimSuffix(url, ".git")

	for _, prefix := range []string{"git@github.com:", "https://github.com/", "ssh://git@github.com/"} {
		if !strings.HasPrefix(url, prefix) {
			continue
		}
		parts := strings.Split(strings.TrimPrefix(url, prefix), "/")
		if len(parts) == 2 {
			return parts[0], parts[1]
		}
	}

	return "", ""
}
