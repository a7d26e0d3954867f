package usecase

import (
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/octastat/pkg/domain"
	"github.com/m-mizutani/octastat/pkg/domain/interfaces"
	"github.com/m-mizutani/octastat/pkg/domain/model"
	"gopkg.in/yaml.v3"
)

// Per-directory config file names, in lookup order
var configFileNames = []string{".octastat.yml", ".octastat.yaml"}

const configTemplate = `# octastat configuration
#
# Hooks run after a report has been generated (report_success) or when
# generating it failed (report_failure).
#
# Available action types:
#   command: run a command. OCTASTAT_EVENT_TYPE, OCTASTAT_REPOSITORY,
#            OCTASTAT_WORKFLOW, OCTASTAT_WORKFLOW_ID, OCTASTAT_OUTPUT_DIR,
#            OCTASTAT_FILES and OCTASTAT_ERROR are set in its environment.
#   slack:   post a message to a Slack incoming webhook. The message is a Go
#            template with .Repository, .Workflow, .WorkflowID, .EventType,
#            .Files, .Error and .Timestamp.

hooks:
  report_success:
    # - type: command
    #   command: rsync
    #   args: ["-a", "${OCTASTAT_OUTPUT_DIR}/", "reports.example.com:/srv/ci-reports/"]
    #   timeout: 1m
    # - type: slack
    #   webhook_url: ${SLACK_WEBHOOK_URL}
    #   message: "CI report for {{.Repository}} ({{.Workflow}}) is ready: {{len .Files}} files"
    #   color: good

  report_failure:
    # - type: slack
    #   webhook_url: ${SLACK_WEBHOOK_URL}
    #   message: "CI report for {{.Repository}} failed: {{.Error}}"
    #   color: danger
`

type configService struct {
	defaultPath string
}

// NewConfigService creates a ConfigService that falls back to
// ~/.config/octastat/config.yml
func NewConfigService() interfaces.ConfigService {
	return &configService{
		defaultPath: filepath.Join(defaultConfigDir(), "config.yml"),
	}
}

func (c *configService) Load(path string) (*model.Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 - path is given by the user
	if err != nil {
		return nil, goerr.Wrap(domain.ErrConfiguration.Wrap(err), "failed to read config file", goerr.V("path", path))
	}

	var config model.Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, goerr.Wrap(domain.ErrConfiguration.Wrap(err), "failed to parse config file", goerr.V("path", path))
	}

	return &config, nil
}

// LoadDefault loads the config at the default path, or returns an empty config
// if there is no such file
func (c *configService) LoadDefault() (*model.Config, error) {
	if _, err := os.Stat(c.defaultPath); os.IsNotExist(err) {
		return &model.Config{}, nil
	}
	return c.Load(c.defaultPath)
}

// LoadFromDirectory loads the first config file found in dir. The returned path
// is empty when no file was found.
func (c *configService) LoadFromDirectory(dir string) (*model.Config, string, error) {
	path := c.findConfigInDirectory(dir)
	if path == "" {
		return &model.Config{}, "", nil
	}

	config, err := c.Load(path)
	if err != nil {
		return nil, path, err
	}
	return config, path, nil
}

func (c *configService) findConfigInDirectory(dir string) string {
	for _, name := range configFileNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

func (c *configService) GetDefaultPath() string {
	return c.defaultPath
}

func (c *configService) GenerateTemplate() string {
	return configTemplate
}

func (c *configService) SaveTemplate(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return goerr.Wrap(domain.ErrConfiguration, "config file already exists, use --force to overwrite", goerr.V("path", path))
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return domain.ErrConfiguration.Wrap(err)
	}

	if err := os.WriteFile(path, []byte(c.GenerateTemplate()), 0600); err != nil {
		return domain.ErrConfiguration.Wrap(err)
	}

	return nil
}
