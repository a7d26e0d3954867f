package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
)

const (
	ActionTypeSlack   = "slack"
	ActionTypeCommand = "command"
)

// Action is a hook entry of the config file. Type selects the executor and
// the remaining keys are kept in Data.
type Action struct {
	Type string         `yaml:"type"`
	Data map[string]any `yaml:",inline"`
}

// SlackAction posts a templated message to an incoming webhook
type SlackAction struct {
	WebhookURL string `yaml:"webhook_url"`
	Message    string `yaml:"message"`
	Color      string `yaml:"color,omitempty"`      // good, warning, danger, or #hex
	IconEmoji  string `yaml:"icon_emoji,omitempty"` // only if the webhook allows customization
	UserName   string `yaml:"username,omitempty"`   // only if the webhook allows customization
}

// CommandAction runs a command with the report event in its environment
type CommandAction struct {
	Command string        `yaml:"command"`
	Args    []string      `yaml:"args,omitempty"`
	Timeout time.Duration `yaml:"timeout,omitempty"`
	Env     []string      `yaml:"env,omitempty"`
}

func (a *Action) ToSlackAction() (*SlackAction, error) {
	if a.Type != ActionTypeSlack {
		return nil, goerr.New("action is not a slack type", goerr.V("type", a.Type))
	}

	webhookURL, err := requiredString(a.Data, "webhook_url")
	if err != nil {
		return nil, err
	}
	message, err := requiredString(a.Data, "message")
	if err != nil {
		return nil, err
	}

	color, _ := a.Data["color"].(string)
	iconEmoji, _ := a.Data["icon_emoji"].(string)
	userName, _ := a.Data["username"].(string)

	return &SlackAction{
		WebhookURL: webhookURL,
		Message:    message,
		Color:      color,
		IconEmoji:  iconEmoji,
		UserName:   userName,
	}, nil
}

func (a *Action) ToCommandAction() (*CommandAction, error) {
	if a.Type != ActionTypeCommand {
		return nil, goerr.New("action is not a command type", goerr.V("type", a.Type))
	}

	command, err := requiredString(a.Data, "command")
	if err != nil {
		return nil, err
	}

	args, err := optionalStrings(a.Data, "args")
	if err != nil {
		return nil, err
	}
	env, err := optionalStrings(a.Data, "env")
	if err != nil {
		return nil, err
	}

	cmdAction := &CommandAction{
		Command: command,
		Args:    args,
		Env:     env,
	}

	switch v := a.Data["timeout"].(type) {
	case nil:
	case string:
		timeout, err := time.ParseDuration(v)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid timeout format", goerr.V("timeout", v))
		}
		cmdAction.Timeout = timeout
	case time.Duration:
		cmdAction.Timeout = v
	default:
		return nil, goerr.New("command action 'timeout' must be a duration string")
	}

	return cmdAction, nil
}

func requiredString(data map[string]any, key string) (string, error) {
	value, ok := data[key].(string)
	if !ok || value == "" {
		return "", goerr.New("action requires '"+key+"' field", goerr.V("field", key))
	}
	return value, nil
}

// optionalStrings reads a string list, accepting both decoded YAML sequences
// and []string literals.
func optionalStrings(data map[string]any, key string) ([]string, error) {
	switch v := data[key].(type) {
	case nil:
		return nil, nil
	case []string:
		return v, nil
	case []any:
		values := make([]string, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, goerr.New("action '"+key+"' must be string array", goerr.V("field", key))
			}
			values[i] = s
		}
		return values, nil
	default:
		return nil, goerr.New("action '"+key+"' must be an array", goerr.V("field", key))
	}
}
