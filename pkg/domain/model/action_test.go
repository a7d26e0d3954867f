package model_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/octastat/pkg/domain/model"
)

func TestActionConversions(t *testing.T) {
	t.Run("ToSlackAction success", func(t *testing.T) {
		action := model.Action{
			Type: "slack",
			Data: map[string]interface{}{
				"webhook_url": "https://hooks.slack.com/services/T/B/X",
				"message":     "{{.Repository}} report ready",
				"color":       "good",
				"username":    "octastat",
			},
		}

		slackAction, err := action.ToSlackAction()
		gt.NoError(t, err)
		gt.Equal(t, slackAction.WebhookURL, "https://hooks.slack.com/services/T/B/X")
		gt.Equal(t, slackAction.Message, "{{.Repository}} report ready")
		gt.Equal(t, slackAction.Color, "good")
		gt.Equal(t, slackAction.UserName, "octastat")
		gt.Equal(t, slackAction.IconEmoji, "")
	})

	t.Run("ToSlackAction with wrong type", func(t *testing.T) {
		action := model.Action{
			Type: "command",
			Data: map[string]interface{}{
				"command": "echo",
			},
		}

		_, err := action.ToSlackAction()
		gt.Error(t, err)
	})

	t.Run("ToSlackAction without message", func(t *testing.T) {
		action := model.Action{
			Type: "slack",
			Data: map[string]interface{}{
				"webhook_url": "https://example.com/hook",
			},
		}

		_, err := action.ToSlackAction()
		gt.Error(t, err)
	})

	t.Run("ToCommandAction with all fields", func(t *testing.T) {
		action := model.Action{
			Type: "command",
			Data: map[string]interface{}{
				"command": "/usr/local/bin/publish",
				"args":    []interface{}{"--dir", "./output"},
				"timeout": "1m",
				"env":     []string{"FOO=bar"},
			},
		}

		cmdAction, err := action.ToCommandAction()
		gt.NoError(t, err)
		gt.Equal(t, cmdAction.Command, "/usr/local/bin/publish")
		gt.Equal(t, cmdAction.Args, []string{"--dir", "./output"})
		gt.Equal(t, cmdAction.Timeout, time.Minute)
		gt.Equal(t, cmdAction.Env, []string{"FOO=bar"})
	})

	t.Run("ToCommandAction with invalid timeout", func(t *testing.T) {
		action := model.Action{
			Type: "command",
			Data: map[string]interface{}{
				"command": "echo",
				"timeout": "soon",
			},
		}

		_, err := action.ToCommandAction()
		gt.Error(t, err)
	})

	t.Run("ToCommandAction with non-string args", func(t *testing.T) {
		action := model.Action{
			Type: "command",
			Data: map[string]interface{}{
				"command": "echo",
				"args":    []interface{}{1, 2},
			},
		}

		_, err := action.ToCommandAction()
		gt.Error(t, err)
	})

	t.Run("ToCommandAction with scalar env", func(t *testing.T) {
		action := model.Action{
			Type: "command",
			Data: map[string]interface{}{
				"command": "echo",
				"env":     "FOO=bar",
			},
		}

		_, err := action.ToCommandAction()
		gt.Error(t, err)
	})

	t.Run("ToCommandAction without optional fields", func(t *testing.T) {
		action := model.Action{
			Type: "command",
			Data: map[string]interface{}{
				"command": "echo",
			},
		}

		cmdAction, err := action.ToCommandAction()
		gt.NoError(t, err)
		gt.Equal(t, len(cmdAction.Args), 0)
		gt.Equal(t, len(cmdAction.Env), 0)
		gt.Equal(t, cmdAction.Timeout, time.Duration(0))
	})

	t.Run("ToCommandAction without command", func(t *testing.T) {
		action := model.Action{
			Type: "command",
			Data: map[string]interface{}{},
		}

		_, err := action.ToCommandAction()
		gt.Error(t, err)
	})
}
