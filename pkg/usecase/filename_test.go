package usecase_test

import (
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/octastat/pkg/usecase"
)

func TestSanitizeFilename(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{input: "workflow_1_job_build.html", expected: "workflow_1_job_build.html"},
		{input: "workflow_1_job_build / test (ubuntu).html", expected: "workflow_1_job_build  test (ubuntu).html"},
		{input: `a:b*c?d"e<f>g|h\i`, expected: "abcdefghi"},
		{input: "trailing. . ", expected: "trailing"},
		{input: "con", expected: "_con"},
		{input: "LPT1.html", expected: "_LPT1.html"},
		{input: "///", expected: "_"},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			gt.Equal(t, usecase.SanitizeFilename(tc.input), tc.expected)
		})
	}

	t.Run("long names are truncated", func(t *testing.T) {
		gt.Equal(t, len(usecase.SanitizeFilename(strings.Repeat("a", 300))), 255)
	})
}
