package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractCommands(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "named fence only",
			text: "I will tidy up.\n```commands\nmkdir archive\n# move old notes\nold.txt -> archive/\n```\nThat's it.",
			want: []string{"mkdir archive", "old.txt -> archive/"},
		},
		{
			name: "other fences ignored when a named fence exists",
			text: "```json\n{}\n```\n```commands\ntouch a.txt\n```",
			want: []string{"touch a.txt"},
		},
		{
			name: "plain lines",
			text: "touch a.txt\n\n  mkdir b  \n",
			want: []string{"touch a.txt", "mkdir b"},
		},
		{
			name: "unnamed fence treated as plain",
			text: "```\ntouch a.txt\n```",
			want: []string{"touch a.txt"},
		},
		{
			name: "empty named fence",
			text: "```commands\n```\nDone.",
			want: nil,
		},
		{
			name: "crlf",
			text: "```commands\r\ntouch a.txt\r\n```",
			want: []string{"touch a.txt"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractCommands(tt.text))
		})
	}
}
