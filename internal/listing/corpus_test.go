package listing

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeContentFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "titles.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadLines(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{
			name:    "plain lines",
			content: "Sofa\nLamp\nDesk\n",
			want:    []string{"Sofa", "Lamp", "Desk"},
		},
		{
			name:    "windows line endings",
			content: "Sofa\r\nLamp\r\n",
			want:    []string{"Sofa", "Lamp"},
		},
		{
			name:    "interior blank lines keep indices aligned",
			content: "Sofa\n\nDesk\n",
			want:    []string{"Sofa", "", "Desk"},
		},
		{
			name:    "trailing newlines trimmed",
			content: "Sofa\n\n\n",
			want:    []string{"Sofa"},
		},
		{
			name:    "empty file",
			content: "",
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines, err := LoadLines(writeContentFile(t, tt.content))
			require.NoError(t, err)
			assert.Equal(t, tt.want, lines)
		})
	}
}

func TestLoadCorpusMissingFile(t *testing.T) {
	_, err := LoadCorpus(filepath.Join(t.TempDir(), "nope.txt"))
	assert.Error(t, err)
}

func TestCorpusTitle(t *testing.T) {
	corpus := NewCorpus([]string{"Sofa", "Lamp"})

	title, err := corpus.Title(1)
	require.NoError(t, err)
	assert.Equal(t, "Lamp", title)

	_, err = corpus.Title(2)
	assert.ErrorIs(t, err, ErrInvalidIndex)
	_, err = corpus.Title(-1)
	assert.ErrorIs(t, err, ErrInvalidIndex)
}

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Café Table", "cafe table"},
		{"  SOFA  ", "sofa"},
		{"Ghế Sofa Đẹp", "ghe sofa đep"},
		{"plain", "plain"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeTitle(tt.in), "input %q", tt.in)
	}
}
