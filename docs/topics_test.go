package docs_test

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/etnz/folio"
	"github.com/etnz/folio/cmd"
	"github.com/etnz/folio/docs"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// readmeTopics extracts the "* name: description" entries of readme.md.
func readmeTopics(t *testing.T) []string {
	t.Helper()
	file, err := os.Open("readme.md")
	require.NoError(t, err)
	defer file.Close()

	var topics []string
	topicRegex := regexp.MustCompile(`^\*\s+([^:]+):.*$`)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if m := topicRegex.FindStringSubmatch(scanner.Text()); len(m) > 1 {
			topics = append(topics, strings.TrimSpace(m[1]))
		}
	}
	require.NoError(t, scanner.Err())
	return topics
}

func TestTopics(t *testing.T) {
	listed := readmeTopics(t)
	require.NotEmpty(t, listed)

	for _, topic := range listed {
		content, err := docs.Topic(topic)
		if assert.NoError(t, err, "topic %q", topic) {
			assert.NotEmpty(t, content)
		}
	}

	all, err := docs.All()
	require.NoError(t, err)
	assert.ElementsMatch(t, listed, all, "every topic file must be listed in readme.md")

	_, err = docs.Topic("nope")
	assert.Error(t, err)
}

func TestTopicsConcat(t *testing.T) {
	one, err := docs.Topic("ledger")
	require.NoError(t, err)

	got, err := docs.Topics("ledger")
	require.NoError(t, err)
	assert.Equal(t, one+"\n", got)

	everything, err := docs.Topics("*")
	require.NoError(t, err)
	assert.Contains(t, everything, "# Ledger")
	assert.Contains(t, everything, "# Configuration")
	assert.NotContains(t, everything, "# fstat manual")
}

// fencedBlocks returns the content of the fenced code blocks of a markdown
// file with the given info string.
func fencedBlocks(t *testing.T, file, lang string) []string {
	t.Helper()
	content, err := os.ReadFile(file)
	require.NoError(t, err)

	root := goldmark.DefaultParser().Parse(text.NewReader(content))
	var blocks []string
	err = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		fcb, ok := n.(*ast.FencedCodeBlock)
		if !entering || !ok || string(fcb.Language(content)) != lang {
			return ast.WalkContinue, nil
		}
		var b strings.Builder
		for i := 0; i < fcb.Lines().Len(); i++ {
			line := fcb.Lines().At(i)
			b.Write(line.Value(content))
		}
		blocks = append(blocks, b.String())
		return ast.WalkContinue, nil
	})
	require.NoError(t, err)
	return blocks
}

func TestLedgerExamples(t *testing.T) {
	blocks := fencedBlocks(t, "ledger.md", "json")
	require.NotEmpty(t, blocks)
	for _, block := range blocks {
		txs, err := folio.DecodeTransactions(strings.NewReader(block))
		require.NoError(t, err)
		for _, tx := range txs {
			assert.True(t, tx.Action.Valid(), "action %q", tx.Action)
			assert.False(t, tx.Date.IsZero())
		}
	}
}

func TestConfigExample(t *testing.T) {
	blocks := fencedBlocks(t, "config.md", "toml")
	require.Len(t, blocks, 1)

	var cfg cmd.Config
	dec := toml.NewDecoder(bytes.NewReader([]byte(blocks[0])))
	dec.DisallowUnknownFields()
	require.NoError(t, dec.Decode(&cfg))

	// The example documents the defaults.
	def := cmd.NewDefaultConfig()
	assert.Equal(t, *def, cfg)
}

func TestTopicFilesHaveOneTitle(t *testing.T) {
	files, err := filepath.Glob("*.md")
	require.NoError(t, err)
	for _, file := range files {
		content, err := os.ReadFile(file)
		require.NoError(t, err)
		root := goldmark.DefaultParser().Parse(text.NewReader(content))
		titles := 0
		for n := root.FirstChild(); n != nil; n = n.NextSibling() {
			if h, ok := n.(*ast.Heading); ok && h.Level == 1 {
				titles++
			}
		}
		assert.Equal(t, 1, titles, file)
	}
}
