package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderTable(t *testing.T) {
	var out bytes.Buffer
	err := render(&out, []byte("name,score\nada,10\ngrace,12\n"), viewOptions{fileName: "s.csv"})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.GreaterOrEqual(t, len(lines), 4)
	assert.Equal(t, []string{"name", "score"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"grace", "12"}, strings.Fields(lines[2]))
	assert.Equal(t, "page 1/1, 2 rows", lines[len(lines)-1])
}

func TestRenderJSONPageIsClamped(t *testing.T) {
	var out bytes.Buffer
	err := render(&out, []byte("n\n1\n2\n3\n"), viewOptions{fileName: "n.csv", page: 7, pageSize: 2, asJSON: true})
	require.NoError(t, err)

	var p struct {
		PageIndex int        `json:"pageIndex"`
		Rows      [][]string `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &p))
	assert.Equal(t, 1, p.PageIndex)
	assert.Equal(t, [][]string{{"3"}}, p.Rows)
}

func TestRenderDecodeError(t *testing.T) {
	err := render(&bytes.Buffer{}, []byte("{broken"), viewOptions{declaredType: "json"})
	assert.ErrorContains(t, err, "failed to parse file")
}

func TestRootCmdReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"a":1,"b":"x"}]`), 0o644))

	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{path, "--json"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), `"headers": [`)
	assert.Contains(t, out.String(), `"x"`)
}
