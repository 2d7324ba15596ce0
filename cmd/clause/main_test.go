package main

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benjaminschreck/go-clause/pkg/clause"
)

const testQuestionnaireYAML = `sections:
  - id: payment
    title: Payment
    type: radio
    default: prepaid
    options:
      - value: prepaid
        label: Prepaid
      - value: postpaid
        label: Postpaid
conditionals:
  pay:
    sectionId: payment
    values:
      prepaid: Paid in advance.
      postpaid: Paid to {{FIELD:acct:account}} after delivery.
`

const testTemplate = `<p>Buyer: {{FIELD:buyer:name}}</p><p>{{COND:pay}}</p>`

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(func() {
		clause.SetGlobalConfig(clause.DefaultConfig())
		clause.SetLogger(nil)
	})

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(bytes.NewBufferString(stdin))
	cmd.SetArgs(append([]string{"--log-level", "off"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestVersionCommand(t *testing.T) {
	out, err := runCLI(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "clause version "+Version+"\n", out)
}

func TestRenderCommand(t *testing.T) {
	dir := t.TempDir()
	tpl := writeFile(t, dir, "contract.html", testTemplate)
	q := writeFile(t, dir, "q.yaml", testQuestionnaireYAML)

	t.Run("defaults", func(t *testing.T) {
		out, err := runCLI(t, "", "render", tpl, "-q", q)
		require.NoError(t, err)
		assert.Contains(t, out, "Paid in advance.")
		assert.Contains(t, out, `data-field="buyer"`)
		assert.NotContains(t, out, "{{")
	})

	t.Run("answer and fields", func(t *testing.T) {
		out, err := runCLI(t, "", "render", tpl, "-q", q, "-a", "payment=postpaid", "-f", "buyer=ACME", "-f", "acct=DE89")
		require.NoError(t, err)
		assert.Contains(t, out, `data-field="acct" data-ph="account">DE89</span>`)
		assert.Contains(t, out, `data-ph="name">ACME</span>`)
		assert.NotContains(t, out, "Paid in advance.")
	})

	t.Run("typed values carried over", func(t *testing.T) {
		first, err := runCLI(t, "", "render", tpl, "-q", q, "-f", "buyer=ACME")
		require.NoError(t, err)
		typed := writeFile(t, dir, "typed.html", first)

		out, err := runCLI(t, "", "render", tpl, "-q", q, "-a", "payment=postpaid", "--typed", typed)
		require.NoError(t, err)
		assert.Contains(t, out, `data-ph="name">ACME</span>`)
	})

	t.Run("stdin and output file", func(t *testing.T) {
		target := filepath.Join(dir, "out.html")
		out, err := runCLI(t, "{{FIELD:x:hint}}", "render", "-", "-o", target)
		require.NoError(t, err)
		assert.Empty(t, out)
		data, err := os.ReadFile(target)
		require.NoError(t, err)
		assert.Contains(t, string(data), `data-field="x"`)
	})

	t.Run("bad pair", func(t *testing.T) {
		_, err := runCLI(t, "", "render", tpl, "-a", "payment")
		assert.ErrorContains(t, err, "expected key=value")
	})

	t.Run("missing template", func(t *testing.T) {
		_, err := runCLI(t, "", "render", filepath.Join(dir, "nope.html"))
		assert.Error(t, err)
	})
}

func TestDetectCommand(t *testing.T) {
	html := `{{COND:b}} {{FIELD:f1:Name}} {{COND:a}} {{COND:b}}`

	out, err := runCLI(t, html, "detect", "-")
	require.NoError(t, err)
	assert.Equal(t, "cond\tb\ncond\ta\nfield\tf1\tName\n", out)

	out, err = runCLI(t, html, "detect", "-", "--json")
	require.NoError(t, err)
	var result struct {
		Conditionals []string          `json:"conditionals"`
		Fields       []clause.FieldRef `json:"fields"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, []string{"b", "a"}, result.Conditionals)
	assert.Equal(t, []clause.FieldRef{{ID: "f1", Hint: "Name"}}, result.Fields)
}

func testDocx(t *testing.T, text string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	doc, err := w.Create("word/document.xml")
	require.NoError(t, err)
	_, err = io.WriteString(doc, `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body><w:p><w:r><w:t>`+text+`</w:t></w:r></w:p></w:body></w:document>`)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestImportCommand(t *testing.T) {
	dir := t.TempDir()
	docx := filepath.Join(dir, "contract.docx")
	require.NoError(t, os.WriteFile(docx, testDocx(t, "Buyer: [Buyer name], account ____"), 0o644))

	out, err := runCLI(t, "", "import", docx)
	require.NoError(t, err)
	assert.Equal(t, "<p>Buyer: {{FIELD:field1:Buyer name}}, account {{FIELD:field2:"+clause.DefaultImportHint+"}}</p>", out)

	t.Run("rejects non docx", func(t *testing.T) {
		txt := writeFile(t, dir, "contract.txt", "plain text")
		_, err := runCLI(t, "", "import", txt)
		require.Error(t, err)
		assert.True(t, clause.IsUnsupportedFormat(err))
	})
}

func TestExportCommand(t *testing.T) {
	dir := t.TempDir()
	tpl := writeFile(t, dir, "contract.html", testTemplate)
	q := writeFile(t, dir, "q.yaml", testQuestionnaireYAML)
	target := filepath.Join(dir, "contract.doc")

	_, err := runCLI(t, "", "export", tpl, "-q", q, "--target", "word", "--title", "Supply <A>", "-o", target)
	require.NoError(t, err)
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(data), `<div class="WordSection1">`)
	assert.Contains(t, string(data), "Supply &lt;A&gt;")
	assert.Contains(t, string(data), "Paid in advance.")

	_, err = runCLI(t, "", "export", tpl, "--target", "pdf")
	assert.ErrorContains(t, err, "unknown export target")
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()
	q := writeFile(t, dir, "q.yaml", testQuestionnaireYAML)

	out, err := runCLI(t, "<p>{{COND:pay}}</p>", "validate", "-", "-q", q, "--strict")
	require.NoError(t, err)
	assert.Equal(t, "no issues\n", out)

	out, err = runCLI(t, "<p>{{COND:other}}</p>", "validate", "-", "-q", q)
	require.NoError(t, err)
	assert.Contains(t, out, "{{COND:other}} has no conditional entry")

	_, err = runCLI(t, "<p>{{COND:other}}</p>", "validate", "-", "-q", q, "--strict")
	var verr *clause.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Issues, 2)
}

func TestParsePairs(t *testing.T) {
	got, err := parsePairs([]string{"a=1", "b=x=y", "c="})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1", "b": "x=y", "c": ""}, got)

	_, err = parsePairs([]string{"=v"})
	assert.Error(t, err)
}
