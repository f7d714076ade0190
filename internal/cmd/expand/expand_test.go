package expand

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-cli-collective/ecq/pkg/quick"
)

const input = `types { Error, ErrorKind; } errors { quick!(NotFound, "not found", (path)) }`

const expanded = "::error_chain::error_chain! {\n" +
	"    types {\n" +
	"        Error, ErrorKind;\n" +
	"    }\n" +
	"    errors {\n" +
	"        NotFound(path: String) {\n" +
	"            description(\"not found\")\n" +
	"            display(\"not found: {}\", path)\n" +
	"        }\n" +
	"    }\n" +
	"}\n"

func newOptions(t *testing.T, stdin string) (*expandOptions, *bytes.Buffer) {
	t.Helper()
	t.Setenv("ECQ_OUTPUT_FORMAT", "")
	t.Setenv("ECQ_BLOCK_KEYWORD", "")
	var out bytes.Buffer
	return &expandOptions{
		noColor:    true,
		configPath: filepath.Join(t.TempDir(), "config.yml"),
		stdin:      strings.NewReader(stdin),
		stdout:     &out,
	}, &out
}

func TestRunExpand_Stdin(t *testing.T) {
	opts, out := newOptions(t, input)

	require.NoError(t, runExpand(nil, opts))
	assert.Equal(t, expanded, out.String())
}

func TestRunExpand_StdinCompact(t *testing.T) {
	opts, out := newOptions(t, `errors { quick!(A, "a") }`)
	opts.output = "compact"

	require.NoError(t, runExpand(nil, opts))
	assert.Equal(t, `:: error_chain :: error_chain ! { errors { A { description ( "a" ) display ( "a" ) } } }`+"\n", out.String())
}

func TestRunExpand_StdinWriteRejected(t *testing.T) {
	opts, _ := newOptions(t, input)
	opts.write = true

	err := runExpand(nil, opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "standard input")
}

func TestRunExpand_WriteAndDiffRejected(t *testing.T) {
	opts, _ := newOptions(t, input)
	opts.write = true
	opts.diff = true

	assert.EqualError(t, runExpand([]string{"x.ecq"}, opts), "cannot use -w with -d")
}

func TestRunExpand_InvalidOutput(t *testing.T) {
	opts, _ := newOptions(t, input)
	opts.output = "table"

	err := runExpand(nil, opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid output format")
}

func TestRunExpand_MalformedShorthand(t *testing.T) {
	opts, out := newOptions(t, `errors { quick!(A) }`)

	err := runExpand(nil, opts)
	var qe *quick.Error
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, "<stdin>", qe.Pos.Filename)
	assert.Contains(t, err.Error(), "invalid 'quick!()' macro")
	assert.Empty(t, out.String())
}

func TestRunExpand_WriteFiles(t *testing.T) {
	dir := t.TempDir()
	ecq := filepath.Join(dir, "errors.ecq")
	md := filepath.Join(dir, "docs", "README.md")
	require.NoError(t, os.WriteFile(ecq, []byte(input), 0640))
	require.NoError(t, os.MkdirAll(filepath.Dir(md), 0755))
	require.NoError(t, os.WriteFile(md, []byte("Intro\n\n```ecq\n"+input+"\n```\n"), 0644))

	opts, out := newOptions(t, "")
	opts.write = true

	require.NoError(t, runExpand([]string{dir}, opts))
	assert.Empty(t, out.String())

	got, err := os.ReadFile(ecq)
	require.NoError(t, err)
	assert.Equal(t, expanded, string(got))
	fi, err := os.Stat(ecq)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0640), fi.Mode().Perm())

	got, err = os.ReadFile(md)
	require.NoError(t, err)
	assert.Equal(t, "Intro\n\n```ecq\n"+expanded+"```\n", string(got))
}

func TestRunExpand_Diff(t *testing.T) {
	path := filepath.Join(t.TempDir(), "errors.ecq")
	require.NoError(t, os.WriteFile(path, []byte(input), 0644))

	opts, out := newOptions(t, "")
	opts.diff = true

	require.NoError(t, runExpand([]string{path}, opts))
	assert.Contains(t, out.String(), "diff "+path)
	assert.Contains(t, out.String(), "display(\"not found: {}\", path)")

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, input, string(got), "diff must not touch the file")
}

func TestRunExpand_MarkdownWithoutBlocksWarns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.md")
	doc := "nothing to see\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	var logs bytes.Buffer
	log.SetOutput(&logs)
	defer log.SetOutput(os.Stderr)

	opts, out := newOptions(t, "")
	require.NoError(t, runExpand([]string{path}, opts))
	assert.Equal(t, doc, out.String())
	assert.Contains(t, logs.String(), "WARN: "+path+": no ```ecq blocks")
}

func TestRunExpand_CustomLang(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.md")
	require.NoError(t, os.WriteFile(path, []byte("```errs\nerrors { quick!(A, \"a\") }\n```\n"), 0644))

	opts, out := newOptions(t, "")
	opts.lang = "errs"
	require.NoError(t, runExpand([]string{path}, opts))
	assert.Contains(t, out.String(), "display(\"a\")")
}

func TestNewCmdExpand_Flags(t *testing.T) {
	cmd := NewCmdExpand()
	for _, name := range []string{"write", "diff", "lang"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), name)
	}
	assert.Equal(t, "w", cmd.Flags().Lookup("write").Shorthand)
	assert.Equal(t, "d", cmd.Flags().Lookup("diff").Shorthand)
}
