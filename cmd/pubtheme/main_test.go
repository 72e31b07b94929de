package main_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	main "github.com/eringen/pubtheme/cmd/pubtheme"
)

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	err := main.NewMain().Run(context.Background(), args, strings.NewReader(stdin), stdout, stderr)
	return stdout.String(), stderr.String(), err
}

func TestCmdClassify(t *testing.T) {
	t.Parallel()

	out, _, err := run(t, "", "classify", "--host", "blog.hashnode.dev", "--domain", "example.com",
		"/about/", "https://docs.example.com/x", "https://github.com/x", "mailto:a@b.c")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "internal\t-\t-\t/about/", lines[0])
	assert.Equal(t, "internal\t-\t-\thttps://docs.example.com/x", lines[1])
	assert.Equal(t, "external\t_blank\tnoopener noreferrer\thttps://github.com/x", lines[2])
	assert.Equal(t, "internal\t-\t-\tmailto:a@b.c", lines[3])
}

func TestCmdClassifyForeignExternal(t *testing.T) {
	t.Parallel()

	out, _, err := run(t, "", "classify", "--host", "blog.hashnode.dev", "--foreign-external", "mailto:a@b.c")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "external\t_blank"))
}

func TestCmdRewrite(t *testing.T) {
	t.Parallel()

	in := `<p><a href="https://github.com/x" target="_self">gh</a> <a href="/about/">about</a></p>`
	for _, strategy := range []string{"tree", "pattern"} {
		t.Run(strategy, func(t *testing.T) {
			t.Parallel()

			out, _, err := run(t, in, "rewrite", "--host", "blog.hashnode.dev", "--strategy", strategy)
			require.NoError(t, err)
			assert.Contains(t, out, `target="_blank"`)
			assert.Contains(t, out, `rel="noopener noreferrer"`)
			assert.NotContains(t, out, `_self`)
			assert.Equal(t, 1, strings.Count(out, `target=`))
		})
	}
}

func TestCmdRewriteRejectsUnknownStrategy(t *testing.T) {
	t.Parallel()

	_, _, err := run(t, "", "rewrite", "--host", "blog.hashnode.dev", "--strategy", "dom")
	assert.Error(t, err)
}

func TestCmdAudit(t *testing.T) {
	t.Parallel()

	page := `<html><body>
<a href="/about/" data-client-link>about</a>
<a href="https://github.com/x">gh</a>
<a href="https://x.com/y" target="_blank">x</a>
<a href="/posts/">posts</a>
</body></html>`
	path := filepath.Join(t.TempDir(), "page.html")
	require.NoError(t, os.WriteFile(path, []byte(page), 0o644))

	out, _, err := run(t, "", "audit", "--host", "blog.hashnode.dev", path)
	require.NoError(t, err)

	assert.Contains(t, out, "client")
	assert.Contains(t, out, "opened  \thttps://github.com/x")
	assert.Contains(t, out, "native  \thttps://x.com/y")
	assert.Contains(t, out, "same-tab\t/posts/")
	assert.Contains(t, out, "4 links, 1 opened in a new context, 3 swept")
}

func TestCmdAuditWrite(t *testing.T) {
	t.Parallel()

	out, _, err := run(t, `<a href="https://github.com/x">gh</a>`, "audit", "--host", "blog.hashnode.dev", "-w")
	require.NoError(t, err)
	assert.Contains(t, out, `target="_blank"`)
	assert.Contains(t, out, `data-smart-link-processed="true"`)
}

func TestCmdVersion(t *testing.T) {
	t.Parallel()

	out, _, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "pubtheme dev\n", out)
}

func TestRunWithoutCommand(t *testing.T) {
	t.Parallel()

	_, _, err := run(t, "")
	assert.ErrorContains(t, err, "no command specified")
}

func TestCmdServeInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pubtheme.yaml")
	require.NoError(t, os.WriteFile(path, []byte("publication_host: blog.hashnode.dev\n"), 0o644))

	_, _, err := run(t, "", "serve", "--config", path)
	assert.ErrorContains(t, err, "SessionSecret")
}
