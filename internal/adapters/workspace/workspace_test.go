package workspace

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/bnema/codelynx/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()

	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func TestListFilesFiltersAndSorts(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"main.go":                     "package main",
		"README.md":                   "# demo",
		"web/app.tsx":                 "export {}",
		"web/vendor.min.js":           "minified",
		"node_modules/pkg/index.js":   "module.exports = {}",
		".git/config":                 "[core]",
		".env":                        "CEREBRAS_API_KEY=x",
		"dist/bundle.js":              "bundled",
		"build/out.json":              "{}",
		"assets/logo.png":             "png",
		"internal/service/service.go": "package service",
	})

	folder, err := New(root)
	require.NoError(t, err)

	files, err := folder.ListFiles(context.Background())
	require.NoError(t, err)

	var paths []string
	for _, file := range files {
		paths = append(paths, file.RelativePath)
	}
	assert.Equal(t, []string{"README.md", "internal/service/service.go", "main.go", "web/app.tsx"}, paths)

	assert.Equal(t, "service.go", files[1].Name)
	assert.Equal(t, ".go", files[1].Extension)
}

func TestListFilesCapsResults(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	files := make(map[string]string, MaxListedFiles+20)
	for i := 0; i < MaxListedFiles+20; i++ {
		files[fmt.Sprintf("src/file_%03d.go", i)] = "package src"
	}
	writeTree(t, root, files)

	folder, err := New(root)
	require.NoError(t, err)

	listed, err := folder.ListFiles(context.Background())
	require.NoError(t, err)
	require.Len(t, listed, MaxListedFiles)
	assert.Equal(t, "src/file_000.go", listed[0].RelativePath)
	assert.Equal(t, fmt.Sprintf("src/file_%03d.go", MaxListedFiles-1), listed[MaxListedFiles-1].RelativePath)
}

func TestReadFileReturnsContentAndLanguage(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{"pkg/handler.py": "print('hi')\n"})

	folder, err := New(root)
	require.NoError(t, err)

	content, err := folder.ReadFile(context.Background(), "pkg/handler.py")
	require.NoError(t, err)
	assert.Equal(t, "pkg/handler.py", content.Name)
	assert.Equal(t, "print('hi')\n", content.Content)
	assert.Equal(t, "python", content.Language)
}

func TestReadFileRejectsUnsafeOrMissingPaths(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{"src/main.go": "package main"})

	folder, err := New(root)
	require.NoError(t, err)

	testCases := []struct {
		name    string
		file    string
		wantErr error
	}{
		{name: "empty", file: "  ", wantErr: errEmptyName},
		{name: "absolute", file: "/etc/passwd", wantErr: errOutsideRoot},
		{name: "traversal", file: "../secret.go", wantErr: errOutsideRoot},
		{name: "nested traversal", file: "src/../../secret.go", wantErr: errOutsideRoot},
		{name: "root itself", file: ".", wantErr: errOutsideRoot},
		{name: "missing", file: "src/absent.go", wantErr: errNotFound},
		{name: "directory", file: "src", wantErr: errIsDirectory},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := folder.ReadFile(context.Background(), tc.file)
			require.Error(t, err)

			var workspaceErr *domain.WorkspaceError
			require.ErrorAs(t, err, &workspaceErr)
			assert.Equal(t, "read file", workspaceErr.Op)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestReadFileFollowsSymlinksOnlyInsideRoot(t *testing.T) {
	t.Parallel()

	outside := t.TempDir()
	writeTree(t, outside, map[string]string{"secret.txt": "top secret"})

	root := t.TempDir()
	writeTree(t, root, map[string]string{"src/main.go": "package main"})
	require.NoError(t, os.Symlink(filepath.Join(outside, "secret.txt"), filepath.Join(root, "leak.txt")))
	require.NoError(t, os.Symlink(outside, filepath.Join(root, "external")))
	require.NoError(t, os.Symlink(filepath.Join(root, "src", "main.go"), filepath.Join(root, "alias.go")))

	folder, err := New(root)
	require.NoError(t, err)

	for _, name := range []string{"leak.txt", "external/secret.txt"} {
		_, err := folder.ReadFile(context.Background(), name)
		assert.ErrorIs(t, err, errOutsideRoot, name)
	}

	content, err := folder.ReadFile(context.Background(), "alias.go")
	require.NoError(t, err)
	assert.Equal(t, "package main", content.Content)
	assert.Equal(t, "go", content.Language)
}

func TestReadFileRejectsOversizedFiles(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	big := make([]byte, MaxFileBytes+1)
	require.NoError(t, os.WriteFile(filepath.Join(root, "huge.txt"), big, 0o644))

	folder, err := New(root)
	require.NoError(t, err)

	_, err = folder.ReadFile(context.Background(), "huge.txt")
	require.ErrorIs(t, err, errFileTooLarge)
}

func TestLanguageFor(t *testing.T) {
	t.Parallel()

	testCases := map[string]string{
		"main.go":      "go",
		"App.TSX":      "typescriptreact",
		"config.yml":   "yaml",
		"notes.txt":    "plaintext",
		"Makefile":     "plaintext",
		"styles.scss":  "scss",
		"lib/mod.rs":   "rust",
		"include/io.h": "c",
	}

	for name, want := range testCases {
		assert.Equal(t, want, LanguageFor(name), name)
	}
}

func TestFolderHonoursCanceledContext(t *testing.T) {
	t.Parallel()

	folder, err := New(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = folder.ListFiles(ctx)
	require.ErrorIs(t, err, context.Canceled)
	_, err = folder.ReadFile(ctx, "main.go")
	require.ErrorIs(t, err, context.Canceled)
}

func TestNewRejectsEmptyRoot(t *testing.T) {
	t.Parallel()

	_, err := New(" ")
	require.Error(t, err)
}
