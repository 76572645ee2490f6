package workspace

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bnema/codelynx/internal/domain"
	"github.com/bnema/codelynx/internal/ports"
	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	afsurl "github.com/viant/afs/url"
)

const (
	MaxListedFiles = 100
	MaxFileBytes   = 1 << 20
)

var (
	errEmptyName    = errors.New("file name is empty")
	errOutsideRoot  = errors.New("path escapes the workspace folder")
	errNotFound     = errors.New("file not found")
	errIsDirectory  = errors.New("path is a directory")
	errFileTooLarge = fmt.Errorf("file exceeds %d bytes", MaxFileBytes)
)

var skippedDirs = map[string]bool{
	"node_modules": true,
	"dist":         true,
	"build":        true,
}

// languageByExt maps listed extensions to editor language ids.
var languageByExt = map[string]string{
	".js":    "javascript",
	".jsx":   "javascriptreact",
	".ts":    "typescript",
	".tsx":   "typescriptreact",
	".py":    "python",
	".java":  "java",
	".cpp":   "cpp",
	".c":     "c",
	".h":     "c",
	".cs":    "csharp",
	".go":    "go",
	".rs":    "rust",
	".php":   "php",
	".rb":    "ruby",
	".swift": "swift",
	".kt":    "kotlin",
	".html":  "html",
	".css":   "css",
	".scss":  "scss",
	".sass":  "sass",
	".less":  "less",
	".json":  "json",
	".xml":   "xml",
	".yaml":  "yaml",
	".yml":   "yaml",
	".md":    "markdown",
	".txt":   "plaintext",
}

// Folder is a workspace rooted at one directory, read through an afs service.
type Folder struct {
	fs   afs.Service
	root string
}

var _ ports.Workspace = (*Folder)(nil)

func New(root string) (*Folder, error) {
	return NewWithService(afs.New(), root)
}

func NewWithService(fs afs.Service, root string) (*Folder, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("workspace root is empty")
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve workspace root: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}

	return &Folder{fs: fs, root: filepath.Clean(abs)}, nil
}

func (f *Folder) Root() string {
	return f.root
}

// ListFiles returns source-like files sorted by relative path, at most MaxListedFiles of them.
func (f *Folder) ListFiles(ctx context.Context) ([]ports.WorkspaceFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var files []ports.WorkspaceFile
	if err := f.walk(ctx, f.root, &files); err != nil {
		return nil, &domain.WorkspaceError{Op: "list files", Path: f.root, Err: err}
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].RelativePath < files[j].RelativePath
	})
	if len(files) > MaxListedFiles {
		files = files[:MaxListedFiles]
	}

	return files, nil
}

func (f *Folder) ReadFile(ctx context.Context, name string) (ports.FileContent, error) {
	if err := ctx.Err(); err != nil {
		return ports.FileContent{}, err
	}

	location, err := f.resolve(name)
	if err != nil {
		return ports.FileContent{}, &domain.WorkspaceError{Op: "read file", Path: name, Err: err}
	}

	exists, err := f.fs.Exists(ctx, location)
	if err != nil {
		return ports.FileContent{}, &domain.WorkspaceError{Op: "read file", Path: name, Err: err}
	}
	if !exists {
		return ports.FileContent{}, &domain.WorkspaceError{Op: "read file", Path: name, Err: errNotFound}
	}

	object, err := f.fs.Object(ctx, location)
	if err != nil {
		return ports.FileContent{}, &domain.WorkspaceError{Op: "read file", Path: name, Err: err}
	}
	if object.IsDir() {
		return ports.FileContent{}, &domain.WorkspaceError{Op: "read file", Path: name, Err: errIsDirectory}
	}
	if object.Size() > MaxFileBytes {
		return ports.FileContent{}, &domain.WorkspaceError{Op: "read file", Path: name, Err: errFileTooLarge}
	}

	data, err := f.fs.DownloadWithURL(ctx, location)
	if err != nil {
		return ports.FileContent{}, &domain.WorkspaceError{Op: "read file", Path: name, Err: err}
	}

	return ports.FileContent{
		Name:     name,
		Content:  string(data),
		Language: LanguageFor(name),
	}, nil
}

// LanguageFor returns the language id for a file name, plaintext when the extension is unknown.
func LanguageFor(name string) string {
	if language, ok := languageByExt[strings.ToLower(filepath.Ext(name))]; ok {
		return language
	}
	return "plaintext"
}

func (f *Folder) walk(ctx context.Context, dir string, out *[]ports.WorkspaceFile) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	objects, err := f.fs.List(ctx, dir)
	if err != nil {
		return fmt.Errorf("list %s: %w", dir, err)
	}

	for _, object := range objects {
		location := objectPath(object)
		if location == dir {
			continue
		}

		name := object.Name()
		if object.IsDir() {
			if strings.HasPrefix(name, ".") || skippedDirs[name] {
				continue
			}
			if err := f.walk(ctx, location, out); err != nil {
				return err
			}
			continue
		}

		if !listable(name) {
			continue
		}

		rel, err := filepath.Rel(f.root, location)
		if err != nil {
			continue
		}
		*out = append(*out, ports.WorkspaceFile{
			Name:         name,
			RelativePath: filepath.ToSlash(rel),
			Extension:    filepath.Ext(name),
		})
	}

	return nil
}

// resolve must reject anything that would leave the root once joined or once symlinks are followed.
func (f *Folder) resolve(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", errEmptyName
	}

	slashed := filepath.ToSlash(trimmed)
	if filepath.IsAbs(trimmed) || path.IsAbs(slashed) || filepath.VolumeName(trimmed) != "" {
		return "", errOutsideRoot
	}

	cleaned := path.Clean(slashed)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", errOutsideRoot
	}

	location := filepath.Join(f.root, filepath.FromSlash(cleaned))
	resolved, err := filepath.EvalSymlinks(location)
	if err != nil {
		// Missing paths are reported as not found by the caller.
		return location, nil
	}
	if !within(f.root, resolved) {
		return "", errOutsideRoot
	}

	return resolved, nil
}

func within(root, target string) bool {
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func listable(name string) bool {
	if strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".min.js") {
		return false
	}
	_, ok := languageByExt[strings.ToLower(filepath.Ext(name))]
	return ok
}

func objectPath(object storage.Object) string {
	return filepath.Clean(afsurl.Path(object.URL()))
}
