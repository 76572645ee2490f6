package ports

import "context"

type WorkspaceFile struct {
	Name         string `json:"name"`
	RelativePath string `json:"relativePath"`
	Extension    string `json:"extension"`
}

type FileContent struct {
	Name     string
	Content  string
	Language string
}

type Workspace interface {
	ListFiles(ctx context.Context) ([]WorkspaceFile, error)
	ReadFile(ctx context.Context, name string) (FileContent, error)
}
