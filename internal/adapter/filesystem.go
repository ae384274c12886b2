package adapter

import "os"

// FileSystem defines an interface for file system operations to enable mocking
//
//go:generate mockgen -source=filesystem.go -destination=../mocks/filesystem.go -package=mocks -mock_names=FileSystem=MockFileSystem
type FileSystem interface {
	// ReadFile reads the named file and returns its contents
	ReadFile(name string) ([]byte, error)
}

// RealFileSystem implements FileSystem using the standard os package
type RealFileSystem struct{}

// NewFileSystem creates a new real file system
func NewFileSystem() FileSystem {
	return &RealFileSystem{}
}

func (fs *RealFileSystem) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name) //nolint:gosec,G304
}
