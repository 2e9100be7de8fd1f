package ports

// FileSystem abstracts the file operations the harness performs around
// saved replays: writing session reports and scanning the output directory.
type FileSystem interface {
	// ReadFile reads the entire contents of a file.
	ReadFile(path string) ([]byte, error)

	// WriteFile writes data to a file, creating parent directories and the
	// file itself as necessary.
	WriteFile(path string, data []byte) error

	// MkdirAll creates a directory and all parent directories.
	MkdirAll(path string) error

	// Exists checks if a file or directory exists.
	Exists(path string) (bool, error)

	// Glob returns the paths matching a shell pattern.
	Glob(pattern string) ([]string, error)

	// FileSize returns the size of a file in bytes.
	FileSize(path string) (int64, error)
}
