package ports

// FileViewer shows a stored file to the user
type FileViewer interface {
	OpenFile(file string) error
}
