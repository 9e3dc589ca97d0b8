package types

// UploadedFile is the persisted metadata of a file attached to a quote.
type UploadedFile struct {
	OriginalName string `json:"originalName"`
	StoredName   string `json:"storedName"`
	MimeType     string `json:"mimeType"`
	Size         int64  `json:"size"`
	Path         string `json:"path"`
}

// UploadedFiles is stored as a jsonb list.
type UploadedFiles []UploadedFile

// Described keeps only the client-describable fields, dropping storage
// locations.
func (f UploadedFiles) Described() UploadedFiles {
	if f == nil {
		return nil
	}
	out := make(UploadedFiles, len(f))
	for i, file := range f {
		out[i] = UploadedFile{OriginalName: file.OriginalName, MimeType: file.MimeType, Size: file.Size}
	}
	return out
}
