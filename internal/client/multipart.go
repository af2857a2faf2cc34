package client

import (
	"bytes"
	"io"
	"mime/multipart"
	"sort"
)

// Upload is a file sent with a form or to the image uploader
type Upload struct {
	FileName    string
	ContentType string
	Body        io.Reader
}

// MultipartForm is a multipart/form-data body
type MultipartForm struct {
	Fields map[string]string
	// FileField names the part carrying File
	FileField string
	File      *Upload
}

func (f *MultipartForm) encode() (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	keys := make([]string, 0, len(f.Fields))
	for k := range f.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := w.WriteField(k, f.Fields[k]); err != nil {
			return nil, "", err
		}
	}

	if f.File != nil && f.FileField != "" {
		part, err := w.CreateFormFile(f.FileField, f.File.FileName)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(part, f.File.Body); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}
