// Package upload defines the capability the ingestion pipeline consumes for an uploaded file,
// with an adapter over multipart form files and an in-memory adapter for fixtures.
package upload

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
)

// File is an uploaded payload plus what the uploader declared about it.
type File interface {
	Filename() string
	// ContentType is the declared type; empty when the uploader did not send one.
	ContentType() string
	Size() int64
	Bytes() ([]byte, error)
}

type formFile struct {
	fh *multipart.FileHeader
}

// FromFileHeader adapts a multipart form file.
func FromFileHeader(fh *multipart.FileHeader) File {
	return &formFile{fh: fh}
}

func (f *formFile) Filename() string    { return f.fh.Filename }
func (f *formFile) ContentType() string { return f.fh.Header.Get("Content-Type") }
func (f *formFile) Size() int64         { return f.fh.Size }

func (f *formFile) Bytes() ([]byte, error) {
	r, err := f.fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open form file: %w", err)
	}
	defer r.Close()
	return io.ReadAll(r)
}

// InMemory is a File backed by a byte slice.
type InMemory struct {
	name        string
	content     []byte
	contentType string
}

// NewInMemory builds an in-memory upload. contentType may be empty.
func NewInMemory(name string, content []byte, contentType string) *InMemory {
	return &InMemory{name: name, content: content, contentType: contentType}
}

func (m *InMemory) Filename() string       { return m.name }
func (m *InMemory) ContentType() string    { return m.contentType }
func (m *InMemory) Size() int64            { return int64(len(m.content)) }
func (m *InMemory) Bytes() ([]byte, error) { return m.content, nil }

// MultipartBody encodes payload as a single "file" form field, the shape both the classifier
// and the scanner endpoints accept. It returns the body and its Content-Type header value.
func MultipartBody(filename string, payload []byte) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(payload); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return body, w.FormDataContentType(), nil
}
