package httpclient

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
)

// MultipartBody represents a multipart/form-data request body.
type MultipartBody struct {
	Fields map[string]string
	Files  []FileField
}

// FileField is a file part of a multipart request.
type FileField struct {
	FieldName string
	FileName  string
	// ContentType defaults to application/octet-stream.
	ContentType string
	// Path is read when Reader is nil.
	Path   string
	Reader io.Reader
}

// FileFromPath builds a FileField for a file on disk.
func FileFromPath(fieldName, path, contentType string) FileField {
	return FileField{FieldName: fieldName, FileName: filepath.Base(path), ContentType: contentType, Path: path}
}

func (m *MultipartBody) encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for k, v := range m.Fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", err
		}
	}
	for _, f := range m.Files {
		if err := writeFile(w, f); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

func writeFile(w *multipart.Writer, f FileField) error {
	contentType := f.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		`form-data; name="`+escapeQuotes(f.FieldName)+`"; filename="`+escapeQuotes(f.FileName)+`"`)
	header.Set("Content-Type", contentType)
	part, err := w.CreatePart(header)
	if err != nil {
		return err
	}

	src := f.Reader
	if src == nil {
		file, err := os.Open(f.Path)
		if err != nil {
			return err
		}
		defer file.Close()
		src = file
	}
	_, err = io.Copy(part, src)
	return err
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
