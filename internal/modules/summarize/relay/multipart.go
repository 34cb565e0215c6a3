package relay

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"sort"
	"strings"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// encodeMultipart rebuilds form as a multipart body. File parts keep their original
// filename and declared Content-Type so the backend sees the upload unchanged.
func encodeMultipart(form *multipart.Form) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	for _, name := range sortedKeys(form.File) {
		for _, fh := range form.File[name] {
			if err := writeFilePart(w, name, fh); err != nil {
				return nil, "", err
			}
		}
	}
	for _, name := range sortedKeys(form.Value) {
		for _, value := range form.Value[name] {
			if err := w.WriteField(name, value); err != nil {
				return nil, "", fmt.Errorf("write field %q: %w", name, err)
			}
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}

func writeFilePart(w *multipart.Writer, name string, fh *multipart.FileHeader) error {
	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(name), quoteEscaper.Replace(fh.Filename)))
	h.Set("Content-Type", contentType)

	part, err := w.CreatePart(h)
	if err != nil {
		return fmt.Errorf("create part %q: %w", name, err)
	}

	src, err := fh.Open()
	if err != nil {
		return fmt.Errorf("open upload %q: %w", fh.Filename, err)
	}
	defer src.Close()

	if _, err := io.Copy(part, src); err != nil {
		return fmt.Errorf("copy upload %q: %w", fh.Filename, err)
	}
	return nil
}

// describeForm lists "name: value" entries for logging; files show their filename.
func describeForm(form *multipart.Form) []string {
	out := make([]string, 0, len(form.File)+len(form.Value))
	for _, name := range sortedKeys(form.File) {
		for _, fh := range form.File[name] {
			out = append(out, fmt.Sprintf("%s: %s", name, fh.Filename))
		}
	}
	for _, name := range sortedKeys(form.Value) {
		for _, value := range form.Value[name] {
			out = append(out, fmt.Sprintf("%s: %s", name, value))
		}
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
