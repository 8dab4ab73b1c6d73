package rag

import (
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/inbucket/html2text"
)

var ErrUndecodable = errors.New("file is not valid UTF-8 text")

// DecodeDocument turns an uploaded file into plain text.
// HTML uploads are flattened with html2text; anything else must already be UTF-8 text.
func DecodeDocument(filename, contentType string, data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%s: %w", filename, ErrUndecodable)
	}

	text := strings.TrimPrefix(string(data), "\ufeff")
	if !isHTML(filename, contentType) {
		return text, nil
	}

	plain, err := html2text.FromString(text, html2text.Options{OmitLinks: true})
	if err != nil {
		return "", fmt.Errorf("%s: convert html: %w", filename, err)
	}
	return plain, nil
}

func isHTML(filename, contentType string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".html", ".htm":
		return true
	}
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "text/html"
}

// Preview returns the first n runes of text.
func Preview(text string, n int) string {
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	return string([]rune(text)[:n])
}
