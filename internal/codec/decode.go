package codec

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"

	"github.com/klauern/snippetsync/internal/logging"
)

// DecodeError reports a snippet file that is neither valid UTF-8 nor valid in
// the legacy fallback codepage.
type DecodeError struct {
	// Path is the file that could not be decoded.
	Path string
	// Encodings lists the encodings that were attempted, in order.
	Encodings []string
	// Err is the last decoding failure.
	Err error
}

// Error returns a formatted decode error message.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode %s as %s: %v", e.Path, strings.Join(e.Encodings, " or "), e.Err)
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

const (
	encodingUTF8  = "utf-8"
	encodingCP932 = "cp932"
)

var errInvalidUTF8 = fmt.Errorf("invalid %s byte sequence", encodingUTF8)

// DecodeUTF8 decodes raw as UTF-8, dropping a leading byte order mark.
func DecodeUTF8(path string, raw []byte) (string, error) {
	if !utf8.Valid(raw) {
		return "", &DecodeError{Path: path, Encodings: []string{encodingUTF8}, Err: errInvalidUTF8}
	}
	out, err := unicode.UTF8BOM.NewDecoder().Bytes(raw)
	if err != nil {
		return "", &DecodeError{Path: path, Encodings: []string{encodingUTF8}, Err: err}
	}
	return string(out), nil
}

// DecodeWithFallback decodes raw as UTF-8 and, failing that, as cp932
// (Shift_JIS as written by Windows editors).
func DecodeWithFallback(path string, raw []byte) (string, error) {
	if text, err := DecodeUTF8(path, raw); err == nil {
		return text, nil
	}

	out, err := japanese.ShiftJIS.NewDecoder().Bytes(raw)
	if err == nil && strings.ContainsRune(string(out), utf8.RuneError) {
		err = fmt.Errorf("invalid %s byte sequence", encodingCP932)
	}
	if err != nil {
		return "", &DecodeError{
			Path:      path,
			Encodings: []string{encodingUTF8, encodingCP932},
			Err:       err,
		}
	}

	logging.Debug("decoded snippet file with fallback encoding",
		logging.Path(path),
		slog.String("encoding", encodingCP932),
	)
	return string(out), nil
}
