// Package emails reads raw MIME messages and decodes them into a canonical
// text body plus embedded image resources.
package emails

import (
	"bytes"
	"fmt"
	"mime"
	"net/mail"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// RawMessage is one opaque source unit: the raw bytes of an .eml file plus
// the filename stem used as a subject fallback.
type RawMessage struct {
	Filename string
	Stem     string
	Raw      []byte
}

// Message parses the raw bytes into a mail message.
func (m *RawMessage) Message() (*mail.Message, error) {
	msg, err := mail.ReadMessage(bytes.NewReader(m.Raw))
	if err != nil {
		return nil, fmt.Errorf("read message %s: %w", m.Filename, err)
	}
	return msg, nil
}

// DirSource enumerates .eml files in a local folder. Files are returned in
// name order so the scan ordering is stable within and across runs.
type DirSource struct {
	dir string
}

// NewDirSource returns a source over the given folder.
func NewDirSource(dir string) *DirSource {
	return &DirSource{dir: dir}
}

// Messages reads every .eml file in the folder.
func (s *DirSource) Messages() ([]*RawMessage, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read mailbox folder %s: %w", s.dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".eml") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	messages := make([]*RawMessage, 0, len(names))
	for _, name := range names {
		raw, err := os.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		messages = append(messages, &RawMessage{
			Filename: name,
			Stem:     strings.TrimSuffix(name, filepath.Ext(name)),
			Raw:      raw,
		})
	}
	return messages, nil
}

// DecodeHeader decodes MIME encoded-word headers, returning the input
// unchanged on failure.
func DecodeHeader(header string) string {
	dec := new(mime.WordDecoder)
	decoded, err := dec.DecodeHeader(header)
	if err != nil {
		return header
	}
	return decoded
}

// SenderAddress extracts the bare address from a From header, falling back
// to the raw header when it does not parse.
func SenderAddress(from string) string {
	addr, err := mail.ParseAddress(from)
	if err != nil {
		return strings.TrimSpace(from)
	}
	return addr.Address
}
