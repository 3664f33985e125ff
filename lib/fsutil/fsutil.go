package fsutil

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
)

// WriteAtomic writes contents to a temporary file next to path and renames
// it into place, so readers never observe a partially written file.
func WriteAtomic(path string, contents []byte) error {
	dir := filepath.Dir(path)
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	_, err = tmp.Write(contents)
	if err != nil {
		tmp.Close()
		return err
	}
	err = tmp.Sync()
	if err != nil {
		tmp.Close()
		return err
	}
	err = tmp.Close()
	if err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// WriteJSON encodes v with two space indentation, html characters are not
// escaped.
func WriteJSON(path string, v any) error {
	contents, err := MarshalIndent(v)
	if err != nil {
		return err
	}
	return WriteAtomic(path, contents)
}

func MarshalIndent(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	err := enc.Encode(v)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
