// Package dataset reads and writes JSON-lines time series files, the
// interchange format used by the hosting platform's data channels.
package dataset

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"forecast-shell/internal/domain"
)

// maxLineBytes bounds a single serialized entry; long daily series
// with samples stay well under this.
const maxLineBytes = 16 * 1024 * 1024

// ReadChannel loads every *.json file in dir, sorted by name, into a
// single dataset.
func ReadChannel(dir string) (domain.Dataset, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)

	var ds domain.Dataset
	for _, file := range files {
		entries, err := readFile(file)
		if err != nil {
			return nil, err
		}
		ds = append(ds, entries...)
	}
	return ds, nil
}

func readFile(path string) (domain.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	entries, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entries, nil
}

// Decode parses JSON-lines entries from r. Blank lines are skipped.
func Decode(r io.Reader) (domain.Dataset, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var ds domain.Dataset
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var e domain.Entry
		if err := json.Unmarshal([]byte(text), &e); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		ds = append(ds, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return ds, nil
}

// Write stores the dataset as one JSON-lines file.
func Write(path string, ds domain.Dataset) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, e := range ds {
		data, err := json.Marshal(e)
		if err != nil {
			return err
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			return err
		}
	}
	return w.Flush()
}
