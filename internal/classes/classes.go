// Package classes loads detector class names and maps class ids to labels.
package classes

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Names is an ordered class list where the index is the detector class id.
type Names []string

// Load reads a class list file, one name per line. Blank lines are skipped
// and a file without any name is an error.
func Load(path string) (Names, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open classes file: %w", err)
	}
	defer f.Close()

	names, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read classes file %s: %w", path, err)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("classes file %s has no class names", path)
	}
	return names, nil
}

// Parse reads class names from r.
func Parse(r io.Reader) (Names, error) {
	var names Names
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			names = append(names, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return names, nil
}

// Label returns the name for classID, or the id itself when it is out of range.
func (n Names) Label(classID int) string {
	if classID >= 0 && classID < len(n) {
		return n[classID]
	}
	return strconv.Itoa(classID)
}
