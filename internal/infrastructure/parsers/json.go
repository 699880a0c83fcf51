package parsers

import (
	"encoding/json"
	"fmt"
	"io"
)

// JSONParser parses tasks from JSON format.
type JSONParser struct{}

// Parse reads a JSON array from the reader and returns parsed tasks.
func (p *JSONParser) Parse(r io.Reader) ([]RawTask, error) {
	var tasks []RawTask

	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&tasks); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	// Set line numbers (array index + 1, 1-indexed)
	for i := range tasks {
		tasks[i].LineNum = i + 1
	}

	return tasks, nil
}
