// Package instructions assembles the prompts sent to the command proposer:
// the base system prompt, optional personal instructions and the per-turn
// sandbox context.
package instructions

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// MaxPersonalInstructionsBytes caps the personal instructions file.
const MaxPersonalInstructionsBytes = 64 * 1024

// LoadPersonalInstructions reads the user's instructions file. A missing file
// or empty path yields "" without error. Content beyond
// MaxPersonalInstructionsBytes is dropped.
func LoadPersonalInstructions(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read instructions %s: %w", path, err)
	}
	if len(data) > MaxPersonalInstructionsBytes {
		data = data[:MaxPersonalInstructionsBytes]
	}
	return strings.TrimSpace(string(data)), nil
}
