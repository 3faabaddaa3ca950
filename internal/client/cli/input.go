package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/term"
)

// isTerminal is a test seam for term.IsTerminal.
var isTerminal = term.IsTerminal

// GetSimpleText prints a prompt to w and reads a single line of input from reader.
// The trailing newline is trimmed. If EOF occurs after some input was read,
// the partial line is returned.
//
// Example prompt format:
//
//	Prompt text
//	> _
func GetSimpleText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n> "); err != nil {
		return "", err
	}
	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// askSavePath asks where to store a raw response. An empty answer takes
// suggested; "n" or "no" declines.
func askSavePath(reader *bufio.Reader, w io.Writer, suggested string) (string, bool) {
	answer, err := GetSimpleText(reader,
		fmt.Sprintf("Save server response? Enter a path (empty for %q, \"n\" to discard)", suggested), w)
	if err != nil {
		return "", false
	}

	switch strings.ToLower(answer) {
	case "":
		return suggested, true
	case "n", "no":
		return "", false
	default:
		return answer, true
	}
}
