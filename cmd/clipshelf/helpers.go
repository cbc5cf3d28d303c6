package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// parseIndex converts a 1-based index as printed by "list" into the 0-based
// index the presenter uses.
func parseIndex(arg string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		return 0, fmt.Errorf("invalid item number %q", arg)
	}
	if n < 1 {
		return 0, fmt.Errorf("item numbers start at 1, got %d", n)
	}
	return n - 1, nil
}

// readText returns args joined by spaces, or all of r when there are none.
func readText(args []string, r io.Reader) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	text := string(data)
	if t, ok := strings.CutSuffix(text, "\r\n"); ok {
		return t, nil
	}
	return strings.TrimSuffix(text, "\n"), nil
}
