package transcript

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const filenameLayout = "20060102_150405"

// Filename returns the transcript name for a run started at t.
func Filename(t time.Time) string {
	return fmt.Sprintf("conversation_%s.txt", t.Format(filenameLayout))
}

// Write renders each utterance as "<Label>: <text>" followed by a blank line.
// Line breaks and whitespace runs inside an utterance become single spaces,
// since a blank line ends a record.
func Write(w io.Writer, t *Transcript) error {
	bw := bufio.NewWriter(w)
	for i, text := range t.Utterances {
		if _, err := fmt.Fprintf(bw, "%s: %s\n\n", t.SpeakerOf(i), strings.Join(strings.Fields(text), " ")); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteFile writes t into dir under Filename(now) and returns the path.
func WriteFile(dir string, t *Transcript, now time.Time) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create transcript dir: %w", err)
	}

	path := filepath.Join(dir, Filename(now))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create transcript: %w", err)
	}
	if err := Write(f, t); err != nil {
		f.Close()
		return "", fmt.Errorf("write transcript: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close transcript: %w", err)
	}
	return path, nil
}
