package dialogue

import (
	"os"

	"dialogcast/handlers/transcript"
)

func parseFile(path string) ([]transcript.Segment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return transcript.Parse(f, []string{"Painter", "Musician"})
}
