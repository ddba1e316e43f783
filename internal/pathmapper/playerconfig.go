package pathmapper

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// readMusicDirectory parses a player config file for the music_directory
// key. Lines are `key value` or `key "value"`; `#` starts a comment; a
// leading `~` in the value expands to the user's home directory.
func readMusicDirectory(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	home, _ := os.UserHomeDir()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := splitConfigLine(line)
		if !ok || key != "music_directory" {
			continue
		}
		return expandHome(value, home), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", fmt.Errorf("music_directory not set in %s", path)
}

func splitConfigLine(line string) (key, value string, ok bool) {
	idx := strings.IndexAny(line, " \t")
	if idx < 0 {
		return "", "", false
	}
	key = line[:idx]
	value = strings.TrimSpace(line[idx+1:])
	value = strings.Trim(value, `"`)
	return key, value, true
}
