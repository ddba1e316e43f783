package pathmapper

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fennec-audio/muse/internal/catalogue"
	"github.com/fennec-audio/muse/internal/muserr"
)

// standardMusicDirs is the fixed fallback list (strategy 4): common
// locations an audio library lives under when nothing else resolved.
var standardMusicDirs = []string{
	"~/Music",
	"~/music",
	"/var/lib/mpd/music",
	"/srv/music",
}

func discoverRoot(ctx context.Context, configPaths []string, player PlayerLister, cat catalogue.Catalogue) (string, error) {
	if root, ok := discoverFromConfig(configPaths); ok {
		return root, nil
	}
	if root, ok := discoverFromPlayerEntry(ctx, player, cat); ok {
		return root, nil
	}
	if root, ok := discoverFromCommonPrefix(ctx, cat); ok {
		return root, nil
	}
	if root, ok := discoverFromStandardDirs(); ok {
		return root, nil
	}
	return "", muserr.Wrap(muserr.ErrPathMapping, fmt.Errorf(
		"could not discover the music root: tried player config files %v, "+
			"the player's first catalogued entry, the catalogue's common path "+
			"prefix, and standard music directories %v — set player_config_paths "+
			"or verify the player and catalogue agree on at least one song",
		configPaths, standardMusicDirs))
}

// strategy 1: parse player config files for music_directory.
func discoverFromConfig(configPaths []string) (string, bool) {
	for _, path := range configPaths {
		dir, err := readMusicDirectory(path)
		if err != nil {
			continue
		}
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir, true
		}
	}
	return "", false
}

// strategy 2: ask the player for its first catalogued entry, then find a
// catalogue song whose path ends with that entry; the root is the
// catalogue path with the entry's suffix stripped.
func discoverFromPlayerEntry(ctx context.Context, player PlayerLister, cat catalogue.Catalogue) (string, bool) {
	if player == nil || cat == nil {
		return "", false
	}
	entries, err := player.ListAll(ctx)
	if err != nil || len(entries) == 0 {
		return "", false
	}
	first := filepath.ToSlash(entries[0])

	songs, err := cat.AllSongs(ctx)
	if err != nil {
		return "", false
	}
	for _, s := range songs {
		p := filepath.ToSlash(s.Path)
		if strings.HasSuffix(p, first) {
			root := strings.TrimSuffix(p, first)
			root = strings.TrimSuffix(root, "/")
			if root != "" {
				return filepath.FromSlash(root), true
			}
		}
	}
	return "", false
}

// strategy 3: longest common path prefix of a sample of catalogue songs.
func discoverFromCommonPrefix(ctx context.Context, cat catalogue.Catalogue) (string, bool) {
	if cat == nil {
		return "", false
	}
	songs, err := cat.AllSongs(ctx)
	if err != nil || len(songs) == 0 {
		return "", false
	}
	if len(songs) > 100 {
		songs = songs[:100]
	}

	prefix := filepath.Dir(songs[0].Path)
	for _, s := range songs[1:] {
		prefix = commonPathPrefix(prefix, filepath.Dir(s.Path))
		if prefix == "" || prefix == "." {
			return "", false
		}
	}

	if info, err := os.Stat(prefix); err == nil && info.IsDir() {
		return prefix, true
	}
	return "", false
}

func commonPathPrefix(a, b string) string {
	as := strings.Split(filepath.ToSlash(a), "/")
	bs := strings.Split(filepath.ToSlash(b), "/")

	n := len(as)
	if len(bs) < n {
		n = len(bs)
	}
	var common []string
	for i := 0; i < n; i++ {
		if as[i] != bs[i] {
			break
		}
		common = append(common, as[i])
	}
	return filepath.FromSlash(strings.Join(common, "/"))
}

// strategy 4: fixed list of standard audio-library directories.
func discoverFromStandardDirs() (string, bool) {
	home, _ := os.UserHomeDir()
	for _, dir := range standardMusicDirs {
		expanded := expandHome(dir, home)
		if info, err := os.Stat(expanded); err == nil && info.IsDir() {
			return expanded, true
		}
	}
	return "", false
}

func expandHome(path, home string) string {
	if home == "" || path == "" || path[0] != '~' {
		return path
	}
	return filepath.Join(home, path[1:])
}

func errNotUnderRoot(absolute, root string) error {
	return fmt.Errorf("path %q is not under the discovered music root %q", absolute, root)
}

func errEmptyRelative() error {
	return fmt.Errorf("relative path is empty")
}
