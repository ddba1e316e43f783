// Package pathmapper translates between catalogue paths (absolute,
// filesystem-local) and the player's relative paths, and discovers the
// player's music root the first time a translation is needed.
package pathmapper

import (
	"context"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fennec-audio/muse/internal/catalogue"
	"github.com/fennec-audio/muse/internal/muserr"
)

// PlayerLister is the subset of PlayerControl root discovery needs: the
// ability to list every path the player knows about.
type PlayerLister interface {
	ListAll(ctx context.Context) ([]string, error)
}

// Mapper performs the two-way path translation described in spec §4.2.
// Discovery runs at most once: its result, root or error, is cached for
// the mapper's lifetime, and a Mapper offers no way to set a root later.
type Mapper struct {
	configPaths []string
	player      PlayerLister
	cat         catalogue.Catalogue

	once sync.Once
	root string
	err  error
}

// New builds a Mapper. configPaths are candidate player-config file
// locations checked first during root discovery (strategy 1); player
// and cat back strategies 2 and 3.
func New(configPaths []string, player PlayerLister, cat catalogue.Catalogue) *Mapper {
	return &Mapper{configPaths: configPaths, player: player, cat: cat}
}

// ToPlayer converts an absolute catalogue path to a player-relative one,
// discovering the root on first use.
func (m *Mapper) ToPlayer(ctx context.Context, absolute string) (string, error) {
	root, err := m.discover(ctx)
	if err != nil {
		return "", err
	}

	rel, err := filepath.Rel(root, absolute)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", muserr.Wrap(muserr.ErrPathMapping, errNotUnderRoot(absolute, root))
	}
	return filepath.ToSlash(rel), nil
}

// ToAbsolute joins a player-relative path under the discovered root.
func (m *Mapper) ToAbsolute(ctx context.Context, relative string) (string, error) {
	if relative == "" {
		return "", muserr.Wrap(muserr.ErrPathMapping, errEmptyRelative())
	}
	root, err := m.discover(ctx)
	if err != nil {
		return "", err
	}
	return filepath.Join(root, filepath.FromSlash(relative)), nil
}

// Root returns the discovered root, running discovery if it hasn't run
// yet.
func (m *Mapper) Root(ctx context.Context) (string, error) {
	return m.discover(ctx)
}

func (m *Mapper) discover(ctx context.Context) (string, error) {
	m.once.Do(func() {
		m.root, m.err = discoverRoot(ctx, m.configPaths, m.player, m.cat)
	})
	return m.root, m.err
}
