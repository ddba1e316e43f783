package catalogue

import (
	"context"
	"database/sql"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/fennec-audio/muse/internal/db"
	"github.com/fennec-audio/muse/internal/errmsg"
	"github.com/fennec-audio/muse/internal/muserr"

	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

// SQLite is the production Catalogue backed by a single SQLite file.
type SQLite struct {
	db *sql.DB
}

// Open creates or reuses the catalogue file at path, applying the
// teacher's concurrency pragmas and schema migrations.
func Open(path string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, muserr.Storage("create catalogue directory", err)
	}

	sdb, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, muserr.Storage("open catalogue", err)
	}

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := sdb.Exec(pragma); err != nil {
			sdb.Close()
			return nil, muserr.Storage("configure catalogue", err)
		}
	}

	if err := initSchema(sdb); err != nil {
		sdb.Close()
		return nil, muserr.Storage("migrate catalogue schema", err)
	}

	return &SQLite{db: sdb}, nil
}

func (c *SQLite) Close() error {
	return c.db.Close()
}

func (c *SQLite) InsertSong(ctx context.Context, path, artist, album, title string) (int64, error) {
	var id int64
	err := db.WithTx(c.db, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `SELECT id FROM songs WHERE path = ?`, path)
		if err := row.Scan(&id); err == nil {
			return nil
		} else if !errors.Is(err, sql.ErrNoRows) {
			return err
		}

		res, err := tx.ExecContext(ctx,
			`INSERT INTO songs (path, artist, album, title) VALUES (?, ?, ?, ?)`,
			path, artist, album, title)
		if err != nil {
			return err
		}
		id, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return 0, muserr.Storage(string(errmsg.OpCatalogueInsert), err)
	}
	return id, nil
}

func (c *SQLite) FindSongByID(ctx context.Context, id int64) (Song, error) {
	return c.scanSong(ctx, `SELECT id, path, artist, album, title, touches, listens, skips, loved FROM songs WHERE id = ?`, id)
}

func (c *SQLite) FindSongByPath(ctx context.Context, path string) (Song, error) {
	return c.scanSong(ctx, `SELECT id, path, artist, album, title, touches, listens, skips, loved FROM songs WHERE path = ?`, path)
}

func (c *SQLite) scanSong(ctx context.Context, query string, arg any) (Song, error) {
	var s Song
	var loved int
	row := c.db.QueryRowContext(ctx, query, arg)
	err := row.Scan(&s.ID, &s.Path, &s.Artist, &s.Album, &s.Title, &s.Touches, &s.Listens, &s.Skips, &loved)
	if errors.Is(err, sql.ErrNoRows) {
		return Song{}, muserr.ErrNotFound
	}
	if err != nil {
		return Song{}, muserr.Storage(string(errmsg.OpCatalogueLookup), err)
	}
	s.Loved = loved != 0
	return s, nil
}

// FindSongByName implements the fuzzy seed match described in spec §4.4:
// literal substring match on title/artist/album, then an "artist - title"
// split, then a multi-word match, in that order.
func (c *SQLite) FindSongByName(ctx context.Context, query string) (Song, error) {
	if s, err := c.matchLiteral(ctx, query); err == nil {
		return s, nil
	}

	if idx := strings.Index(query, " - "); idx >= 0 {
		artist, title := query[:idx], query[idx+3:]
		if s, err := c.matchArtistTitle(ctx, artist, title); err == nil {
			return s, nil
		}
	}

	words := strings.Fields(query)
	if len(words) >= 2 {
		if s, err := c.matchMultiWord(ctx, words[0], words[1]); err == nil {
			return s, nil
		}
	}

	return Song{}, muserr.ErrSeedNotFound
}

func (c *SQLite) matchLiteral(ctx context.Context, query string) (Song, error) {
	like := "%" + query + "%"
	return c.scanSongQuery(ctx,
		`SELECT id, path, artist, album, title, touches, listens, skips, loved FROM songs
		 WHERE title LIKE ? OR artist LIKE ? OR album LIKE ?
		 ORDER BY id ASC LIMIT 1`,
		like, like, like)
}

func (c *SQLite) matchArtistTitle(ctx context.Context, artist, title string) (Song, error) {
	return c.scanSongQuery(ctx,
		`SELECT id, path, artist, album, title, touches, listens, skips, loved FROM songs
		 WHERE artist LIKE ? AND title LIKE ?
		 ORDER BY id ASC LIMIT 1`,
		"%"+artist+"%", "%"+title+"%")
}

func (c *SQLite) matchMultiWord(ctx context.Context, a, b string) (Song, error) {
	likeA, likeB := "%"+a+"%", "%"+b+"%"
	return c.scanSongQuery(ctx,
		`SELECT id, path, artist, album, title, touches, listens, skips, loved FROM songs
		 WHERE (title LIKE ? OR artist LIKE ? OR album LIKE ?)
		   AND (title LIKE ? OR artist LIKE ? OR album LIKE ?)
		 ORDER BY id ASC LIMIT 1`,
		likeA, likeA, likeA, likeB, likeB, likeB)
}

func (c *SQLite) scanSongQuery(ctx context.Context, query string, args ...any) (Song, error) {
	var s Song
	var loved int
	row := c.db.QueryRowContext(ctx, query, args...)
	err := row.Scan(&s.ID, &s.Path, &s.Artist, &s.Album, &s.Title, &s.Touches, &s.Listens, &s.Skips, &loved)
	if errors.Is(err, sql.ErrNoRows) {
		return Song{}, muserr.ErrNotFound
	}
	if err != nil {
		return Song{}, muserr.Storage(string(errmsg.OpCatalogueFuzzy), err)
	}
	s.Loved = loved != 0
	return s, nil
}

func (c *SQLite) OutgoingEdges(ctx context.Context, id int64) ([]WeightedSong, error) {
	return c.outgoingEdges(ctx, id, -1)
}

func (c *SQLite) TopOutgoing(ctx context.Context, id int64, n int) ([]WeightedSong, error) {
	return c.outgoingEdges(ctx, id, n)
}

func (c *SQLite) outgoingEdges(ctx context.Context, id int64, limit int) ([]WeightedSong, error) {
	query := `
		SELECT s.id, s.path, s.artist, s.album, s.title, s.touches, s.listens, s.skips, s.loved, e.count
		FROM edges e JOIN songs s ON s.id = e.to_id
		WHERE e.from_id = ?
		ORDER BY e.count DESC, s.id ASC`
	args := []any{id}
	if limit >= 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, muserr.Storage("outgoing edges", err)
	}
	defer rows.Close()

	var out []WeightedSong
	for rows.Next() {
		var ws WeightedSong
		var loved int
		if err := rows.Scan(&ws.Song.ID, &ws.Song.Path, &ws.Song.Artist, &ws.Song.Album, &ws.Song.Title,
			&ws.Song.Touches, &ws.Song.Listens, &ws.Song.Skips, &loved, &ws.Count); err != nil {
			return nil, muserr.Storage("outgoing edges", err)
		}
		ws.Song.Loved = loved != 0
		out = append(out, ws)
	}
	return out, rows.Err()
}

func (c *SQLite) BumpCounters(ctx context.Context, id int64, b Bumps) error {
	if !b.Touch && !b.Listen && !b.Skip {
		return nil
	}
	_, err := c.db.ExecContext(ctx, `
		UPDATE songs SET
			touches = touches + ?,
			listens = listens + ?,
			skips   = skips + ?
		WHERE id = ?`,
		boolToInt(b.Touch), boolToInt(b.Listen), boolToInt(b.Skip), id)
	if err != nil {
		return muserr.Storage(string(errmsg.OpCatalogueBump), err)
	}
	return nil
}

func (c *SQLite) SetLoved(ctx context.Context, id int64, loved bool) error {
	_, err := c.db.ExecContext(ctx, `UPDATE songs SET loved = ? WHERE id = ?`, boolToInt(loved), id)
	if err != nil {
		return muserr.Storage(string(errmsg.OpCatalogueLove), err)
	}
	return nil
}

func (c *SQLite) RecordTransition(ctx context.Context, fromID, toID int64) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO edges (from_id, to_id, count) VALUES (?, ?, 1)
		ON CONFLICT (from_id, to_id) DO UPDATE SET count = count + 1`,
		fromID, toID)
	if err != nil {
		return muserr.Storage(string(errmsg.OpCatalogueTransition), err)
	}
	return nil
}

func (c *SQLite) RandomSong(ctx context.Context, excluding map[int64]bool) (Song, error) {
	return c.randomSong(ctx, excluding, false)
}

func (c *SQLite) RandomSongWithNonzeroStats(ctx context.Context, excluding map[int64]bool) (Song, error) {
	s, err := c.randomSong(ctx, excluding, true)
	if errors.Is(err, muserr.ErrNotFound) {
		return c.randomSong(ctx, excluding, false)
	}
	return s, err
}

func (c *SQLite) randomSong(ctx context.Context, excluding map[int64]bool, nonzeroOnly bool) (Song, error) {
	query := `SELECT id, path, artist, album, title, touches, listens, skips, loved FROM songs`
	if nonzeroOnly {
		query += ` WHERE listens + skips > 0`
	}

	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return Song{}, muserr.Storage(string(errmsg.OpCatalogueRandom), err)
	}
	defer rows.Close()

	var eligible []Song
	for rows.Next() {
		var s Song
		var loved int
		if err := rows.Scan(&s.ID, &s.Path, &s.Artist, &s.Album, &s.Title, &s.Touches, &s.Listens, &s.Skips, &loved); err != nil {
			return Song{}, muserr.Storage(string(errmsg.OpCatalogueRandom), err)
		}
		s.Loved = loved != 0
		if !excluding[s.ID] {
			eligible = append(eligible, s)
		}
	}
	if err := rows.Err(); err != nil {
		return Song{}, muserr.Storage(string(errmsg.OpCatalogueRandom), err)
	}
	if len(eligible) == 0 {
		return Song{}, muserr.ErrNotFound
	}
	return eligible[rand.Intn(len(eligible))], nil
}

func (c *SQLite) AllSongs(ctx context.Context) ([]Song, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT id, path, artist, album, title, touches, listens, skips, loved FROM songs ORDER BY path ASC`)
	if err != nil {
		return nil, muserr.Storage(string(errmsg.OpCatalogueList), err)
	}
	defer rows.Close()

	var out []Song
	for rows.Next() {
		var s Song
		var loved int
		if err := rows.Scan(&s.ID, &s.Path, &s.Artist, &s.Album, &s.Title, &s.Touches, &s.Listens, &s.Skips, &loved); err != nil {
			return nil, muserr.Storage(string(errmsg.OpCatalogueList), err)
		}
		s.Loved = loved != 0
		out = append(out, s)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
