// Package sqlite provides a SQLite-backed implementation of the repository port.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ewilliams-labs/setlist/internal/core/domain"
	"github.com/ewilliams-labs/setlist/internal/core/ports"
	_ "github.com/mattn/go-sqlite3" // Import the driver anonymously
)

var (
	_ ports.PlaylistRepository = (*Adapter)(nil)
	_ ports.FeatureStore       = (*Adapter)(nil)
)

// Adapter implements the repository port for SQLite
type Adapter struct {
	db *sql.DB
}

// NewAdapter creates a connection and runs the schema migration
func NewAdapter(storagePath string) (*Adapter, error) {
	db, err := sql.Open("sqlite3", storagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}
	// Every connection to :memory: opens its own empty database.
	if storagePath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping sqlite db: %w", err)
	}

	adapter := &Adapter{db: db}
	if err := adapter.migrate(); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return adapter, nil
}

// Close ensures the DB connection is closed gracefully
func (a *Adapter) Close() error {
	return a.db.Close()
}

func (a *Adapter) GetByID(ctx context.Context, id string) (domain.Playlist, error) {
	row := a.db.QueryRowContext(ctx, `
		SELECT id, name, description, prompt, arc, remote_id, remote_url, created_at
		FROM playlists WHERE id = ?
	`, id)
	var (
		playlist                                domain.Playlist
		description, prompt, arc, remoteID, url sql.NullString
		createdAt                               sql.NullTime
	)
	if err := row.Scan(&playlist.ID, &playlist.Name, &description, &prompt, &arc, &remoteID, &url, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Playlist{}, domain.ErrNotFound
		}
		return domain.Playlist{}, fmt.Errorf("failed to load playlist: %w", err)
	}
	playlist.Description = description.String
	playlist.Prompt = prompt.String
	playlist.Arc = domain.Arc(arc.String)
	playlist.RemoteID = remoteID.String
	playlist.RemoteURL = url.String
	if createdAt.Valid {
		playlist.CreatedAt = createdAt.Time.UTC()
	}

	tracks, err := a.loadTracks(ctx, playlist.ID)
	if err != nil {
		return domain.Playlist{}, err
	}
	artists, err := a.loadArtists(ctx, playlist.ID)
	if err != nil {
		return domain.Playlist{}, err
	}
	for i := range tracks {
		tracks[i].Artists = artists[tracks[i].ID]
	}
	playlist.Tracks = tracks

	return playlist, nil
}

// loadTracks returns the playlist's tracks in stored order. The rows are
// fully drained before returning so a single-connection pool can be reused.
func (a *Adapter) loadTracks(ctx context.Context, playlistID string) ([]domain.Track, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT t.id, t.title, t.album_id, t.album_name, t.release_date, t.cover_url,
			t.duration_ms, t.popularity, t.isrc, t.preview_url,
			t.danceability, t.energy, t.valence, t.tempo, t.instrumentalness, t.acousticness
		FROM tracks t
		JOIN playlist_tracks pt ON pt.track_id = t.id
		WHERE pt.playlist_id = ?
		ORDER BY pt.position ASC
	`, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to load playlist tracks: %w", err)
	}
	defer rows.Close()

	tracks := []domain.Track{}
	for rows.Next() {
		var (
			track                                      domain.Track
			albumID, albumName, release, cover         sql.NullString
			isrc, preview                              sql.NullString
			duration, popularity                       sql.NullInt64
			dance, energy, valence, tempo, instr, acou sql.NullFloat64
		)
		if err := rows.Scan(
			&track.ID,
			&track.Title,
			&albumID,
			&albumName,
			&release,
			&cover,
			&duration,
			&popularity,
			&isrc,
			&preview,
			&dance,
			&energy,
			&valence,
			&tempo,
			&instr,
			&acou,
		); err != nil {
			return nil, fmt.Errorf("failed to scan playlist track: %w", err)
		}
		track.Album = domain.Album{
			ID:          albumID.String,
			Name:        albumName.String,
			ReleaseDate: release.String,
			CoverURL:    cover.String,
		}
		track.DurationMs = int(duration.Int64)
		track.Popularity = int(popularity.Int64)
		track.ISRC = isrc.String
		track.PreviewURL = preview.String
		// Energy is always written with a feature set, so it marks presence.
		if energy.Valid {
			track.Features = &domain.AudioFeatures{
				Danceability:     dance.Float64,
				Energy:           energy.Float64,
				Valence:          valence.Float64,
				Tempo:            tempo.Float64,
				Instrumentalness: instr.Float64,
				Acousticness:     acou.Float64,
			}
		}
		tracks = append(tracks, track)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate playlist tracks: %w", err)
	}
	return tracks, nil
}

func (a *Adapter) loadArtists(ctx context.Context, playlistID string) (map[string][]domain.Artist, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT ta.track_id, ta.artist_id, ta.artist_name
		FROM track_artists ta
		JOIN playlist_tracks pt ON pt.track_id = ta.track_id
		WHERE pt.playlist_id = ?
		ORDER BY ta.track_id, ta.position ASC
	`, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to load track artists: %w", err)
	}
	defer rows.Close()

	artists := make(map[string][]domain.Artist)
	for rows.Next() {
		var trackID string
		var artist domain.Artist
		if err := rows.Scan(&trackID, &artist.ID, &artist.Name); err != nil {
			return nil, fmt.Errorf("failed to scan track artist: %w", err)
		}
		artists[trackID] = append(artists[trackID], artist)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate track artists: %w", err)
	}
	return artists, nil
}

func (a *Adapter) GetPlaylistAudioFeatures(ctx context.Context, playlistID string) (domain.AudioFeatures, error) {
	row := a.db.QueryRowContext(ctx, "SELECT id FROM playlists WHERE id = ?", playlistID)
	var id string
	if err := row.Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.AudioFeatures{}, domain.ErrNotFound
		}
		return domain.AudioFeatures{}, fmt.Errorf("failed to load playlist: %w", err)
	}

	// AVG skips NULLs, so unanalyzed tracks do not drag the averages down.
	query := `
		SELECT
			COALESCE(AVG(t.danceability), 0),
			COALESCE(AVG(t.energy), 0),
			COALESCE(AVG(t.valence), 0),
			COALESCE(AVG(t.tempo), 0),
			COALESCE(AVG(t.instrumentalness), 0),
			COALESCE(AVG(t.acousticness), 0)
		FROM tracks t
		JOIN playlist_tracks pt ON pt.track_id = t.id
		WHERE pt.playlist_id = ?
	`

	var features domain.AudioFeatures
	if err := a.db.QueryRowContext(ctx, query, playlistID).Scan(
		&features.Danceability,
		&features.Energy,
		&features.Valence,
		&features.Tempo,
		&features.Instrumentalness,
		&features.Acousticness,
	); err != nil {
		return domain.AudioFeatures{}, fmt.Errorf("failed to load playlist audio features: %w", err)
	}

	return features, nil
}

func (a *Adapter) UpdateTrackFeatures(ctx context.Context, trackID string, features domain.AudioFeatures) error {
	query := `
		UPDATE tracks
		SET
			danceability = ?,
			energy = ?,
			valence = ?,
			tempo = ?,
			instrumentalness = ?,
			acousticness = ?
		WHERE id = ?
	`
	res, err := a.db.ExecContext(
		ctx,
		query,
		features.Danceability,
		features.Energy,
		features.Valence,
		features.Tempo,
		features.Instrumentalness,
		features.Acousticness,
		trackID,
	)
	if err != nil {
		return fmt.Errorf("failed to update track features: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("track %s: %w", trackID, domain.ErrNotFound)
	}

	return nil
}

func (a *Adapter) Save(ctx context.Context, p domain.Playlist) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // no-op once committed

	createdAt := p.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	queryPlaylist := `
		INSERT INTO playlists (id, name, description, prompt, arc, remote_id, remote_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name=excluded.name,
			description=excluded.description,
			prompt=excluded.prompt,
			arc=excluded.arc,
			remote_id=excluded.remote_id,
			remote_url=excluded.remote_url;
	`
	if _, err := tx.ExecContext(ctx, queryPlaylist,
		p.ID, p.Name, p.Description, p.Prompt, string(p.Arc), p.RemoteID, p.RemoteURL, createdAt.UTC(),
	); err != nil {
		return fmt.Errorf("failed to save playlist metadata: %w", err)
	}

	// Links are rebuilt on every save; tracks themselves are shared across playlists.
	if _, err := tx.ExecContext(ctx, "DELETE FROM playlist_tracks WHERE playlist_id = ?", p.ID); err != nil {
		return fmt.Errorf("failed to clear old tracks: %w", err)
	}

	// Features are only overwritten when the incoming track carries them,
	// so a later save never erases features estimated by the worker.
	stmtTrack, err := tx.PrepareContext(ctx, `
		INSERT INTO tracks (
			id, title, album_id, album_name, release_date, cover_url, duration_ms, popularity, isrc, preview_url,
			danceability, energy, valence, tempo, instrumentalness, acousticness
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title=excluded.title,
			album_id=excluded.album_id,
			album_name=excluded.album_name,
			release_date=excluded.release_date,
			cover_url=excluded.cover_url,
			duration_ms=excluded.duration_ms,
			popularity=excluded.popularity,
			isrc=excluded.isrc,
			preview_url=excluded.preview_url,
			danceability=COALESCE(excluded.danceability, tracks.danceability),
			energy=COALESCE(excluded.energy, tracks.energy),
			valence=COALESCE(excluded.valence, tracks.valence),
			tempo=COALESCE(excluded.tempo, tracks.tempo),
			instrumentalness=COALESCE(excluded.instrumentalness, tracks.instrumentalness),
			acousticness=COALESCE(excluded.acousticness, tracks.acousticness);
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare track statement: %w", err)
	}
	defer stmtTrack.Close()

	stmtClearArtists, err := tx.PrepareContext(ctx, "DELETE FROM track_artists WHERE track_id = ?")
	if err != nil {
		return fmt.Errorf("failed to prepare artist cleanup: %w", err)
	}
	defer stmtClearArtists.Close()

	stmtArtist, err := tx.PrepareContext(ctx, `
		INSERT INTO track_artists (track_id, position, artist_id, artist_name)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare artist statement: %w", err)
	}
	defer stmtArtist.Close()

	stmtLink, err := tx.PrepareContext(ctx, `
		INSERT INTO playlist_tracks (playlist_id, track_id, position)
		VALUES (?, ?, ?)
		ON CONFLICT(playlist_id, track_id) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare link statement: %w", err)
	}
	defer stmtLink.Close()

	for i, t := range p.Tracks {
		args := []any{
			t.ID,
			t.Title,
			t.Album.ID,
			t.Album.Name,
			t.Album.ReleaseDate,
			t.Album.CoverURL,
			t.DurationMs,
			t.Popularity,
			t.ISRC,
			t.PreviewURL,
		}
		args = append(args, featureArgs(t.Features)...)
		if _, err := stmtTrack.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("failed to save track %s: %w", t.ID, err)
		}

		if _, err := stmtClearArtists.ExecContext(ctx, t.ID); err != nil {
			return fmt.Errorf("failed to reset artists for %s: %w", t.ID, err)
		}
		for pos, artist := range t.Artists {
			if _, err := stmtArtist.ExecContext(ctx, t.ID, pos, artist.ID, artist.Name); err != nil {
				return fmt.Errorf("failed to save artist for %s: %w", t.ID, err)
			}
		}

		if _, err := stmtLink.ExecContext(ctx, p.ID, t.ID, i); err != nil {
			return fmt.Errorf("failed to link track %s: %w", t.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("transaction commit failed: %w", err)
	}

	return nil
}

// featureArgs returns the six feature columns, all NULL when f is nil.
func featureArgs(f *domain.AudioFeatures) []any {
	if f == nil {
		return []any{nil, nil, nil, nil, nil, nil}
	}
	return []any{f.Danceability, f.Energy, f.Valence, f.Tempo, f.Instrumentalness, f.Acousticness}
}

func (a *Adapter) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS tracks (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		album_id TEXT,
		album_name TEXT,
		release_date TEXT,
		duration_ms INTEGER,
		popularity INTEGER,
		isrc TEXT,
		cover_url TEXT,
		preview_url TEXT,
		danceability REAL,
		energy REAL,
		valence REAL,
		tempo REAL,
		instrumentalness REAL,
		acousticness REAL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS track_artists (
		track_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		artist_id TEXT,
		artist_name TEXT NOT NULL,
		PRIMARY KEY (track_id, position),
		FOREIGN KEY(track_id) REFERENCES tracks(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS playlists (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT,
		prompt TEXT,
		arc TEXT,
		remote_id TEXT,
		remote_url TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS playlist_tracks (
		playlist_id TEXT,
		track_id TEXT,
		position INTEGER NOT NULL DEFAULT 0,
		added_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (playlist_id, track_id),
		FOREIGN KEY(playlist_id) REFERENCES playlists(id) ON DELETE CASCADE,
		FOREIGN KEY(track_id) REFERENCES tracks(id) ON DELETE CASCADE
	);
	`
	if _, err := a.db.Exec(query); err != nil {
		return err
	}

	// Columns added after the first schema; older databases pick them up here.
	columns := []string{
		"ALTER TABLE tracks ADD COLUMN release_date TEXT",
		"ALTER TABLE tracks ADD COLUMN popularity INTEGER",
		"ALTER TABLE playlists ADD COLUMN description TEXT",
		"ALTER TABLE playlists ADD COLUMN prompt TEXT",
		"ALTER TABLE playlists ADD COLUMN arc TEXT",
		"ALTER TABLE playlists ADD COLUMN remote_id TEXT",
		"ALTER TABLE playlists ADD COLUMN remote_url TEXT",
		"ALTER TABLE playlist_tracks ADD COLUMN position INTEGER NOT NULL DEFAULT 0",
	}
	for _, stmt := range columns {
		if _, err := a.db.Exec(stmt); err != nil && !isDuplicateColumnError(err) {
			return fmt.Errorf("%s: %w", stmt, err)
		}
	}

	return nil
}

func isDuplicateColumnError(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "duplicate column") || strings.Contains(err.Error(), "already exists"))
}
