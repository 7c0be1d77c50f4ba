package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/your-org/photodisplay/internal/config"
	"github.com/your-org/photodisplay/internal/models"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(cfg config.DatabaseConfig) (*PostgresStore, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.MaxConns)

	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

const photoColumns = `id, owner_id, storage_key, variants, caption_ai, note_user,
	exif, place_auto, location_override, place_display, status, jobs,
	created_at, updated_at`

// CreatePhoto inserts a new photo row in processing state.
func (s *PostgresStore) CreatePhoto(ctx context.Context, ownerID, storageKey string) (*models.Photo, error) {
	p := &models.Photo{
		ID:         uuid.New(),
		OwnerID:    ownerID,
		StorageKey: storageKey,
		Variants:   []models.Variant{},
		Exif:       models.ExifData{HasGPS: false},
		Status:     models.PhotoStatusProcessing,
		Jobs:       map[models.JobKind]models.JobOutcome{},
	}

	variants, exif, jobs, err := marshalPhotoJSON(p)
	if err != nil {
		return nil, err
	}

	err = s.pool.QueryRow(ctx,
		`INSERT INTO photos (id, owner_id, storage_key, variants, exif, status, jobs)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at, updated_at`,
		p.ID, p.OwnerID, p.StorageKey, variants, exif, p.Status, jobs,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create photo: %w", err)
	}
	return p, nil
}

// GetPhoto returns the photo or (nil, nil) when it does not exist.
func (s *PostgresStore) GetPhoto(ctx context.Context, id uuid.UUID) (*models.Photo, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+photoColumns+` FROM photos WHERE id = $1`, id)
	p, err := scanPhoto(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get photo: %w", err)
	}
	return p, nil
}

// GetOwnedPhoto returns the photo only if it belongs to ownerID.
func (s *PostgresStore) GetOwnedPhoto(ctx context.Context, id uuid.UUID, ownerID string) (*models.Photo, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+photoColumns+` FROM photos WHERE id = $1 AND owner_id = $2`, id, ownerID)
	p, err := scanPhoto(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get owned photo: %w", err)
	}
	return p, nil
}

// ListPhotos returns all photos for an owner, newest first.
func (s *PostgresStore) ListPhotos(ctx context.Context, ownerID string) ([]models.Photo, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+photoColumns+` FROM photos WHERE owner_id = $1 ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list photos: %w", err)
	}
	defer rows.Close()

	var photos []models.Photo
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, fmt.Errorf("scan photo: %w", err)
		}
		photos = append(photos, *p)
	}
	return photos, rows.Err()
}

// UpdatePhoto applies mutate to the photo under a row lock and persists the
// result in the same transaction. Concurrent updates for the same photo
// serialize on the lock. Returns (nil, nil) when the photo no longer exists,
// so callers can treat results for deleted photos as no-ops.
func (s *PostgresStore) UpdatePhoto(ctx context.Context, id uuid.UUID, mutate func(*models.Photo) error) (*models.Photo, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin update: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx,
		`SELECT `+photoColumns+` FROM photos WHERE id = $1 FOR UPDATE`, id)
	p, err := scanPhoto(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("lock photo: %w", err)
	}

	if err := mutate(p); err != nil {
		return nil, err
	}
	p.UpdatedAt = time.Now().UTC()

	variants, exif, jobs, err := marshalPhotoJSON(p)
	if err != nil {
		return nil, err
	}
	placeAuto, err := marshalNullable(p.PlaceAuto)
	if err != nil {
		return nil, err
	}
	override, err := marshalNullable(p.LocationOverride)
	if err != nil {
		return nil, err
	}
	display, err := marshalNullable(p.PlaceDisplay)
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx,
		`UPDATE photos SET variants = $2, caption_ai = $3, note_user = $4,
			exif = $5, place_auto = $6, location_override = $7, place_display = $8,
			status = $9, jobs = $10, updated_at = $11
		 WHERE id = $1`,
		p.ID, variants, p.CaptionAI, p.NoteUser, exif, placeAuto, override, display,
		p.Status, jobs, p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("update photo: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit update: %w", err)
	}
	return p, nil
}

// DeletePhoto removes the photo row. Missing rows are not an error.
func (s *PostgresStore) DeletePhoto(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM photos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete photo: %w", err)
	}
	return nil
}

// GetUserSettings returns the settings row for a user, or (nil, nil) when
// none has been created yet.
func (s *PostgresStore) GetUserSettings(ctx context.Context, userID string) (*models.UserSettings, error) {
	var st models.UserSettings
	err := s.pool.QueryRow(ctx,
		`SELECT user_id, detail_only, slideshow_interval_sec, updated_at
		 FROM user_settings WHERE user_id = $1`, userID,
	).Scan(&st.UserID, &st.DetailOnly, &st.SlideshowIntervalSec, &st.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get user settings: %w", err)
	}
	return &st, nil
}

// UpdateUserSettings applies a partial settings update, creating the row with
// defaults on first use. Nil fields keep their current (or default) value.
func (s *PostgresStore) UpdateUserSettings(ctx context.Context, userID string, detailOnly *bool, slideshowIntervalSec *int) (*models.UserSettings, error) {
	var st models.UserSettings
	err := s.pool.QueryRow(ctx,
		`INSERT INTO user_settings (user_id, detail_only, slideshow_interval_sec, updated_at)
		 VALUES ($1, COALESCE($2, FALSE), COALESCE($3, 5), now())
		 ON CONFLICT (user_id) DO UPDATE SET
		     detail_only = COALESCE($2, user_settings.detail_only),
		     slideshow_interval_sec = COALESCE($3, user_settings.slideshow_interval_sec),
		     updated_at = now()
		 RETURNING user_id, detail_only, slideshow_interval_sec, updated_at`,
		userID, detailOnly, slideshowIntervalSec,
	).Scan(&st.UserID, &st.DetailOnly, &st.SlideshowIntervalSec, &st.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("update user settings: %w", err)
	}
	return &st, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPhoto(row rowScanner) (*models.Photo, error) {
	var (
		p         models.Photo
		variants  []byte
		exif      []byte
		placeAuto []byte
		override  []byte
		display   []byte
		jobs      []byte
	)
	err := row.Scan(&p.ID, &p.OwnerID, &p.StorageKey, &variants, &p.CaptionAI,
		&p.NoteUser, &exif, &placeAuto, &override, &display, &p.Status, &jobs,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}

	p.Variants = []models.Variant{}
	if len(variants) > 0 {
		if err := json.Unmarshal(variants, &p.Variants); err != nil {
			return nil, fmt.Errorf("decode variants: %w", err)
		}
	}
	if len(exif) > 0 {
		if err := json.Unmarshal(exif, &p.Exif); err != nil {
			return nil, fmt.Errorf("decode exif: %w", err)
		}
	}
	if err := unmarshalNullable(placeAuto, &p.PlaceAuto); err != nil {
		return nil, fmt.Errorf("decode place_auto: %w", err)
	}
	if err := unmarshalNullable(override, &p.LocationOverride); err != nil {
		return nil, fmt.Errorf("decode location_override: %w", err)
	}
	if err := unmarshalNullable(display, &p.PlaceDisplay); err != nil {
		return nil, fmt.Errorf("decode place_display: %w", err)
	}
	p.Jobs = map[models.JobKind]models.JobOutcome{}
	if len(jobs) > 0 {
		if err := json.Unmarshal(jobs, &p.Jobs); err != nil {
			return nil, fmt.Errorf("decode jobs: %w", err)
		}
	}
	return &p, nil
}

func marshalPhotoJSON(p *models.Photo) (variants, exif, jobs []byte, err error) {
	variants, err = json.Marshal(p.Variants)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("encode variants: %w", err)
	}
	exif, err = json.Marshal(p.Exif)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("encode exif: %w", err)
	}
	jobs, err = json.Marshal(p.Jobs)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("encode jobs: %w", err)
	}
	return variants, exif, jobs, nil
}

func marshalNullable(place *models.Place) ([]byte, error) {
	if place == nil {
		return nil, nil
	}
	data, err := json.Marshal(place)
	if err != nil {
		return nil, fmt.Errorf("encode place: %w", err)
	}
	return data, nil
}

func unmarshalNullable(data []byte, dst **models.Place) error {
	if len(data) == 0 {
		*dst = nil
		return nil
	}
	place := &models.Place{}
	if err := json.Unmarshal(data, place); err != nil {
		return err
	}
	*dst = place
	return nil
}
