package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ModelBlob is one versioned, opaque model payload stored under a fixed
// name. The payload format belongs to the recommend package; storage treats
// it as bytes.
type ModelBlob struct {
	Name      string
	Version   int
	Payload   []byte
	TrainedAt time.Time
}

// SaveModelBlob writes a payload under the given name, incrementing the
// stored version. The read-increment-write runs in one transaction so a
// save is all-or-nothing: readers see the previous complete version or the
// new one, never a partial write. Concurrent saves under the same name are
// last-writer-wins.
func (d *DB) SaveModelBlob(name string, payload []byte, now time.Time) (int, error) {
	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var version int
	err = tx.QueryRow(`SELECT version FROM model_data WHERE name = ?`, name).Scan(&version)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("reading model version: %w", err)
	}
	version++

	_, err = tx.Exec(`
		INSERT OR REPLACE INTO model_data (name, version, payload, trained_at)
		VALUES (?, ?, ?, ?)`,
		name, version, payload, now.Unix())
	if err != nil {
		return 0, fmt.Errorf("writing model %q: %w", name, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing model %q: %w", name, err)
	}
	return version, nil
}

// LoadModelBlob reads the current blob for a name. An absent name is not an
// error: it returns (nil, nil), meaning "needs training".
func (d *DB) LoadModelBlob(name string) (*ModelBlob, error) {
	blob := &ModelBlob{Name: name}
	var trainedAt int64
	err := d.db.QueryRow(`
		SELECT version, payload, trained_at FROM model_data WHERE name = ?`,
		name).Scan(&blob.Version, &blob.Payload, &trainedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading model %q: %w", name, err)
	}
	blob.TrainedAt = time.Unix(trainedAt, 0).UTC()
	return blob, nil
}
