package database

import (
	"fmt"
	"time"
)

var _ ActivityRepository = (*ActivityRepo)(nil)

// ActivityRepo records uploads and image downloads
type ActivityRepo struct {
	db  *DB
	now func() time.Time
}

func NewActivityRepository(db *DB) *ActivityRepo {
	return &ActivityRepo{db: db, now: time.Now}
}

func (r *ActivityRepo) RecordUpload(kind, filename string, size int64, remoteAddr string) error {
	_, err := r.db.Exec(`
		INSERT INTO uploads (kind, filename, size, remote_addr, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, kind, filename, size, remoteAddr, r.now().UTC().Unix())
	if err != nil {
		return fmt.Errorf("failed to record upload: %w", err)
	}
	return nil
}

func (r *ActivityRepo) RecordDownload(postURL, filename, status, message string) error {
	_, err := r.db.Exec(`
		INSERT INTO downloads (post_url, filename, status, message, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, postURL, filename, status, message, r.now().UTC().Unix())
	if err != nil {
		return fmt.Errorf("failed to record download: %w", err)
	}
	return nil
}

func (r *ActivityRepo) RecentUploads(limit int) ([]Upload, error) {
	rows, err := r.db.Query(`
		SELECT id, kind, filename, size, remote_addr, created_at
		FROM uploads
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get uploads: %w", err)
	}
	defer rows.Close()

	uploads := make([]Upload, 0)
	for rows.Next() {
		var u Upload
		var createdAt int64
		if err := rows.Scan(&u.ID, &u.Kind, &u.Filename, &u.Size, &u.RemoteAddr, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan upload row: %w", err)
		}
		u.CreatedAt = time.Unix(createdAt, 0).UTC()
		uploads = append(uploads, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating upload rows: %w", err)
	}

	return uploads, nil
}

func (r *ActivityRepo) RecentDownloads(limit int) ([]Download, error) {
	rows, err := r.db.Query(`
		SELECT id, post_url, filename, status, message, created_at
		FROM downloads
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get downloads: %w", err)
	}
	defer rows.Close()

	downloads := make([]Download, 0)
	for rows.Next() {
		var d Download
		var createdAt int64
		if err := rows.Scan(&d.ID, &d.PostURL, &d.Filename, &d.Status, &d.Message, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan download row: %w", err)
		}
		d.CreatedAt = time.Unix(createdAt, 0).UTC()
		downloads = append(downloads, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating download rows: %w", err)
	}

	return downloads, nil
}
