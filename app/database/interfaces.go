package database

type ActivityRepository interface {
	RecordUpload(kind, filename string, size int64, remoteAddr string) error
	RecordDownload(postURL, filename, status, message string) error

	RecentUploads(limit int) ([]Upload, error)
	RecentDownloads(limit int) ([]Download, error)
}
