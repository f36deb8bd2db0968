package database

import (
	"time"
)

const (
	UploadKindCalendar = "calendar"
	UploadKindImage    = "image"
)

type Upload struct {
	ID         int64     `json:"id"`
	Kind       string    `json:"kind"`
	Filename   string    `json:"filename"`
	Size       int64     `json:"size"`
	RemoteAddr string    `json:"remote_addr"`
	CreatedAt  time.Time `json:"created_at"`
}

type Download struct {
	ID        int64     `json:"id"`
	PostURL   string    `json:"post_url"`
	Filename  string    `json:"filename"`
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
