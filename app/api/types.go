package api

import (
	"github.com/lysyi3m/content-calendar/app/calendar"
	"github.com/lysyi3m/content-calendar/app/database"
	"github.com/lysyi3m/content-calendar/app/posts"
)

const (
	defaultActivityLimit = 50
	maxActivityLimit     = 500
)

type Handler struct {
	store          *posts.Store
	resolver       *posts.ImageResolver
	palette        *posts.Palette
	selector       *calendar.Selector
	binder         *calendar.Binder
	activity       database.ActivityRepository
	maxUploadBytes int64
	version        string
}

// uploadPage feeds upload.html for both upload forms.
type uploadPage struct {
	Title   string
	Action  string
	Accept  string
	Hint    string
	Message string
	Error   string
	Version string
}
