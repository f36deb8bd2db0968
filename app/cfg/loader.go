package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

const (
	DefaultAuthUser     = "admin"
	DefaultAuthPassword = "changeme"
)

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Backing files
	CalendarFile   string `long:"calendar-file" env:"CALENDAR_FILE" default:"Content_Calendar.xlsx" description:"Spreadsheet with scheduled posts"`
	SheetName      string `long:"sheet-name" env:"SHEET_NAME" default:"Feed List" description:"Worksheet holding the post rows"`
	ImageDir       string `long:"image-dir" env:"IMAGE_DIR" default:"downloaded_images" description:"Directory with post images"`
	CategoriesFile string `long:"categories-file" env:"CATEGORIES_FILE" default:"categories.yml" description:"Optional YAML file with sub-category colors"`
	DBPath         string `long:"db-path" env:"DB_PATH" default:"activity.db" description:"SQLite file for the upload/download activity log"`

	// Spreadsheet headers
	NameColumn     string `long:"name-column" env:"NAME_COLUMN" default:"Item Name" description:"Header of the item name column"`
	DateColumn     string `long:"date-column" env:"DATE_COLUMN" default:"Publish Date (DD/MM/YYYY)" description:"Header of the publish date column"`
	CategoryColumn string `long:"category-column" env:"CATEGORY_COLUMN" default:"Sub-Category" description:"Header of the sub-category column"`
	URLColumn      string `long:"url-column" env:"URL_COLUMN" default:"Original FB Post URL" description:"Header of the post URL column"`

	// HTTP
	Port         string `long:"port" env:"PORT" default:"5000" description:"HTTP server port"`
	MaxUploadMB  int    `long:"max-upload-mb" env:"MAX_UPLOAD_MB" default:"32" description:"Maximum accepted upload size in megabytes"`
	AuthUser     string `long:"auth-user" env:"BASIC_AUTH_USER" default:"admin" description:"Basic auth username"`
	AuthPassword string `long:"auth-password" env:"BASIC_AUTH_PASSWORD" default:"changeme" description:"Basic auth password"`
	AuthFile     string `long:"auth-file" env:"AUTH_FILE" description:"File with username:argon2id-hash (overrides auth-user/auth-password)"`

	// Application metadata
	Timezone string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone used for today's date (e.g., UTC, Europe/Tallinn)"`
	Debug    bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

type rawFetchCfg struct {
	CalendarFile string `long:"calendar-file" env:"CALENDAR_FILE" default:"Content_Calendar.xlsx" description:"Spreadsheet with scheduled posts"`
	SheetName    string `long:"sheet-name" env:"SHEET_NAME" default:"Feed List" description:"Worksheet holding the post rows"`
	JSONFile     string `long:"json-file" env:"JSON_FILE" description:"JSON export of scraped posts" required:"true"`
	ImageDir     string `long:"image-dir" env:"IMAGE_DIR" default:"downloaded_images" description:"Directory to save images into"`
	DBPath       string `long:"db-path" env:"DB_PATH" description:"SQLite activity log (optional)"`

	URLColumn  string `long:"url-column" env:"URL_COLUMN" default:"Original FB Post URL" description:"Header of the post URL column"`
	DateColumn string `long:"date-column" env:"DATE_COLUMN" default:"Publish Date (DD/MM/YYYY)" description:"Header of the publish date column"`
	NameColumn string `long:"name-column" env:"NAME_COLUMN" default:"Item Name" description:"Header of the item name column"`
	NameBy     string `long:"name-by" env:"NAME_BY" default:"date" choice:"date" choice:"item" description:"Name saved images by publish date or by item name"`

	WorkerCount int    `long:"worker-count" env:"WORKER_COUNT" default:"4" description:"Number of concurrent downloads"`
	Timeout     int    `long:"timeout" env:"TIMEOUT" default:"30" description:"Per-download timeout in seconds"`
	UserAgent   string `long:"user-agent" env:"USER_AGENT" default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/128.0 Safari/537.36" description:"User agent for image requests"`
	Referer     string `long:"referer" env:"REFERER" default:"https://www.facebook.com/" description:"Referer header for image requests"`

	Debug bool `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

func Load() (*Cfg, error) {
	return LoadArgs(nil)
}

// LoadArgs parses args instead of os.Args when args is non-nil.
func LoadArgs(args []string) (*Cfg, error) {
	var raw rawCfg

	if ok, err := parse(&raw, args); !ok {
		return nil, err
	}

	cfg := &Cfg{
		CalendarFile:   raw.CalendarFile,
		SheetName:      raw.SheetName,
		ImageDir:       raw.ImageDir,
		CategoriesFile: raw.CategoriesFile,
		DBPath:         raw.DBPath,
		NameColumn:     raw.NameColumn,
		DateColumn:     raw.DateColumn,
		CategoryColumn: raw.CategoryColumn,
		URLColumn:      raw.URLColumn,
		Port:           raw.Port,
		MaxUploadMB:    raw.MaxUploadMB,
		AuthUser:       raw.AuthUser,
		AuthPassword:   raw.AuthPassword,
		AuthFile:       raw.AuthFile,
		Timezone:       raw.Timezone,
		Debug:          raw.Debug,
		Version:        GetVersion(),
	}

	if cfg.MaxUploadMB <= 0 {
		return nil, fmt.Errorf("max upload size must be positive, got %d", cfg.MaxUploadMB)
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	return cfg, nil
}

func LoadFetch(args []string) (*FetchCfg, error) {
	var raw rawFetchCfg

	if ok, err := parse(&raw, args); !ok {
		return nil, err
	}

	if raw.WorkerCount <= 0 {
		return nil, fmt.Errorf("worker count must be positive, got %d", raw.WorkerCount)
	}
	if raw.Timeout <= 0 {
		return nil, fmt.Errorf("timeout must be positive, got %d", raw.Timeout)
	}

	return &FetchCfg{
		CalendarFile: raw.CalendarFile,
		SheetName:    raw.SheetName,
		JSONFile:     raw.JSONFile,
		ImageDir:     raw.ImageDir,
		DBPath:       raw.DBPath,
		URLColumn:    raw.URLColumn,
		DateColumn:   raw.DateColumn,
		NameColumn:   raw.NameColumn,
		NameBy:       raw.NameBy,
		WorkerCount:  raw.WorkerCount,
		Timeout:      raw.Timeout,
		UserAgent:    raw.UserAgent,
		Referer:      raw.Referer,
		Debug:        raw.Debug,
	}, nil
}

// parse returns false when help was shown (err is nil) or parsing failed.
func parse(data any, args []string) (bool, error) {
	parser := flags.NewParser(data, flags.Default)

	var err error
	if args == nil {
		_, err = parser.Parse()
	} else {
		_, err = parser.ParseArgs(args)
	}
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return false, nil
			}
		}
		return false, fmt.Errorf("failed to parse configuration: %w", err)
	}

	return true, nil
}

// UsesDefaultCredentials reports whether basic auth still runs on the built-in fallback.
func (c *Cfg) UsesDefaultCredentials() bool {
	return c.AuthFile == "" && c.AuthUser == DefaultAuthUser && c.AuthPassword == DefaultAuthPassword
}

func (c *Cfg) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
			fmt.Printf("Timezone configured: %s\n", timezone)
		}
	}
	return nil
}
