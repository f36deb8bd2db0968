package cfg

type Cfg struct {
	// Backing files
	CalendarFile   string
	SheetName      string
	ImageDir       string
	CategoriesFile string
	DBPath         string

	// Spreadsheet headers
	NameColumn     string
	DateColumn     string
	CategoryColumn string
	URLColumn      string

	// HTTP
	Port         string
	MaxUploadMB  int
	AuthUser     string
	AuthPassword string
	AuthFile     string

	// Application metadata
	Timezone string
	Debug    bool
	Version  string
}

// FetchCfg configures the image ingestion command.
type FetchCfg struct {
	CalendarFile string
	SheetName    string
	JSONFile     string
	ImageDir     string
	DBPath       string

	URLColumn  string
	DateColumn string
	NameColumn string
	NameBy     string

	WorkerCount int
	Timeout     int
	UserAgent   string
	Referer     string

	Debug bool
}
