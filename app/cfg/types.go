package cfg

type Cfg struct {
	// Database configuration
	DBPath string

	// Application configuration
	RulesDir          string
	Port              string
	BaseUrl           string
	WorkerCount       int
	SchedulerInterval int
	APIAccessKey      string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
