package cli

// Flags holds all command-line flag values
type Flags struct {
	// Global flags
	CfgFile    string
	EnvFile    string
	Store      string
	TableName  string
	SQLitePath string
	Translator string
	LogLevel   string

	// serve
	HTTPAddr string

	// query
	Filter string

	// create / update
	Category    string
	ProductID   string
	Name        string
	Description string
	Price       string
	InStock     bool

	// translate
	Language string
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{
		EnvFile: ".env",
		InStock: true,
	}
}
