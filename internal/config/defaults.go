package config

const (
	defaultConfigPath      = "~/.config/itemqueue/config.toml"
	defaultBackend         = BackendJSON
	defaultMode            = ModePassthrough
	defaultTemplatesDir    = "~/.local/share/itemqueue/templates"
	defaultCredentialsPath = "~/.config/itemqueue/credentials.json"
	defaultSQLitePath      = "~/.local/share/itemqueue/itemqueue.db"
	defaultSQLiteTemplate  = "queue"
	defaultServerName      = "itemqueue"
	defaultLockPath        = "~/.local/share/itemqueue/itemqueue.lock"
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"

	defaultGetToolName  = "get_item"
	defaultPushToolName = "push_item"
	defaultLoadToolName = "load_template"
	defaultListToolName = "list_templates"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Queue: Queue{
			Backend: defaultBackend,
			Mode:    defaultMode,
		},
		Files: Files{
			TemplatesDir: defaultTemplatesDir,
		},
		Sheets: Sheets{
			CredentialsPath: defaultCredentialsPath,
		},
		SQLite: SQLite{
			Path:           defaultSQLitePath,
			ActiveTemplate: defaultSQLiteTemplate,
		},
		Server: Server{
			Name:     defaultServerName,
			LockPath: defaultLockPath,
		},
		Tools: Tools{
			Get:  Tool{Enabled: true, Name: defaultGetToolName},
			Push: Tool{Enabled: true, Name: defaultPushToolName},
			Load: Tool{Enabled: true, Name: defaultLoadToolName},
			List: Tool{Enabled: true, Name: defaultListToolName},
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
