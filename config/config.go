package config

// InitializeConfig wires the process singletons in dependency order. The
// logger comes up first so every later constructor can report through it.
func InitializeConfig() error {
	NewLoggerService()

	for _, connect := range []func() error{
		ConnectDatabase,
		NewCacheService,
		NewInfluxDB,
		ConnectNats,
	} {
		if err := connect(); err != nil {
			return err
		}
	}

	return nil
}
