package config

// DevelopmentConfig returns a Config tuned for a developer's laptop: a
// small concurrency ceiling and fewer trials so a request returns
// quickly.
func DevelopmentConfig() Config {
	c := DefaultConfig()
	c.MaxConcurrentSimulations = 2
	c.DefaultParallelism = 2
	c.DefaultNTrials = 1_000
	return c
}

// ProductionConfig returns a Config tuned for a multi-core server
// handling several concurrent LEC requests at higher fidelity.
func ProductionConfig() Config {
	c := DefaultConfig()
	c.MaxConcurrentSimulations = 32
	c.DefaultParallelism = 16
	c.DefaultNTrials = 100_000
	return c
}
