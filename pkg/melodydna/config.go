package melodydna

import "github.com/himanishpuri/MelodyDNA/pkg/melodydna/search"

const (
	DefaultHeuristic = "builtin:monotonic"
	DefaultSavePath  = "melodies.json"
)

type Config struct {
	// HeuristicRef is a YAML/JSON file path or "builtin:<name>".
	HeuristicRef string
	SavePath     string
	Algorithm    string
	// Seed 0 seeds from the clock.
	Seed        uint64
	Temperature float64
	Cooling     float64
	// Resume starts from the population stored in the sink instead of a random one.
	Resume    bool
	Logger    Logger
	Sink      Sink
	Player    Player
	Judge     search.Judge
	Observers []search.Observer
}

type Option func(*Config)

func WithHeuristic(ref string) Option {
	return func(c *Config) {
		c.HeuristicRef = ref
	}
}

// WithSavePath picks the sink by extension, see NewSink. Ignored when WithSink is given.
func WithSavePath(path string) Option {
	return func(c *Config) {
		c.SavePath = path
	}
}

func WithAlgorithm(name string) Option {
	return func(c *Config) {
		c.Algorithm = name
	}
}

func WithSeed(seed uint64) Option {
	return func(c *Config) {
		c.Seed = seed
	}
}

func WithTemperature(t float64) Option {
	return func(c *Config) {
		c.Temperature = t
	}
}

func WithCooling(cooling float64) Option {
	return func(c *Config) {
		c.Cooling = cooling
	}
}

func WithResume(resume bool) Option {
	return func(c *Config) {
		c.Resume = resume
	}
}

func WithLogger(log Logger) Option {
	return func(c *Config) {
		c.Logger = log
	}
}

func WithSink(sink Sink) Option {
	return func(c *Config) {
		c.Sink = sink
	}
}

func WithPlayer(p Player) Option {
	return func(c *Config) {
		c.Player = p
	}
}

// WithJudge switches the genetic search to tournament selection decided by j.
func WithJudge(j search.Judge) Option {
	return func(c *Config) {
		c.Judge = j
	}
}

func WithObserver(obs search.Observer) Option {
	return func(c *Config) {
		c.Observers = append(c.Observers, obs)
	}
}

func defaultConfig() *Config {
	return &Config{
		HeuristicRef: DefaultHeuristic,
		SavePath:     DefaultSavePath,
		Algorithm:    search.AlgorithmGenetic,
		Temperature:  search.DefaultTemperature,
		Cooling:      search.DefaultCooling,
	}
}
