package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config is the process-level configuration. Everything has a
// default; a config file only overrides.
type Config struct {
	GRPCAddr string
	TailAddr string

	JournalDir string
	OutboxDir  string

	KafkaBrokers      []string
	EventsTopic       string
	SummaryTopic      string
	BroadcastEnabled  bool
	BroadcastInterval time.Duration
	SummaryInterval   time.Duration

	MemoryThreshold uint64
	HistoryCapacity int
}

// Load reads an optional config file (helix.yaml in the working
// directory, or an explicit path) over built-in defaults.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("grpc_addr", ":50051")
	v.SetDefault("tail_addr", ":8081")
	v.SetDefault("journal_dir", "./data/journal")
	v.SetDefault("outbox_dir", "./data/outbox")
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.events_topic", "helix.settings")
	v.SetDefault("kafka.summary_topic", "helix.summaries")
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("broadcast_interval", "250ms")
	v.SetDefault("summary_interval", "10s")
	v.SetDefault("log.memory_threshold", 1<<20)
	v.SetDefault("log.history_capacity", 8)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
	} else {
		v.SetConfigName("helix")
		v.AddConfigPath(".")
		// A missing default file is fine; defaults apply.
		_ = v.ReadInConfig()
	}

	cfg := &Config{
		GRPCAddr:          v.GetString("grpc_addr"),
		TailAddr:          v.GetString("tail_addr"),
		JournalDir:        v.GetString("journal_dir"),
		OutboxDir:         v.GetString("outbox_dir"),
		KafkaBrokers:      v.GetStringSlice("kafka.brokers"),
		EventsTopic:       v.GetString("kafka.events_topic"),
		SummaryTopic:      v.GetString("kafka.summary_topic"),
		BroadcastEnabled:  v.GetBool("kafka.enabled"),
		BroadcastInterval: v.GetDuration("broadcast_interval"),
		SummaryInterval:   v.GetDuration("summary_interval"),
		MemoryThreshold:   uint64(v.GetInt64("log.memory_threshold")),
		HistoryCapacity:   v.GetInt("log.history_capacity"),
	}

	if cfg.MemoryThreshold == 0 || cfg.HistoryCapacity < 2 {
		return nil, fmt.Errorf("config: log bounds invalid (threshold=%d, capacity=%d)",
			cfg.MemoryThreshold, cfg.HistoryCapacity)
	}
	return cfg, nil
}
