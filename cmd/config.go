package main

import "time"

type Config struct {
	BufferSize      int           `env:"BUFFER_SIZE,required=true"`
	CharReplacement string        `env:"CHARACTER_REPLACEMENT,required=true"`
	LimitMessages   *int          `env:"LIMIT_MESSAGES"`
	SinkTimeout     time.Duration `env:"SINK_TIMEOUT,required=true"`
	MetricInterval  time.Duration `env:"METRIC_INTERVAL,required=true"`
	RestartInterval time.Duration `env:"RESTART_INTERVAL,required=true"`
	BadgerFilepath  string        `env:"BADGER_FILEPATH,required=true"`
	LogLevel        string        `env:"LOG_LEVEL,required=true"`
	Host            string        `env:"HOST,default=localhost"`
	Port            int           `env:"PORT,default=8080"`
	DebugPort       int           `env:"DEBUG_PORT,default=8081"`
}
