package main

import "time"

type Config struct {
	Host                 string        `env:"HOST,default=localhost"`
	Port                 int           `env:"PORT,default=8080"`
	StoreBackend         string        `env:"STORE_BACKEND,default=sqlite"`
	DataDir              string        `env:"DATA_DIR,required=true"`
	BufferSize           int           `env:"BUFFER_SIZE,default=256"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=64"`
	RestartInterval      time.Duration `env:"RESTART_INTERVAL,default=200ms"`
	MetricInterval       time.Duration `env:"METRIC_INTERVAL,default=5s"`
	LogLevel             string        `env:"LOG_LEVEL,default=info"`
	AllowedOrigins       string        `env:"ALLOWED_ORIGINS,default=*"`
	StaticDir            string        `env:"STATIC_DIR"`
}
