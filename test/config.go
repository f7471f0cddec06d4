package test

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	LogLevel string `envconfig:"TEST_LOG_LEVEL" default:"error"`
	// TEST_CONNECTION_BUFFER_SIZE bounds the per-connection outbound queue
	ConnectionBufferSize int `envconfig:"TEST_CONNECTION_BUFFER_SIZE" default:"64"`
	RoomBufferSize       int `envconfig:"TEST_ROOM_BUFFER_SIZE" default:"256"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
