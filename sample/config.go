package sample

import (
	"fmt"
	"log/slog"

	"github.com/arloliu/grmeta/endian"
	"github.com/arloliu/grmeta/internal/options"
)

// Config holds the Reader settings.
type Config struct {
	logger *slog.Logger
	engine endian.EndianEngine
}

// NewConfig returns the default configuration: little-endian samples, as written
// by producers on common hosts, and logging discarded.
func NewConfig() *Config {
	return &Config{
		logger: slog.New(slog.DiscardHandler),
		engine: endian.GetLittleEndianEngine(),
	}
}

// Option configures a Reader.
type Option = options.Option[*Config]

// WithLogger sets the logger receiving debug records about runs and seeks.
func WithLogger(logger *slog.Logger) Option {
	return options.New(func(c *Config) error {
		if logger == nil {
			return fmt.Errorf("nil logger")
		}
		c.logger = logger

		return nil
	})
}

// WithLittleEndianSamples declares samples stored little-endian. It is the default.
func WithLittleEndianSamples() Option {
	return options.NoError(func(c *Config) {
		c.engine = endian.GetLittleEndianEngine()
	})
}

// WithBigEndianSamples declares samples stored big-endian.
func WithBigEndianSamples() Option {
	return options.NoError(func(c *Config) {
		c.engine = endian.GetBigEndianEngine()
	})
}

// WithNativeSamples declares samples stored in the host byte order, the layout a
// producer writes on the reading machine.
func WithNativeSamples() Option {
	return options.NoError(func(c *Config) {
		c.engine = endian.GetNativeEngine()
	})
}
