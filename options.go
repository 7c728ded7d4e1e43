package grmeta

import (
	"fmt"
	"log/slog"

	"github.com/arloliu/grmeta/compress"
	"github.com/arloliu/grmeta/format"
	"github.com/arloliu/grmeta/index"
	"github.com/arloliu/grmeta/internal/options"
	"github.com/arloliu/grmeta/sample"
)

// Config collects the settings of the Open functions.
type Config struct {
	sampleOpts  []sample.Option
	indexOpts   []index.Option
	headerPath  string
	compression format.CompressionType
}

// Option configures the Open functions.
type Option = options.Option[*Config]

func newConfig(opts []Option) (*Config, error) {
	cfg := &Config{}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return cfg, nil
}

// WithLogger sends the debug records of both the header index and the sample
// reader to logger.
func WithLogger(logger *slog.Logger) Option {
	return options.New(func(c *Config) error {
		if logger == nil {
			return fmt.Errorf("nil logger")
		}
		c.indexOpts = append(c.indexOpts, index.WithIndexLogger(logger))
		c.sampleOpts = append(c.sampleOpts, sample.WithLogger(logger))

		return nil
	})
}

// WithSampleOptions passes options to the sample reader.
func WithSampleOptions(opts ...sample.Option) Option {
	return options.NoError(func(c *Config) {
		c.sampleOpts = append(c.sampleOpts, opts...)
	})
}

// WithIndexOptions passes options to the header reader.
func WithIndexOptions(opts ...index.Option) Option {
	return options.NoError(func(c *Config) {
		c.indexOpts = append(c.indexOpts, opts...)
	})
}

// WithHeaderFile reads headers from the detached header file at path instead
// of looking for one next to the data file.
func WithHeaderFile(path string) Option {
	return options.New(func(c *Config) error {
		if path == "" {
			return fmt.Errorf("empty header file path")
		}
		c.headerPath = path

		return nil
	})
}

// WithCompression overrides the archive type guessed from the file extension.
func WithCompression(ct format.CompressionType) Option {
	return options.New(func(c *Config) error {
		if _, err := compress.GetCodec(ct); err != nil {
			return err
		}
		c.compression = ct

		return nil
	})
}
