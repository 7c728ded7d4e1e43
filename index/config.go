package index

import (
	"fmt"
	"log/slog"

	"github.com/arloliu/grmeta/internal/options"
)

// DefaultHeaderBufferSize is the read buffer placed in front of header streams.
// A typical header and extra record pair is a few hundred bytes.
const DefaultHeaderBufferSize = 4096

// minHeaderBufferSize is the smallest buffer bufio accepts without resizing.
const minHeaderBufferSize = 16

// Config holds the settings shared by the header reader strategies.
type Config struct {
	logger       *slog.Logger
	strictLength bool
	bufferSize   int
}

// NewConfig returns the default configuration: logging discarded, lenient
// header lengths and DefaultHeaderBufferSize.
func NewConfig() *Config {
	return &Config{
		logger:     slog.New(slog.DiscardHandler),
		bufferSize: DefaultHeaderBufferSize,
	}
}

// Option configures a header reader.
type Option = options.Option[*Config]

// WithIndexLogger sets the logger receiving debug records about discovered segments.
func WithIndexLogger(logger *slog.Logger) Option {
	return options.New(func(c *Config) error {
		if logger == nil {
			return fmt.Errorf("nil logger")
		}
		c.logger = logger

		return nil
	})
}

// WithStrictHeaderLength requires the "strt" field of attached headers to equal the
// encoded length of the header and extra records. By default "strt" may be larger,
// the gap being skipped as padding.
func WithStrictHeaderLength() Option {
	return options.NoError(func(c *Config) {
		c.strictLength = true
	})
}

// WithHeaderBufferSize sets the read buffer size used while decoding headers.
func WithHeaderBufferSize(size int) Option {
	return options.New(func(c *Config) error {
		if size < minHeaderBufferSize {
			return fmt.Errorf("header buffer size %d is below the minimum of %d", size, minHeaderBufferSize)
		}
		c.bufferSize = size

		return nil
	})
}

func (c *Config) Logger() *slog.Logger { return c.logger }
