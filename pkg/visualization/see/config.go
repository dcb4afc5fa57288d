package see

import (
	"flag"

	"github.com/physlab/physview.go/pkg/scene"
)

// Config represents configuration for see.
type Config struct {
	// Stdout enables printing frames as JSON lines.
	Stdout bool
	// MQTTBrokerURL publishes frames to this broker when set.
	// e.g. mqtt://host:port/physview/
	MQTTBrokerURL string
	// Topic is the MQTT topic relative to the broker URL prefix.
	Topic string
	// StreamAddr serves a websocket frame stream when set.
	StreamAddr string
}

var defaultConfig = Config{
	Stdout: true,
	Topic:  "frames",
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.BoolVar(&defaultConfig.Stdout, "see-stdout", defaultConfig.Stdout, "Print frames to stdout as JSON lines")
	flag.StringVar(&defaultConfig.MQTTBrokerURL, "see-mqtt", defaultConfig.MQTTBrokerURL, "MQTT broker URL to publish frames to")
	flag.StringVar(&defaultConfig.Topic, "see-topic", defaultConfig.Topic, "MQTT topic for frames")
	flag.StringVar(&defaultConfig.StreamAddr, "see-stream", defaultConfig.StreamAddr, "Listen address for the websocket frame stream")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a default config.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// NewAdapter creates the adapter with publishers per the config. The
// returned stream is non-nil when a stream address is configured and
// must be spawned as a background runner.
func (c *Config) NewAdapter(sync *scene.Sync) (*Adapter, *Stream, error) {
	a := NewAdapter(c, sync)
	if c.Stdout {
		a.AddPublisher(&StdoutPublisher{})
	}
	if c.MQTTBrokerURL != "" {
		p, err := NewMQTTPublisher(c.MQTTBrokerURL, c.Topic)
		if err != nil {
			return nil, nil, err
		}
		a.AddPublisher(p)
	}
	var stream *Stream
	if c.StreamAddr != "" {
		stream = NewStream(c.StreamAddr)
		a.AddPublisher(stream)
	}
	return a, stream, nil
}
