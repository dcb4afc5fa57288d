package see

import (
	"net/url"
	"strings"

	"github.com/denisbrodbeck/machineid"
	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"
)

// MQTTPublisher publishes frames to an MQTT topic.
type MQTTPublisher struct {
	Client      paho.Client
	TopicPrefix string
	Topic       string
}

// ClientOptionsFromURL creates ClientOptions from a broker URL of the
// form mqtt://host:port/topic-prefix. The client ID defaults to the
// machine ID and can be overridden with a client-id query parameter.
func ClientOptionsFromURL(serverURL string) (*paho.ClientOptions, string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, "", err
	}
	var server string
	if u.Scheme == "" || u.Scheme == "mqtt" {
		server = "tcp"
	} else {
		server = u.Scheme
	}
	server += "://" + u.Host

	topicPrefix := strings.TrimPrefix(u.Path, "/")

	opts := paho.NewClientOptions()
	opts.AddBroker(server).
		SetAutoReconnect(true).
		SetCleanSession(true)
	if u.User != nil {
		opts.SetUsername(u.User.Username())
		if pwd, ok := u.User.Password(); ok {
			opts.SetPassword(pwd)
		}
	}

	clientID := u.Query().Get("client-id")
	if clientID == "" {
		if id, err := machineid.ID(); err == nil {
			clientID = "see-" + id
		} else {
			glog.Warningf("machine id unavailable: %v", err)
			clientID = "see"
		}
	}
	opts.SetClientID(clientID)

	return opts, topicPrefix, nil
}

// NewMQTTPublisher connects a publisher to the broker at brokerURL.
func NewMQTTPublisher(brokerURL, topic string) (*MQTTPublisher, error) {
	opts, topicPrefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	p := &MQTTPublisher{TopicPrefix: topicPrefix, Topic: topic}
	opts.SetOnConnectHandler(func(paho.Client) {
		glog.Info("connected")
	})
	opts.SetConnectionLostHandler(func(c paho.Client, err error) {
		glog.Warningf("connection lost: %v", err)
	})
	p.Client = paho.NewClient(opts)
	if token := p.Client.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	return p, nil
}

// Publish implements Publisher. Frames are fire-and-forget at QoS 0; a
// dropped frame is superseded by the next one.
func (p *MQTTPublisher) Publish(frame []byte) error {
	p.Client.Publish(p.TopicPrefix+p.Topic, 0, false, frame)
	return nil
}

// Close implements io.Closer.
func (p *MQTTPublisher) Close() error {
	p.Client.Disconnect(0)
	return nil
}
