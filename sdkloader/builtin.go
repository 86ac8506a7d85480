package sdkloader

import (
	"fmt"

	"github.com/cloudobjects/cloudobjects-go/jsonld"
)

// Credential property namespaces.
const (
	AWSNS       = "coid://amazonws.cloudobjects.io/"
	GetStreamNS = "coid://getstreamio.cloudobjects.io/"
	PusherNS    = "coid://pusher.cloudobjects.io/"
)

// AWSCredentials configures an Amazon Web Services client.
type AWSCredentials struct {
	AccessKeyID     string
	SecretAccessKey string
	Options         map[string]any
}

// GetStreamCredentials configures a Stream client.
type GetStreamCredentials struct {
	Key    string
	Secret string
}

// PusherCredentials configures a Pusher client.
type PusherCredentials struct {
	Key     string
	Secret  string
	AppID   string
	Options map[string]any
}

// AWS reads amazonws:accessKeyId and amazonws:secretAccessKey. Caller
// options are passed through.
func AWS(ns *jsonld.Node, r *jsonld.Reader, opts map[string]any) (any, error) {
	vals, err := required(ns, r, AWSNS, "accessKeyId", "secretAccessKey")
	if err != nil {
		return nil, err
	}
	return &AWSCredentials{AccessKeyID: vals[0], SecretAccessKey: vals[1], Options: opts}, nil
}

// GetStream reads the Stream key and secret.
func GetStream(ns *jsonld.Node, r *jsonld.Reader, _ map[string]any) (any, error) {
	vals, err := required(ns, r, GetStreamNS, "key", "secret")
	if err != nil {
		return nil, err
	}
	return &GetStreamCredentials{Key: vals[0], Secret: vals[1]}, nil
}

// Pusher reads the Pusher key, secret and app id. Caller options are
// passed through.
func Pusher(ns *jsonld.Node, r *jsonld.Reader, opts map[string]any) (any, error) {
	vals, err := required(ns, r, PusherNS, "key", "secret", "appId")
	if err != nil {
		return nil, err
	}
	return &PusherCredentials{Key: vals[0], Secret: vals[1], AppID: vals[2], Options: opts}, nil
}

func required(ns *jsonld.Node, r *jsonld.Reader, base string, names ...string) ([]string, error) {
	vals := make([]string, len(names))
	for i, name := range names {
		vals[i] = r.FirstValueString(ns, base+name, "")
		if vals[i] == "" {
			return nil, fmt.Errorf("%w: namespace has no <%s%s>",
				jsonld.ErrInvalidObjectConfiguration, base, name)
		}
	}
	return vals, nil
}
