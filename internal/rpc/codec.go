// Package rpc defines the Connect procedures and messages shared by the server
// and the client. Messages are plain Go structs carried as JSON.
package rpc

import (
	"encoding/json"

	"connectrpc.com/connect"
)

// Codec marshals messages with encoding/json. Its name replaces Connect's
// built-in "json" codec, so requests use Content-Type application/json.
type Codec struct{}

var _ connect.Codec = Codec{}

func (Codec) Name() string { return "json" }

func (Codec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (Codec) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

// WithJSON configures a Connect client or handler to use Codec.
func WithJSON() connect.Option {
	return connect.WithCodec(Codec{})
}
