package classifier

import (
	"encoding/json"
	"fmt"
)

// MarshalNetwork serializes the network to JSON bytes.
func MarshalNetwork(net *Network) ([]byte, error) {
	return json.Marshal(net)
}

// UnmarshalNetwork deserializes a network from JSON bytes and validates its shape.
func UnmarshalNetwork(data []byte) (*Network, error) {
	var net Network
	if err := json.Unmarshal(data, &net); err != nil {
		return nil, err
	}
	if err := net.Validate(); err != nil {
		return nil, fmt.Errorf("invalid network: %w", err)
	}
	return &net, nil
}
