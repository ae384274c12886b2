package adapter

import (
	"encoding/json"

	"github.com/gowebpki/jcs"
)

// JSON abstracts encoding so publishers can be tested without real payloads
//
//go:generate mockgen -source=json.go -destination=../mocks/json.go -package=mocks -mock_names=JSON=MockJSON
type JSON interface {
	Marshal(v interface{}) ([]byte, error)
	Unmarshal(data []byte, v interface{}) error
	// MarshalCanonical encodes v as RFC 8785 canonical JSON
	MarshalCanonical(v interface{}) ([]byte, error)
}

// RealJSON implements JSON with encoding/json and gowebpki/jcs
type RealJSON struct{}

// NewJSON creates a real JSON implementation
func NewJSON() JSON {
	return &RealJSON{}
}

func (j *RealJSON) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (j *RealJSON) Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

func (j *RealJSON) MarshalCanonical(v interface{}) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return jcs.Transform(raw)
}
