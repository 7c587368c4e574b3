package codec

import (
	"encoding/json"

	gojson "github.com/goccy/go-json"
)

// Default is the codec used for newly written segment files.
var Default Codec = GoJSON{}

// GoJSON encodes footers with github.com/goccy/go-json.
type GoJSON struct{}

func (GoJSON) Marshal(v any) ([]byte, error)      { return gojson.Marshal(v) }
func (GoJSON) Unmarshal(data []byte, v any) error { return gojson.Unmarshal(data, v) }
func (GoJSON) Name() string                       { return "go-json" }

// JSON encodes footers with encoding/json. Its output is interchangeable
// with GoJSON for footer types, so files written by either read with both.
type JSON struct{}

func (JSON) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (JSON) Name() string                       { return "json" }
