// Copyright (c) 2025-present deep.rent GmbH (https://deep.rent)
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package codec decodes and encodes configuration files consumed by
// provider.ConfigProvider, backed by goccy/go-json and goccy/go-yaml.
package codec

import (
	"fmt"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	yaml "github.com/goccy/go-yaml"
)

// Decoder unmarshals raw bytes into v.
type Decoder interface {
	Decode(data []byte, v any) error
}

// Encoder marshals v into raw bytes.
type Encoder interface {
	Encode(v any) ([]byte, error)
}

// Codec both decodes and encodes a single serialization format.
type Codec interface {
	Decoder
	Encoder
}

type jsonCodec struct{}

func (jsonCodec) Decode(data []byte, v any) error { return json.Unmarshal(data, v) }
func (jsonCodec) Encode(v any) ([]byte, error)    { return json.Marshal(v) }

type yamlCodec struct{}

func (yamlCodec) Decode(data []byte, v any) error { return yaml.Unmarshal(data, v) }
func (yamlCodec) Encode(v any) ([]byte, error)    { return yaml.Marshal(v) }

// JSON is the Codec backed by goccy/go-json.
var JSON Codec = jsonCodec{}

// YAML is the Codec backed by goccy/go-yaml.
var YAML Codec = yamlCodec{}

// Infer selects a Codec from path's file extension: ".json" for JSON,
// ".yaml"/".yml" for YAML. Any other extension is an error, since guessing
// a format from content alone risks silently misreading a malformed file.
func Infer(path string) (Codec, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return JSON, nil
	case ".yaml", ".yml":
		return YAML, nil
	default:
		return nil, fmt.Errorf("codec: cannot infer format from %q", path)
	}
}
