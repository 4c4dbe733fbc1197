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

package codec_test

import (
	"testing"

	"github.com/deep-rent/infuse/codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInfer_DispatchesByExtension(t *testing.T) {
	j, err := codec.Infer("config.json")
	require.NoError(t, err)
	assert.Equal(t, codec.JSON, j)

	y, err := codec.Infer("config.yaml")
	require.NoError(t, err)
	assert.Equal(t, codec.YAML, y)

	y2, err := codec.Infer("config.YML")
	require.NoError(t, err)
	assert.Equal(t, codec.YAML, y2)
}

func TestInfer_UnknownExtensionErrors(t *testing.T) {
	_, err := codec.Infer("config.toml")
	require.Error(t, err)
}

func TestJSON_RoundTrip(t *testing.T) {
	data, err := codec.JSON.Encode(map[string]any{"a": 1})
	require.NoError(t, err)

	out := make(map[string]any)
	require.NoError(t, codec.JSON.Decode(data, &out))
	assert.EqualValues(t, 1, out["a"])
}

func TestYAML_RoundTrip(t *testing.T) {
	data, err := codec.YAML.Encode(map[string]any{"a": "b"})
	require.NoError(t, err)

	out := make(map[string]any)
	require.NoError(t, codec.YAML.Decode(data, &out))
	assert.Equal(t, "b", out["a"])
}
