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

package provider_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/deep-rent/infuse/di"
	"github.com/deep-rent/infuse/di/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigProvider_BindsEntriesFromJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"server.port": 8080, "server.host": "0.0.0.0"}`), 0o644))

	c := di.New()
	require.NoError(t, c.Import(provider.ConfigProvider{Path: path, Lifetime: di.Singleton}))
	c.Lock()

	port, err := di.Get[float64](c, "server.port")
	require.NoError(t, err)
	assert.Equal(t, float64(8080), port)

	assert.ElementsMatch(t, []string{"server.port", "server.host"}, c.FindByTag(provider.ConfigTag))
}

func TestConfigProvider_BindsEntriesFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("feature.enabled: true\n"), 0o644))

	c := di.New()
	require.NoError(t, c.Import(provider.ConfigProvider{Path: path}))
	c.Lock()

	v, err := di.Get[bool](c, "feature.enabled")
	require.NoError(t, err)
	assert.True(t, v)
}

func TestConfigProvider_MissingFileErrors(t *testing.T) {
	c := di.New()
	err := c.Import(provider.ConfigProvider{Path: "/nonexistent/config.json"})
	require.Error(t, err)
}
