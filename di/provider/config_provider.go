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

// Package provider implements Container.Import-compatible sources of
// Definitions, starting with ConfigProvider, which loads a flat
// identifier-to-value map from a JSON or YAML file.
package provider

import (
	"fmt"
	"os"

	"github.com/deep-rent/infuse/codec"
	"github.com/deep-rent/infuse/di"
)

// ConfigTag is attached to every Definition a ConfigProvider binds, so
// callers can retrieve the whole set with Container.FindByTag("config").
const ConfigTag = "config"

// ConfigProvider decodes path (inferred as JSON or YAML by extension) into a
// flat map of identifier to value and binds each entry as a Value
// Definition tagged with ConfigTag.
//
// Example:
//
//	c := di.New()
//	c.Import(provider.ConfigProvider{Path: "config.yaml"})
//	c.Lock()
//	host, err := di.Get[string](c, "server.host")
type ConfigProvider struct {
	// Path is the configuration file to load.
	Path string
	// Lifetime overrides the default Transient lifetime for every bound
	// entry; configuration values are typically read-only for the
	// process's lifetime, so di.Singleton is a common choice.
	Lifetime di.Lifetime
}

// Provide implements di.Provider.
func (p ConfigProvider) Provide(c *di.Container) error {
	cd, err := codec.Infer(p.Path)
	if err != nil {
		return fmt.Errorf("provider: %w", err)
	}
	data, err := os.ReadFile(p.Path)
	if err != nil {
		return fmt.Errorf("provider: reading %s: %w", p.Path, err)
	}

	values := make(map[string]any)
	if err := cd.Decode(data, &values); err != nil {
		return fmt.Errorf("provider: decoding %s: %w", p.Path, err)
	}

	for id, v := range values {
		def := di.ValueDef(v, di.WithLifetime(p.Lifetime), di.WithTags(ConfigTag))
		if err := c.Bind(id, def); err != nil {
			return fmt.Errorf("provider: binding %q: %w", id, err)
		}
	}
	return nil
}
