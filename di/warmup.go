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

package di

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Warm concurrently resolves every bound Singleton identifier, populating
// the definition cache (and any configured CachePool) before the first real
// request arrives. It requires the container to be locked first, since
// warming a container whose bindings can still change would race against
// Bind/RegisterClass.
//
// Transient and Scoped identifiers are skipped: warming them would produce
// and immediately discard an instance, which has no effect on later
// resolutions.
//
// Warm returns the first error encountered, by which point other goroutines
// may have already populated their own Singletons; it is safe to call Warm
// again afterward to retry only the identifiers still missing from cache,
// since a resolved Singleton returns early without re-running its factory.
func (c *Container) Warm(ctx context.Context) error {
	if !c.repo.isLocked() {
		return NotLockedError{Op: "Warm"}
	}

	c.repo.mu.Lock()
	ids := make([]string, 0, len(c.repo.definitions))
	for id, def := range c.repo.definitions {
		if def.lifetime == Singleton {
			ids = append(ids, id)
		}
	}
	c.repo.mu.Unlock()

	g, ctx := errgroup.WithContext(ctx)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			_, err := c.resolveDefinition(id)
			return err
		})
	}
	return g.Wait()
}
