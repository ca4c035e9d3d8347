package orchestrator

import (
	"context"
	"errors"
	"sync"

	"git.home.luguber.info/inful/sitebundler/internal/config"
	"git.home.luguber.info/inful/sitebundler/internal/presets"
)

// appliedSections is the finalized configuration view consumed by the effect
// batch. The six sections are independent and applied concurrently.
type appliedSections struct {
	core       config.CoreSection
	build      config.BuildSection
	features   config.FeaturesSection
	staticDirs []config.StaticDir
	indexers   []config.IndexerSection
	stories    []string
	docs       config.DocsSection
}

// applySections materializes every section of the resolved configuration in
// parallel and joins the errors.
func applySections(ctx context.Context, resolved *presets.ResolvedConfig) (*appliedSections, error) {
	out := &appliedSections{}
	errs := make([]error, 7)

	var wg sync.WaitGroup
	run := func(i int, f func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = f()
		}()
	}

	run(0, func() (err error) { out.core, err = resolved.ApplyCore(ctx); return })
	run(1, func() (err error) { out.build, err = resolved.ApplyBuild(ctx); return })
	run(2, func() (err error) { out.features, err = resolved.ApplyFeatures(ctx); return })
	run(3, func() (err error) { out.staticDirs, err = resolved.ApplyStaticDirs(ctx); return })
	run(4, func() (err error) { out.indexers, err = resolved.ApplyIndexers(ctx); return })
	run(5, func() (err error) { out.stories, err = resolved.ApplyStories(ctx); return })
	run(6, func() (err error) { out.docs, err = resolved.ApplyDocs(ctx); return })
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return out, nil
}
