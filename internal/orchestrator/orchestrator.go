// Package orchestrator sequences the run lifecycle: verify, detect, plugin
// application, scaffold, cleanup, the staged builds, watch attachment, site
// configuration generation, and final delegation to the site layer.
package orchestrator

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/compdocs/internal/builder"
	"git.home.luguber.info/inful/compdocs/internal/config"
	"git.home.luguber.info/inful/compdocs/internal/detect"
	cerrors "git.home.luguber.info/inful/compdocs/internal/errors"
	"git.home.luguber.info/inful/compdocs/internal/eventstore"
	"git.home.luguber.info/inful/compdocs/internal/fsutil"
	"git.home.luguber.info/inful/compdocs/internal/metrics"
	"git.home.luguber.info/inful/compdocs/internal/plugin"
	"git.home.luguber.info/inful/compdocs/internal/plugin/builtin"
	"git.home.luguber.info/inful/compdocs/internal/site"
	"git.home.luguber.info/inful/compdocs/internal/watch"
)

// Options are the caller-facing run switches.
type Options struct {
	// Watch keeps the process alive servicing incremental rebuilds.
	Watch bool

	// SkipSite skips the final site-layer delegation step.
	SkipSite bool
}

// Orchestrator owns the run lifecycle. Construct with New, optionally swap
// collaborators, then call Run once.
type Orchestrator struct {
	cfg      *config.Config
	logger   *slog.Logger
	opts     Options
	registry *plugin.Registry
	detector detect.Detector
	layer    site.Layer
	metrics  *metrics.Collector
	journal  eventstore.Store

	paths     config.Paths
	bctx      *builder.Context
	detection detect.Result
	docs      *builder.DocsBuilder
	libs      *builder.LibrariesBuilder
	nav       *builder.NavigationBuilder
	report    *Report
	scheduler *watch.Scheduler
	watching  atomic.Bool

	// fullRebuild marks a scheduler-driven full rebuild in progress, so the
	// incremental-rebuild counter only counts watch-triggered ones.
	fullRebuild atomic.Bool
}

// New creates an orchestrator with the default plugin registry, filesystem
// detector, and logging site layer. The logger is required wiring, not a
// global: the core stays testable without process-wide side effects.
func New(cfg *config.Config, logger *slog.Logger, opts Options) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		cfg:      cfg,
		logger:   logger,
		opts:     opts,
		registry: builtin.DefaultRegistry(),
		layer:    &site.LogLayer{Logger: logger},
	}
}

// SetRegistry replaces the plugin registry. Must be called before Run.
func (o *Orchestrator) SetRegistry(r *plugin.Registry) { o.registry = r }

// SetDetector replaces the project detector. Must be called before Run.
func (o *Orchestrator) SetDetector(d detect.Detector) { o.detector = d }

// SetSiteLayer replaces the downstream site layer. Must be called before Run.
func (o *Orchestrator) SetSiteLayer(l site.Layer) { o.layer = l }

// SetMetrics attaches a metrics collector. Must be called before Run.
func (o *Orchestrator) SetMetrics(m *metrics.Collector) { o.metrics = m }

// SetJournal attaches a build event journal. Must be called before Run. When
// unset and the configuration names a journal path, Run opens one itself.
func (o *Orchestrator) SetJournal(s eventstore.Store) { o.journal = s }

// Context returns the build context, nil before Run.
func (o *Orchestrator) Context() *builder.Context { return o.bctx }

// Report returns the run report, nil before Run.
func (o *Orchestrator) Report() *Report { return o.report }

// stageDef pairs a lifecycle stage name with its executing function.
type stageDef struct {
	name string
	fn   func(ctx context.Context) error
}

// Run executes the full lifecycle. It returns rather than exits on failure;
// the outermost caller decides exit behavior and presentation.
func (o *Orchestrator) Run(ctx context.Context) error {
	buildID := uuid.NewString()
	o.report = newReport(buildID)

	paths, err := config.ResolvePaths(o.cfg)
	if err != nil {
		return cerrors.Wrap(err, cerrors.CategoryConfig, cerrors.SeverityFatal, "resolve paths")
	}
	o.paths = paths
	o.bctx = builder.NewContext(o.cfg, paths, o.logger, buildID)

	closeJournal, err := o.attachJournal(ctx)
	if err != nil {
		return err
	}
	defer closeJournal()

	o.wireMetrics()

	// A fatal failure anywhere cancels the run context; in-flight watchers
	// and series hook callbacks stop at their next suspension point.
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	stages := []stageDef{
		{"verify", o.stageVerify},
		{"detect", o.stageDetect},
		{"apply_plugins", o.stageApplyPlugins},
		{"scaffold_site", o.stageScaffoldSite},
		{"clean_outputs", o.stageCleanOutputs},
		{"build_content", o.stageBuildContent},
		{"build_navigation", o.stageBuildNavigation},
		{"attach_watchers", o.stageAttachWatchers},
		{"generate_site_config", o.stageGenerateSiteConfig},
		{"delegate_site", o.stageDelegateSite},
	}

	for _, st := range stages {
		select {
		case <-runCtx.Done():
			return runCtx.Err()
		default:
		}

		t0 := time.Now()
		err := st.fn(runCtx)
		dur := time.Since(t0)
		o.report.StageDurations[st.name] = dur
		if o.metrics != nil {
			o.metrics.ObserveStage(st.name, dur)
		}
		if err != nil {
			cancel()
			o.logger.Debug("stage failed", "stage", st.name, "duration", dur)
			return err
		}
		o.logger.Debug("stage completed", "stage", st.name, "duration", dur)
	}

	o.logger.Info("run completed",
		"build_id", buildID,
		"pages", o.report.Pages,
		"components", o.report.Components,
		"item_errors", o.report.ItemErrorCount(),
		"elapsed", o.report.Elapsed())
	return nil
}

// attachJournal opens the configured journal (or uses an injected one) and
// wires it as the hook recorder.
func (o *Orchestrator) attachJournal(ctx context.Context) (func(), error) {
	closer := func() {}
	if o.journal == nil && o.cfg.Journal.Path != "" {
		store, err := eventstore.NewSQLiteStore(o.cfg.Journal.Path)
		if err != nil {
			return nil, cerrors.Wrap(err, cerrors.CategoryConfig, cerrors.SeverityFatal, "open build journal")
		}
		o.journal = store
		closer = func() { _ = store.Close() }
	}
	if o.journal != nil {
		journal := o.journal
		buildID := o.bctx.BuildID
		o.bctx.Hooks.SetRecorder(func(hook string) {
			if err := journal.Append(ctx, buildID, hook); err != nil {
				o.logger.Debug("journal append failed", "hook", hook, "error", err)
			}
		})
	}
	return closer, nil
}

// wireMetrics subscribes the collectors to the compile hooks.
func (o *Orchestrator) wireMetrics() {
	if o.metrics == nil {
		return
	}
	m := o.metrics
	o.bctx.Hooks.DocCompile.Register(func(*builder.Page) { m.PagesCompiled.Inc() })
	o.bctx.Hooks.LibComponentCompile.Register(func(builder.ComponentEvent) { m.ComponentsAnalyzed.Inc() })
	o.bctx.Hooks.DocsBuilt.Register(func(context.Context, *builder.DocsArtifact) error {
		if o.watching.Load() && !o.fullRebuild.Load() {
			m.IncrementalRebuilds.Inc()
		}
		return nil
	})
	o.bctx.Hooks.LibsBuilt.Register(func(context.Context, *builder.LibrariesArtifact) error {
		if o.watching.Load() && !o.fullRebuild.Load() {
			m.IncrementalRebuilds.Inc()
		}
		return nil
	})
}

// stageVerify checks that every configured input path exists.
func (o *Orchestrator) stageVerify(context.Context) error {
	if !fsutil.DirExists(o.paths.DocsRoot) {
		return cerrors.Configf("docs directory does not exist: %s", o.paths.DocsRoot)
	}
	for _, lib := range o.cfg.Libraries {
		if !fsutil.DirExists(lib.Path) {
			return cerrors.Configf("library %s path does not exist: %s", lib.Name, lib.Path)
		}
	}
	return nil
}

// stageDetect classifies the source tree and cross-checks the result against
// the configuration.
func (o *Orchestrator) stageDetect(ctx context.Context) error {
	detector := o.detector
	if detector == nil {
		detector = detect.NewFSDetector(".", o.paths.SiteRoot, o.cfg.Site.Project, o.logger)
	}

	res, err := detector.Detect(ctx)
	if err != nil {
		return cerrors.Wrap(err, cerrors.CategoryInternal, cerrors.SeverityFatal, "project detection")
	}
	if o.cfg.Site.Project != "" && res.SiteProject == nil {
		return cerrors.Configf("configured site project %q not found", o.cfg.Site.Project)
	}

	o.detection = res
	o.bctx.Detection = res
	o.logger.Info("project detected",
		"framework_version", res.FrameworkVersion,
		"site_project", res.SiteProject != nil)
	return nil
}

// stageApplyPlugins applies presets and plugins, fully, before any hook
// fires or any stage builds.
func (o *Orchestrator) stageApplyPlugins(context.Context) error {
	loader := plugin.NewLoader(o.registry, o.logger)
	return loader.Load(o.bctx, o.cfg.Plugins.Presets, o.cfg.Plugins.Plugins)
}

// stageScaffoldSite initializes or reuses the site skeleton, then fires the
// run hook: the pipeline is about to start real work.
func (o *Orchestrator) stageScaffoldSite(context.Context) error {
	if err := site.Scaffold(o.cfg, o.paths, o.detection, o.logger); err != nil {
		return err
	}
	o.bctx.Hooks.Run.Fire(struct{}{})
	return nil
}

// stageCleanOutputs resets the content and asset roots before any stage
// writes. Remove-then-recreate: a crash in between leaves an empty, valid,
// rebuildable output directory.
func (o *Orchestrator) stageCleanOutputs(context.Context) error {
	for _, dir := range []string{o.paths.ContentRoot, o.paths.AssetsRoot} {
		if err := fsutil.ResetDir(dir); err != nil {
			return cerrors.Wrap(err, cerrors.CategoryFileSystem, cerrors.SeverityFatal, "clean output directory")
		}
	}
	return nil
}

// stageBuildContent runs the docs and libraries builds concurrently and
// joins them. They are independent data sources; navigation is not.
func (o *Orchestrator) stageBuildContent(ctx context.Context) error {
	o.docs = builder.NewDocsBuilder(o.bctx)
	o.libs = builder.NewLibrariesBuilder(o.bctx)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return o.docs.Build(gctx) })
	g.Go(func() error { return o.libs.Build(gctx) })
	if err := g.Wait(); err != nil {
		return err
	}

	docsArt := o.docs.Artifact()
	o.report.Pages = len(docsArt.Pages)
	for _, err := range docsArt.Errors {
		o.report.ItemErrors = multierror.Append(o.report.ItemErrors, err)
	}
	libsArt := o.libs.Artifact()
	for _, la := range libsArt.Libraries {
		o.report.Components += len(la.Components)
		for _, err := range la.Errors {
			o.report.ItemErrors = multierror.Append(o.report.ItemErrors, err)
		}
	}
	if o.metrics != nil {
		for i := 0; i < o.report.ItemErrorCount(); i++ {
			o.metrics.ItemCompileErrors.Inc()
		}
	}
	return nil
}

// stageBuildNavigation derives navigation strictly after both content stages
// succeeded: its entries come from both artifact sets.
func (o *Orchestrator) stageBuildNavigation(ctx context.Context) error {
	o.nav = builder.NewNavigationBuilder(o.bctx, o.docs.Artifact(), o.libs.Artifact())
	return o.nav.Build(ctx)
}

// stageAttachWatchers attaches the per-stage watchers in watch mode.
// Non-blocking setup, not a loop.
func (o *Orchestrator) stageAttachWatchers(ctx context.Context) error {
	if !o.opts.Watch {
		return nil
	}

	// Navigation first: its hook subscriptions must be in place before the
	// first watch-triggered content rebuild fires.
	if err := o.nav.Watch(ctx); err != nil {
		return err
	}
	if err := o.docs.Watch(ctx); err != nil {
		return cerrors.Wrap(err, cerrors.CategoryInternal, cerrors.SeverityFatal, "attach docs watcher")
	}
	if err := o.libs.Watch(ctx); err != nil {
		return cerrors.Wrap(err, cerrors.CategoryInternal, cerrors.SeverityFatal, "attach libraries watcher")
	}
	o.watching.Store(true)

	if interval := o.cfg.Watch.FullRebuildInterval; interval > 0 {
		sched, err := watch.NewScheduler(interval, o.logger, func(jobCtx context.Context) {
			o.fullRebuild.Store(true)
			defer o.fullRebuild.Store(false)
			if err := o.docs.Build(jobCtx); err != nil {
				o.logger.Error("periodic docs rebuild failed", "error", err)
			}
			if err := o.libs.Build(jobCtx); err != nil {
				o.logger.Error("periodic libraries rebuild failed", "error", err)
			}
		})
		if err != nil {
			return cerrors.Wrap(err, cerrors.CategoryInternal, cerrors.SeverityFatal, "start rebuild scheduler")
		}
		o.scheduler = sched
		sched.Start()
	}
	return nil
}

// stageGenerateSiteConfig serializes the derived site configuration exactly
// once, after the content stages succeeded.
func (o *Orchestrator) stageGenerateSiteConfig(context.Context) error {
	return site.GenerateConfig(o.cfg, o.paths, o.detection)
}

// stageDelegateSite hands off to the site layer, then fires the emit hook as
// the last lifecycle step of a one-shot run. In watch mode the process stays
// alive servicing rebuilds until the context is canceled.
func (o *Orchestrator) stageDelegateSite(ctx context.Context) error {
	defer func() {
		if o.scheduler != nil {
			_ = o.scheduler.Stop()
		}
	}()

	if o.opts.Watch {
		if o.opts.SkipSite {
			o.logger.Info("watching for changes")
			<-ctx.Done()
			return nil
		}
		return o.layer.Serve(ctx)
	}

	if !o.opts.SkipSite {
		if err := o.layer.Build(ctx); err != nil {
			return cerrors.Wrap(err, cerrors.CategoryInternal, cerrors.SeverityFatal, "site layer build")
		}
	}
	return o.bctx.Hooks.Emit.Fire(ctx, struct{}{})
}
