// Package dashboard owns the dashboard session: the current immutable dataset
// snapshot, its filter set and saved charts, and the views derived from them.
package dashboard

import (
	"context"
	"fmt"
	"io"
	"reflect"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"autochart/domain/aggregation"
	"autochart/domain/chart"
	"autochart/domain/core"
	dashboardcfg "autochart/domain/dashboard"
	"autochart/domain/dataset"
	"autochart/domain/filter"
	"autochart/domain/profiling"
	"autochart/internal"
	engine "autochart/internal/aggregation"
	"autochart/internal/charts"
	retype "autochart/internal/dataset"
	"autochart/internal/errors"
	filtering "autochart/internal/filter"
	"autochart/internal/summary"
	"autochart/ports"
)

// Snapshot is one immutable version of the loaded data
type Snapshot struct {
	ID       core.SnapshotID         `json:"id"`
	Dataset  dataset.Dataset         `json:"-"`
	Source   *dataset.UploadMetadata `json:"source,omitempty"`
	LoadedAt time.Time               `json:"loaded_at"`
}

// Options tunes the derived views
type Options struct {
	Charts charts.Options
	TopN   int
}

// DefaultOptions returns the dashboard defaults
func DefaultOptions() Options {
	return Options{Charts: charts.DefaultOptions(), TopN: 20}
}

// Views bundles every view derived from one snapshot and filter set
type Views struct {
	Profile    profiling.Profile `json:"profile"`
	Summary    summary.Summary   `json:"summary"`
	AutoCharts []chart.Spec      `json:"auto_charts"`
	Charts     []chart.Spec      `json:"charts"`
}

// Service coordinates dataset snapshots, filters and chart configuration.
// Snapshots are replaced wholesale; derived views are recomputed lazily and
// cached per snapshot and filter revision.
type Service struct {
	repo        ports.DashboardRepository
	reader      ports.DatasetReaderPort
	profiler    ports.ProfilerPort
	recommender *charts.Recommender
	builder     *charts.Builder
	logger      *internal.Logger

	mu       sync.RWMutex
	snapshot Snapshot
	filters  []filter.Condition
	charts   []chart.Spec
	revision int
	cache    map[string]interface{}

	group singleflight.Group
}

// NewService creates a dashboard service with an empty snapshot
func NewService(repo ports.DashboardRepository, reader ports.DatasetReaderPort, profiler ports.ProfilerPort, options Options) *Service {
	return &Service{
		repo:        repo,
		reader:      reader,
		profiler:    profiler,
		recommender: charts.NewRecommender(options.Charts),
		builder:     charts.NewBuilder(options.TopN),
		logger:      internal.DefaultLogger,
		snapshot:    Snapshot{Dataset: dataset.New(nil, nil)},
		cache:       make(map[string]interface{}),
	}
}

// Restore loads persisted filters and charts
func (s *Service) Restore(ctx context.Context) error {
	filters, err := s.repo.LoadFilters(ctx)
	if err != nil {
		return errors.DatabaseError("failed to restore filters", err)
	}
	saved, err := s.repo.LoadCharts(ctx)
	if err != nil {
		return errors.DatabaseError("failed to restore charts", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = filters
	s.charts = saved
	s.invalidateLocked()
	s.logger.Info("[Dashboard] restored %d filters and %d charts", len(filters), len(saved))
	return nil
}

// Upload decodes a source file, replaces the current snapshot with it and
// records the upload
func (s *Service) Upload(ctx context.Context, src io.Reader, fileName string) (Snapshot, error) {
	ingested, err := s.reader.Read(ctx, src, fileName)
	if err != nil {
		return Snapshot{}, errors.FromDomain(err)
	}
	if err := s.repo.AppendUpload(ctx, ingested.Metadata); err != nil {
		return Snapshot{}, errors.DatabaseError("failed to record upload", err)
	}
	meta := ingested.Metadata
	return s.replace(ingested.Dataset, &meta), nil
}

// SetDataset replaces the current snapshot with ds
func (s *Service) SetDataset(ds dataset.Dataset) Snapshot {
	return s.replace(ds, nil)
}

func (s *Service) replace(ds dataset.Dataset, source *dataset.UploadMetadata) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.replaceLocked(ds, source)
}

func (s *Service) replaceLocked(ds dataset.Dataset, source *dataset.UploadMetadata) Snapshot {
	s.snapshot = Snapshot{
		ID:       core.NewSnapshotID(),
		Dataset:  ds,
		Source:   source,
		LoadedAt: time.Now(),
	}
	s.invalidateLocked()
	s.logger.Debug("[Dashboard] snapshot %s: %d rows, %d columns", s.snapshot.ID, ds.Len(), len(ds.Columns))
	return s.snapshot
}

// Snapshot returns the current snapshot
func (s *Service) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Uploads returns the upload history
func (s *Service) Uploads(ctx context.Context) ([]dataset.UploadMetadata, error) {
	uploads, err := s.repo.ListUploads(ctx)
	if err != nil {
		return nil, errors.DatabaseError("failed to list uploads", err)
	}
	return uploads, nil
}

// Filters returns the active filter set
func (s *Service) Filters() []filter.Condition {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]filter.Condition{}, s.filters...)
}

// AddFilter adds a condition. A condition on a column that already has one
// replaces it in place.
func (s *Service) AddFilter(ctx context.Context, c filter.Condition) error {
	if c.Column == "" {
		return errors.InvalidInput("filter column is required")
	}
	if !c.Operator.Known() {
		return errors.InvalidInput(fmt.Sprintf("unknown filter operator %q", c.Operator))
	}

	return s.updateFilters(ctx, func(current []filter.Condition) []filter.Condition {
		next := append([]filter.Condition{}, current...)
		for i, existing := range next {
			if existing.Column == c.Column {
				next[i] = c
				return next
			}
		}
		return append(next, c)
	})
}

// RemoveFilter removes the condition matching column, operator and value
func (s *Service) RemoveFilter(ctx context.Context, column string, op filter.Operator, value interface{}) error {
	return s.updateFilters(ctx, func(current []filter.Condition) []filter.Condition {
		next := make([]filter.Condition, 0, len(current))
		for _, c := range current {
			if c.Column == column && c.Operator == op && reflect.DeepEqual(c.Value, value) {
				continue
			}
			next = append(next, c)
		}
		return next
	})
}

// ClearFilters removes every condition
func (s *Service) ClearFilters(ctx context.Context) error {
	return s.SetFilters(ctx, nil)
}

// SetFilters replaces the filter set
func (s *Service) SetFilters(ctx context.Context, conditions []filter.Condition) error {
	for _, c := range conditions {
		if !c.Operator.Known() {
			return errors.InvalidInput(fmt.Sprintf("unknown filter operator %q", c.Operator))
		}
	}
	return s.updateFilters(ctx, func([]filter.Condition) []filter.Condition {
		return append([]filter.Condition{}, conditions...)
	})
}

func (s *Service) updateFilters(ctx context.Context, update func([]filter.Condition) []filter.Condition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := update(s.filters)
	if err := s.repo.SaveFilters(ctx, next); err != nil {
		return errors.DatabaseError("failed to save filters", err)
	}
	s.filters = next
	s.revision++
	s.invalidateLocked()
	return nil
}

// Charts returns the saved chart configurations as stored
func (s *Service) Charts() []chart.Spec {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]chart.Spec{}, s.charts...)
}

// AddChart saves a chart under a fresh ID
func (s *Service) AddChart(ctx context.Context, spec chart.Spec) (chart.Spec, error) {
	spec.ID = core.NewChartID().String()
	err := s.updateCharts(ctx, func(current []chart.Spec) []chart.Spec {
		return append(append([]chart.Spec{}, current...), spec)
	})
	if err != nil {
		return chart.Spec{}, err
	}
	return spec, nil
}

// RemoveChart deletes a saved chart by ID
func (s *Service) RemoveChart(ctx context.Context, id string) error {
	found := false
	err := s.updateCharts(ctx, func(current []chart.Spec) []chart.Spec {
		next := make([]chart.Spec, 0, len(current))
		for _, c := range current {
			if c.ID == id {
				found = true
				continue
			}
			next = append(next, c)
		}
		return next
	})
	if err != nil {
		return err
	}
	if !found {
		return errors.FromDomain(fmt.Errorf("%w: %s", core.ErrChartNotFound, id))
	}
	return nil
}

// SetCharts replaces every saved chart
func (s *Service) SetCharts(ctx context.Context, specs []chart.Spec) error {
	return s.updateCharts(ctx, func([]chart.Spec) []chart.Spec {
		return append([]chart.Spec{}, specs...)
	})
}

func (s *Service) updateCharts(ctx context.Context, update func([]chart.Spec) []chart.Spec) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := update(s.charts)
	if len(next) == len(s.charts) && reflect.DeepEqual(next, s.charts) {
		return nil
	}
	if err := s.repo.SaveCharts(ctx, next); err != nil {
		return errors.DatabaseError("failed to save charts", err)
	}
	s.charts = next
	s.invalidateLocked()
	return nil
}

// Reset drops the dataset, filters, charts and upload history
func (s *Service) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Clear(ctx); err != nil {
		return errors.DatabaseError("failed to reset dashboard", err)
	}
	s.snapshot = Snapshot{Dataset: dataset.New(nil, nil)}
	s.filters = nil
	s.charts = nil
	s.revision++
	s.invalidateLocked()
	s.logger.Info("[Dashboard] reset")
	return nil
}

// UpdateColumnType retypes a column and replaces the snapshot with the
// result. The upload the snapshot came from stays its source.
func (s *Service) UpdateColumnType(column, newType string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ds, err := retype.UpdateColumnType(s.snapshot.Dataset, column, newType)
	if err != nil {
		return Snapshot{}, errors.FromDomain(err)
	}
	s.logger.Info("[Dashboard] column %s retyped to %s", column, newType)
	return s.replaceLocked(ds, s.snapshot.Source), nil
}

// AddCalculatedColumn appends a formula column and replaces the snapshot
// with the result. The upload the snapshot came from stays its source.
func (s *Service) AddCalculatedColumn(name, formula string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ds, err := retype.AddCalculatedColumn(s.snapshot.Dataset, name, formula)
	if err != nil {
		return Snapshot{}, errors.FromDomain(err)
	}
	s.logger.Info("[Dashboard] calculated column %s added", ds.Columns[len(ds.Columns)-1])
	return s.replaceLocked(ds, s.snapshot.Source), nil
}

// ExportConfig returns the filters and saved charts as a portable config
func (s *Service) ExportConfig() dashboardcfg.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return dashboardcfg.Config{
		Charts:  append([]chart.Spec{}, s.charts...),
		Filters: append([]filter.Condition{}, s.filters...),
	}
}

// ImportConfig replaces the filters and saved charts with an exported
// config. Charts without an ID get a fresh one; upload history is ignored.
func (s *Service) ImportConfig(ctx context.Context, cfg dashboardcfg.Config) error {
	for _, c := range cfg.Filters {
		if c.Column == "" || !c.Operator.Known() {
			return errors.InvalidInput(fmt.Sprintf("invalid filter on %q with operator %q", c.Column, c.Operator))
		}
	}
	specs := make([]chart.Spec, len(cfg.Charts))
	for i, spec := range cfg.Charts {
		if !spec.Type.Valid() {
			return errors.InvalidInput(fmt.Sprintf("chart %q has unsupported type %q", spec.Title, spec.Type))
		}
		if spec.ID == "" {
			spec.ID = core.NewChartID().String()
		}
		specs[i] = spec
	}
	if err := s.SetFilters(ctx, cfg.Filters); err != nil {
		return err
	}
	if err := s.SetCharts(ctx, specs); err != nil {
		return err
	}
	s.logger.Info("[Dashboard] imported %d filters and %d charts", len(cfg.Filters), len(specs))
	return nil
}

// Filtered returns the snapshot rows that pass the filter set
func (s *Service) Filtered(ctx context.Context) (dataset.Dataset, error) {
	v, err := s.memo(ctx, "filtered", func(_ context.Context, snap Snapshot, conditions []filter.Condition) (interface{}, error) {
		return filtering.Apply(snap.Dataset, conditions), nil
	})
	if err != nil {
		return dataset.Dataset{}, err
	}
	return v.(dataset.Dataset), nil
}

// Profile profiles the whole snapshot
func (s *Service) Profile(ctx context.Context) (profiling.Profile, error) {
	v, err := s.memo(ctx, "profile", func(ctx context.Context, snap Snapshot, _ []filter.Condition) (interface{}, error) {
		return s.profiler.ProfileDataset(ctx, snap.Dataset)
	})
	if err != nil {
		return profiling.Profile{}, err
	}
	return v.(profiling.Profile), nil
}

// FilteredProfile profiles the filtered rows
func (s *Service) FilteredProfile(ctx context.Context) (profiling.Profile, error) {
	v, err := s.memo(ctx, "filtered-profile", func(ctx context.Context, snap Snapshot, conditions []filter.Condition) (interface{}, error) {
		return s.profiler.ProfileDataset(ctx, filtering.Apply(snap.Dataset, conditions))
	})
	if err != nil {
		return profiling.Profile{}, err
	}
	return v.(profiling.Profile), nil
}

// Summary summarizes the whole snapshot
func (s *Service) Summary(ctx context.Context) (summary.Summary, error) {
	v, err := s.memo(ctx, "summary", func(ctx context.Context, snap Snapshot, _ []filter.Condition) (interface{}, error) {
		profile, err := s.profiler.ProfileDataset(ctx, snap.Dataset)
		if err != nil {
			return nil, err
		}
		return summary.Summarize(snap.Dataset, profile), nil
	})
	if err != nil {
		return summary.Summary{}, err
	}
	return v.(summary.Summary), nil
}

// AutoCharts recommends charts for the filtered rows
func (s *Service) AutoCharts(ctx context.Context) ([]chart.Spec, error) {
	v, err := s.memo(ctx, "auto-charts", func(ctx context.Context, snap Snapshot, conditions []filter.Condition) (interface{}, error) {
		ds := filtering.Apply(snap.Dataset, conditions)
		profile, err := s.profiler.ProfileDataset(ctx, ds)
		if err != nil {
			return nil, err
		}
		return s.recommender.Recommend(ds, profile), nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]chart.Spec), nil
}

// DashboardCharts rebuilds every saved chart against the filtered rows
func (s *Service) DashboardCharts(ctx context.Context) ([]chart.Spec, error) {
	ds, err := s.Filtered(ctx)
	if err != nil {
		return nil, err
	}
	saved := s.Charts()
	out := make([]chart.Spec, len(saved))
	for i, spec := range saved {
		out[i] = s.builder.Refresh(ds, spec)
	}
	return out, nil
}

// Views derives profile, summary, recommendations and saved charts
// concurrently from the same snapshot
func (s *Service) Views(ctx context.Context) (Views, error) {
	var views Views
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		p, err := s.Profile(gctx)
		views.Profile = p
		return err
	})
	g.Go(func() error {
		sum, err := s.Summary(gctx)
		views.Summary = sum
		return err
	})
	g.Go(func() error {
		auto, err := s.AutoCharts(gctx)
		views.AutoCharts = auto
		return err
	})
	g.Go(func() error {
		saved, err := s.DashboardCharts(gctx)
		views.Charts = saved
		return err
	})

	if err := g.Wait(); err != nil {
		return Views{}, err
	}
	return views, nil
}

// Preview builds a chart from the filtered rows without saving it
func (s *Service) Preview(ctx context.Context, req chart.BuildRequest) (chart.Spec, error) {
	ds, err := s.Filtered(ctx)
	if err != nil {
		return chart.Spec{}, err
	}
	spec, err := s.builder.Build(ds, req)
	if err != nil {
		return chart.Spec{}, errors.FromDomain(err)
	}
	return spec, nil
}

// Aggregate groups the filtered rows
func (s *Service) Aggregate(ctx context.Context, spec aggregation.Spec) (aggregation.Result, error) {
	ds, err := s.Filtered(ctx)
	if err != nil {
		return aggregation.Result{}, err
	}
	for _, col := range []string{spec.GroupColumn, spec.ValueColumn} {
		if !ds.HasColumn(col) {
			return aggregation.Result{}, errors.FromDomain(fmt.Errorf("%w: %s", core.ErrColumnNotFound, col))
		}
	}
	return engine.Aggregate(ds, spec), nil
}

// ColumnValues returns the numeric values of a column of the filtered rows
func (s *Service) ColumnValues(ctx context.Context, column string) ([]float64, error) {
	ds, err := s.Filtered(ctx)
	if err != nil {
		return nil, err
	}
	if !ds.HasColumn(column) {
		return nil, errors.FromDomain(fmt.Errorf("%w: %s", core.ErrColumnNotFound, column))
	}
	return charts.NumericValues(ds, column), nil
}

// DrillDown returns the filtered rows behind one chart label
func (s *Service) DrillDown(ctx context.Context, column, label string) (dataset.Dataset, error) {
	ds, err := s.Filtered(ctx)
	if err != nil {
		return dataset.Dataset{}, err
	}
	return filtering.DrillDown(ds, column, label), nil
}

// GenerateTrendingCharts builds the upload trend charts and saves the ones
// the dashboard does not already have
func (s *Service) GenerateTrendingCharts(ctx context.Context) ([]chart.Spec, error) {
	uploads, err := s.Uploads(ctx)
	if err != nil {
		return nil, err
	}
	trending := charts.Trending(uploads)

	err = s.updateCharts(ctx, func(current []chart.Spec) []chart.Spec {
		next := append([]chart.Spec{}, current...)
		for _, t := range trending {
			if !containsChart(next, t.ID) {
				next = append(next, t)
			}
		}
		return next
	})
	if err != nil {
		return nil, err
	}
	return trending, nil
}

func containsChart(specs []chart.Spec, id string) bool {
	for _, c := range specs {
		if c.ID == id {
			return true
		}
	}
	return false
}

// stateKeyLocked identifies the snapshot and filter revision a cached view belongs to
func (s *Service) stateKeyLocked() string {
	return fmt.Sprintf("%s/%d", s.snapshot.ID, s.revision)
}

func (s *Service) invalidateLocked() {
	s.cache = make(map[string]interface{})
}

// memo computes a view once per snapshot and filter revision. Concurrent
// callers asking for the same view share one computation, which runs
// detached from the first caller's cancellation.
func (s *Service) memo(ctx context.Context, view string, compute func(context.Context, Snapshot, []filter.Condition) (interface{}, error)) (interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	key := s.stateKeyLocked() + "/" + view
	if v, ok := s.cache[key]; ok {
		s.mu.RUnlock()
		return v, nil
	}
	snap := s.snapshot
	conditions := append([]filter.Condition{}, s.filters...)
	s.mu.RUnlock()

	v, err, shared := s.group.Do(key, func() (interface{}, error) {
		s.mu.RLock()
		cached, ok := s.cache[key]
		s.mu.RUnlock()
		if ok {
			return cached, nil
		}

		v, err := compute(context.WithoutCancel(ctx), snap, conditions)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		if s.stateKeyLocked()+"/"+view == key {
			s.cache[key] = v
		}
		s.mu.Unlock()
		return v, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.logger.Trace("[Dashboard] shared %s computation", key)
	}
	return v, nil
}
