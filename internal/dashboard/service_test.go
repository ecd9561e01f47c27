package dashboard

import (
	"context"
	stderrors "errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"autochart/adapters/excel"
	"autochart/adapters/memory"
	"autochart/domain/aggregation"
	"autochart/domain/chart"
	"autochart/domain/dataset"
	"autochart/domain/filter"
	"autochart/domain/profiling"
	"autochart/internal/charts"
	"autochart/internal/errors"
	profiler "autochart/internal/profiling"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) SaveCharts(ctx context.Context, specs []chart.Spec) error {
	return m.Called(ctx, specs).Error(0)
}

func (m *mockRepository) LoadCharts(ctx context.Context) ([]chart.Spec, error) {
	args := m.Called(ctx)
	specs, _ := args.Get(0).([]chart.Spec)
	return specs, args.Error(1)
}

func (m *mockRepository) SaveFilters(ctx context.Context, filters []filter.Condition) error {
	return m.Called(ctx, filters).Error(0)
}

func (m *mockRepository) LoadFilters(ctx context.Context) ([]filter.Condition, error) {
	args := m.Called(ctx)
	filters, _ := args.Get(0).([]filter.Condition)
	return filters, args.Error(1)
}

func (m *mockRepository) AppendUpload(ctx context.Context, upload dataset.UploadMetadata) error {
	return m.Called(ctx, upload).Error(0)
}

func (m *mockRepository) ListUploads(ctx context.Context) ([]dataset.UploadMetadata, error) {
	args := m.Called(ctx)
	uploads, _ := args.Get(0).([]dataset.UploadMetadata)
	return uploads, args.Error(1)
}

func (m *mockRepository) Clear(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// countingProfiler records how often profiling actually ran
type countingProfiler struct {
	mu    sync.Mutex
	calls int
	inner *profiler.ColumnProfiler
}

func (c *countingProfiler) ProfileDataset(ctx context.Context, ds dataset.Dataset) (profiling.Profile, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return c.inner.ProfileDataset(ctx, ds)
}

const salesCSV = `region,product,amount,date
north,widget,10,2024-01-05
south,widget,20,2024-02-05
north,gadget,5,2024-03-05
east,gadget,7,2024-04-05
south,gizmo,3,2024-05-05
north,gizmo,8,2024-06-05
`

func newTestService(t *testing.T) (*Service, *countingProfiler) {
	t.Helper()
	p := &countingProfiler{inner: profiler.NewColumnProfiler(profiling.DefaultProfileOptions())}
	svc := NewService(memory.NewDashboardRepository(), excel.NewDataReader(excel.DefaultReaderConfig()), p, DefaultOptions())
	_, err := svc.Upload(context.Background(), strings.NewReader(salesCSV), "sales.csv")
	require.NoError(t, err)
	return svc, p
}

func TestService_UploadReplacesSnapshot(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first := svc.Snapshot()
	assert.Equal(t, 6, first.Dataset.Len())
	require.NotNil(t, first.Source)
	assert.Equal(t, "sales.csv", first.Source.FileName)

	second, err := svc.Upload(ctx, strings.NewReader("a\n1\n"), "tiny.csv")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, []string{"a"}, svc.Snapshot().Dataset.Columns)
	assert.Equal(t, 6, first.Dataset.Len(), "earlier snapshots are not mutated")

	uploads, err := svc.Uploads(ctx)
	require.NoError(t, err)
	assert.Len(t, uploads, 2)
}

func TestService_UploadErrorsAreClassified(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Upload(context.Background(), strings.NewReader("x"), "notes.txt")
	require.Error(t, err)
	assert.Equal(t, errors.CodeUnsupportedFormat, errors.GetCode(err))
	assert.Equal(t, 6, svc.Snapshot().Dataset.Len(), "failed uploads keep the current snapshot")
}

func TestService_FiltersReplaceByColumn(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.AddFilter(ctx, filter.Condition{Column: "region", Operator: filter.OpEqual, Value: "north"}))
	ds, err := svc.Filtered(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, ds.Len())

	require.NoError(t, svc.AddFilter(ctx, filter.Condition{Column: "region", Operator: filter.OpEqual, Value: "south"}))
	assert.Len(t, svc.Filters(), 1)
	ds, err = svc.Filtered(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Len())

	require.NoError(t, svc.AddFilter(ctx, filter.Condition{Column: "amount", Operator: filter.OpGreater, Value: 5}))
	ds, err = svc.Filtered(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, ds.Len())

	require.NoError(t, svc.RemoveFilter(ctx, "region", filter.OpEqual, "south"))
	require.Len(t, svc.Filters(), 1)
	assert.Equal(t, "amount", svc.Filters()[0].Column)

	require.NoError(t, svc.ClearFilters(ctx))
	ds, err = svc.Filtered(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6, ds.Len())
}

func TestService_AddFilterRejectsUnknownOperator(t *testing.T) {
	svc, _ := newTestService(t)
	err := svc.AddFilter(context.Background(), filter.Condition{Column: "region", Operator: "~="})
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
	assert.Empty(t, svc.Filters())
}

func TestService_ProfileIsCachedPerSnapshot(t *testing.T) {
	svc, p := newTestService(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Profile(ctx)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	profile, err := svc.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, p.calls)
	cp, ok := profile.Get("amount")
	require.True(t, ok)
	assert.True(t, cp.Type.IsNumeric())

	svc.SetDataset(dataset.New([]string{"x"}, []dataset.Record{{"x": 1}}))
	_, err = svc.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, p.calls)
}

// cancellingProfiler cancels the triggering request while the shared computation runs
type cancellingProfiler struct {
	cancel context.CancelFunc
	inner  *profiler.ColumnProfiler
}

func (c *cancellingProfiler) ProfileDataset(ctx context.Context, ds dataset.Dataset) (profiling.Profile, error) {
	if c.cancel != nil {
		c.cancel()
	}
	return c.inner.ProfileDataset(ctx, ds)
}

func TestService_SharedViewIgnoresCallerCancellation(t *testing.T) {
	p := &cancellingProfiler{inner: profiler.NewColumnProfiler(profiling.DefaultProfileOptions())}
	svc := NewService(memory.NewDashboardRepository(), excel.NewDataReader(excel.DefaultReaderConfig()), p, DefaultOptions())
	_, err := svc.Upload(context.Background(), strings.NewReader(salesCSV), "sales.csv")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	profile, err := svc.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, profile.Len())
	assert.Error(t, ctx.Err())

	p.cancel = nil
	cached, err := svc.Profile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, profile, cached)
}

func TestService_ChartsLifecycle(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	preview, err := svc.Preview(ctx, chart.BuildRequest{Type: chart.TypeBar, XAxisColumn: "region", YAxisColumn: "amount"})
	require.NoError(t, err)

	saved, err := svc.AddChart(ctx, preview)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(saved.ID, "chart-"))
	require.Len(t, svc.Charts(), 1)

	require.NoError(t, svc.AddFilter(ctx, filter.Condition{Column: "region", Operator: filter.OpEqual, Value: "north"}))
	refreshed, err := svc.DashboardCharts(ctx)
	require.NoError(t, err)
	require.Len(t, refreshed, 1)
	assert.Equal(t, saved.ID, refreshed[0].ID)
	assert.Equal(t, []string{"north"}, refreshed[0].Labels)
	assert.Equal(t, []float64{23}, refreshed[0].Series[0].Data)

	require.NoError(t, svc.RemoveChart(ctx, saved.ID))
	assert.Empty(t, svc.Charts())

	err = svc.RemoveChart(ctx, saved.ID)
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
}

func TestService_PreviewValidation(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Preview(context.Background(), chart.BuildRequest{Type: chart.TypeBar, XAxisColumn: "region"})
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestService_TrendingChartsAddedOnce(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	trending, err := svc.GenerateTrendingCharts(ctx)
	require.NoError(t, err)
	require.Len(t, trending, 2)
	_, err = svc.GenerateTrendingCharts(ctx)
	require.NoError(t, err)

	ids := make([]string, 0)
	for _, c := range svc.Charts() {
		ids = append(ids, c.ID)
	}
	assert.ElementsMatch(t, []string{charts.FileTypeChartID, charts.UploadFrequencyChartID}, ids)
}

func TestService_AggregateAndValues(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	result, err := svc.Aggregate(ctx, aggregation.Spec{GroupColumn: "region", ValueColumn: "amount", Function: aggregation.FuncSum})
	require.NoError(t, err)
	v, ok := result.Get("north")
	require.True(t, ok)
	assert.Equal(t, 23.0, v)

	_, err = svc.Aggregate(ctx, aggregation.Spec{GroupColumn: "missing", ValueColumn: "amount"})
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))

	values, err := svc.ColumnValues(ctx, "amount")
	require.NoError(t, err)
	assert.Len(t, values, 6)

	rows, err := svc.DrillDown(ctx, "product", "gizmo")
	require.NoError(t, err)
	assert.Equal(t, 2, rows.Len())
}

func TestService_UpdateColumnTypeKeepsSource(t *testing.T) {
	svc, _ := newTestService(t)

	snap, err := svc.UpdateColumnType("amount", "string")
	require.NoError(t, err)
	assert.Equal(t, "10", snap.Dataset.Value(0, "amount"))
	require.NotNil(t, snap.Source)
	assert.Equal(t, "sales.csv", snap.Source.FileName)

	_, err = svc.UpdateColumnType("amount", "complex")
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestService_AddCalculatedColumn(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	before := svc.Snapshot()

	snap, err := svc.AddCalculatedColumn("double", "amount * 2")
	require.NoError(t, err)
	assert.NotEqual(t, before.ID, snap.ID)
	assert.Equal(t, []string{"region", "product", "amount", "date", "double"}, snap.Dataset.Columns)
	assert.Equal(t, 20.0, snap.Dataset.Value(0, "double"))
	require.NotNil(t, snap.Source)
	assert.Equal(t, "sales.csv", snap.Source.FileName)

	profile, err := svc.Profile(ctx)
	require.NoError(t, err)
	cp, ok := profile.Get("double")
	require.True(t, ok)
	assert.True(t, cp.Type.IsNumeric())

	_, err = svc.AddCalculatedColumn("amount", "1")
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
	_, err = svc.AddCalculatedColumn("bad", "amount +")
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
	assert.Equal(t, snap.ID, svc.Snapshot().ID)
}

func TestService_ConfigExportImport(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	require.NoError(t, svc.AddFilter(ctx, filter.Condition{Column: "region", Operator: filter.OpEqual, Value: "north"}))
	saved, err := svc.AddChart(ctx, chart.Spec{Title: "Amount by region", Type: chart.TypeBar, XAxisColumn: "region", YAxisColumn: "amount"})
	require.NoError(t, err)

	cfg := svc.ExportConfig()
	assert.Len(t, cfg.Filters, 1)
	require.Len(t, cfg.Charts, 1)
	assert.Equal(t, saved.ID, cfg.Charts[0].ID)

	other, _ := newTestService(t)
	cfg.Charts = append(cfg.Charts, chart.Spec{Title: "Products", Type: chart.TypePie, XAxisColumn: "product"})
	require.NoError(t, other.ImportConfig(ctx, cfg))
	assert.Equal(t, cfg.Filters, other.Filters())
	imported := other.Charts()
	require.Len(t, imported, 2)
	assert.Equal(t, saved.ID, imported[0].ID)
	assert.NotEmpty(t, imported[1].ID)

	filtered, err := other.Filtered(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, filtered.Len())

	cfg.Charts = []chart.Spec{{Title: "odd", Type: "gauge"}}
	err = other.ImportConfig(ctx, cfg)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
	assert.Len(t, other.Charts(), 2, "a rejected import keeps the current config")
}

func TestService_Views(t *testing.T) {
	svc, _ := newTestService(t)
	views, err := svc.Views(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6, views.Summary.Records)
	assert.NotEmpty(t, views.AutoCharts)
	assert.Equal(t, 4, views.Profile.Len())
}

func TestService_Reset(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	require.NoError(t, svc.AddFilter(ctx, filter.Condition{Column: "region", Operator: filter.OpEqual, Value: "north"}))

	require.NoError(t, svc.Reset(ctx))
	assert.True(t, svc.Snapshot().Dataset.IsEmpty())
	assert.Empty(t, svc.Filters())
	uploads, err := svc.Uploads(ctx)
	require.NoError(t, err)
	assert.Empty(t, uploads)

	auto, err := svc.AutoCharts(ctx)
	require.NoError(t, err)
	assert.Empty(t, auto)
}

func TestService_RepositoryFailures(t *testing.T) {
	repo := &mockRepository{}
	repoErr := stderrors.New("connection refused")
	repo.On("SaveFilters", mock.Anything, mock.Anything).Return(repoErr)
	repo.On("LoadFilters", mock.Anything).Return([]filter.Condition{{Column: "a", Operator: filter.OpEqual, Value: "x"}}, nil)
	repo.On("LoadCharts", mock.Anything).Return(nil, repoErr)

	p := profiler.NewColumnProfiler(profiling.DefaultProfileOptions())
	svc := NewService(repo, excel.NewDataReader(excel.DefaultReaderConfig()), p, DefaultOptions())

	err := svc.AddFilter(context.Background(), filter.Condition{Column: "a", Operator: filter.OpEqual, Value: "x"})
	assert.Equal(t, errors.CodeDatabaseError, errors.GetCode(err))
	assert.Empty(t, svc.Filters(), "state is unchanged when persistence fails")

	err = svc.Restore(context.Background())
	assert.ErrorIs(t, err, repoErr)
	repo.AssertExpectations(t)
}

func TestService_Restore(t *testing.T) {
	repo := &mockRepository{}
	repo.On("LoadFilters", mock.Anything).Return([]filter.Condition{{Column: "region", Operator: filter.OpEqual, Value: "north"}}, nil)
	repo.On("LoadCharts", mock.Anything).Return([]chart.Spec{{ID: "chart-1", Type: chart.TypeBar}}, nil)

	p := profiler.NewColumnProfiler(profiling.DefaultProfileOptions())
	svc := NewService(repo, excel.NewDataReader(excel.DefaultReaderConfig()), p, DefaultOptions())
	require.NoError(t, svc.Restore(context.Background()))
	assert.Len(t, svc.Filters(), 1)
	assert.Len(t, svc.Charts(), 1)
	repo.AssertExpectations(t)
}
