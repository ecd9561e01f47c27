package ui

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/montanaflynn/stats"

	"autochart/adapters/excel"
	"autochart/domain/aggregation"
	dashboardcfg "autochart/domain/dashboard"
	"autochart/domain/dataset"
	"autochart/domain/filter"
	"autochart/internal/errors"
	filtering "autochart/internal/filter"
	"autochart/internal/summary"
	numeric "autochart/internal/stats"
)

const previewRows = 5

func (s *Server) handleUpload(c *gin.Context) {
	if s.config.MaxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.config.MaxUploadBytes+multipartOverhead)
	}
	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			s.respondError(c, errors.New(errors.CodePayloadTooLarge, "file exceeds maximum upload size"))
			return
		}
		s.respondError(c, errors.InvalidInput("multipart field \"file\" is required"))
		return
	}
	if s.config.MaxUploadBytes > 0 && header.Size > s.config.MaxUploadBytes {
		s.respondError(c, errors.New(errors.CodePayloadTooLarge,
			fmt.Sprintf("file exceeds maximum upload size of %d MB", s.config.MaxUploadBytes/(1024*1024))))
		return
	}
	f, err := header.Open()
	if err != nil {
		s.respondError(c, errors.Wrap(err, "failed to open upload"))
		return
	}
	defer f.Close()

	snap, err := s.dashboard.Upload(c.Request.Context(), f, header.Filename)
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.logger.Info("[API] loaded %s: %d rows", header.Filename, snap.Dataset.Len())
	c.JSON(http.StatusCreated, datasetView(snap.Dataset, snap.Source))
}

func datasetView(ds dataset.Dataset, source *dataset.UploadMetadata) gin.H {
	return gin.H{
		"columns":  ds.Columns,
		"rowCount": ds.Len(),
		"preview":  ds.Head(previewRows),
		"source":   source,
	}
}

func (s *Server) handleCurrentDataset(c *gin.Context) {
	snap := s.dashboard.Snapshot()
	uploads, err := s.dashboard.Uploads(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	view := datasetView(snap.Dataset, snap.Source)
	view["id"] = snap.ID
	view["uploads"] = uploads
	c.JSON(http.StatusOK, view)
}

func (s *Server) handleUploads(c *gin.Context) {
	uploads, err := s.dashboard.Uploads(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"uploads": uploads, "count": len(uploads)})
}

func (s *Server) handleReset(c *gin.Context) {
	if err := s.dashboard.Reset(c.Request.Context()); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "reset"})
}

func (s *Server) handleViews(c *gin.Context) {
	views, err := s.dashboard.Views(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

func (s *Server) handleProfile(c *gin.Context) {
	profile, err := s.dashboard.Profile(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (s *Server) handleSummary(c *gin.Context) {
	sum, err := s.dashboard.Summary(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	profile, err := s.dashboard.Profile(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"summary":  sum,
		"insights": summary.AutoInsights(profile),
	})
}

type columnTypeRequest struct {
	Type string `json:"type" binding:"required"`
}

func (s *Server) handleUpdateColumnType(c *gin.Context) {
	var req columnTypeRequest
	if !s.bindJSON(c, &req) {
		return
	}
	snap, err := s.dashboard.UpdateColumnType(c.Param("name"), req.Type)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, datasetView(snap.Dataset, snap.Source))
}

type calculatedColumnRequest struct {
	Name    string `json:"name" binding:"required"`
	Formula string `json:"formula" binding:"required"`
}

func (s *Server) handleAddCalculatedColumn(c *gin.Context) {
	var req calculatedColumnRequest
	if !s.bindJSON(c, &req) {
		return
	}
	snap, err := s.dashboard.AddCalculatedColumn(req.Name, req.Formula)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, datasetView(snap.Dataset, snap.Source))
}

func (s *Server) handleExportConfig(c *gin.Context) {
	c.Header("Content-Disposition", `attachment; filename="config.json"`)
	c.JSON(http.StatusOK, s.dashboard.ExportConfig())
}

func (s *Server) handleImportConfig(c *gin.Context) {
	var cfg dashboardcfg.Config
	if !s.bindJSON(c, &cfg) {
		return
	}
	if err := s.dashboard.ImportConfig(c.Request.Context(), cfg); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.dashboard.ExportConfig())
}

func (s *Server) handleListFilters(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"filters": s.dashboard.Filters()})
}

func (s *Server) handleAddFilter(c *gin.Context) {
	var cond filter.Condition
	if !s.bindJSON(c, &cond) {
		return
	}
	if err := s.dashboard.AddFilter(c.Request.Context(), cond); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"filters": s.dashboard.Filters()})
}

func (s *Server) handleSetFilters(c *gin.Context) {
	var conds []filter.Condition
	if !s.bindJSON(c, &conds) {
		return
	}
	if err := s.dashboard.SetFilters(c.Request.Context(), conds); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"filters": s.dashboard.Filters()})
}

func (s *Server) handleClearFilters(c *gin.Context) {
	if err := s.dashboard.ClearFilters(c.Request.Context()); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"filters": []filter.Condition{}})
}

func (s *Server) handleRemoveFilter(c *gin.Context) {
	var cond filter.Condition
	if !s.bindJSON(c, &cond) {
		return
	}
	if err := s.dashboard.RemoveFilter(c.Request.Context(), cond.Column, cond.Operator, cond.Value); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"filters": s.dashboard.Filters()})
}

func (s *Server) handleOperators(c *gin.Context) {
	options := filtering.OperatorsFor(c.DefaultQuery("type", "string"))
	twoValued := make([]filter.Operator, 0)
	for _, o := range options {
		if filtering.NeedsSecondValue(o.Value) {
			twoValued = append(twoValued, o.Value)
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"operators":        options,
		"needsSecondValue": twoValued,
	})
}

func (s *Server) handleFiltered(c *gin.Context) {
	ds, err := s.dashboard.Filtered(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"columns":  ds.Columns,
		"rows":     ds.Rows,
		"rowCount": ds.Len(),
	})
}

func (s *Server) handleExport(c *gin.Context) {
	format := strings.ToLower(c.DefaultQuery("format", excel.ExportCSV))
	if !slices.Contains(excel.ExportFormats, format) {
		s.respondError(c, errors.InvalidInput(fmt.Sprintf("unsupported export format %q, expected one of %s",
			format, strings.Join(excel.ExportFormats, ", "))))
		return
	}
	ds, err := s.dashboard.Filtered(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	if ds.IsEmpty() {
		s.respondError(c, errors.New(errors.CodeNoData, "no data to export"))
		return
	}

	var buf bytes.Buffer
	if err := excel.Export(&buf, ds, format); err != nil {
		s.respondError(c, errors.Wrap(err, "failed to export data"))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="exported_data.%s"`, format))
	c.Data(http.StatusOK, excel.ExportContentType(format), buf.Bytes())
}

type aggregateRequest struct {
	GroupColumn string `json:"groupColumn" binding:"required"`
	ValueColumn string `json:"valueColumn" binding:"required"`
	Function    string `json:"function"`
}

func (s *Server) handleAggregate(c *gin.Context) {
	var req aggregateRequest
	if !s.bindJSON(c, &req) {
		return
	}
	fn := aggregation.FuncSum
	if strings.TrimSpace(req.Function) != "" {
		parsed, err := aggregation.ParseFunction(req.Function)
		if err != nil {
			s.respondError(c, errors.InvalidInput(err.Error()))
			return
		}
		fn = parsed
	}

	result, err := s.dashboard.Aggregate(c.Request.Context(), aggregation.Spec{
		GroupColumn: req.GroupColumn,
		ValueColumn: req.ValueColumn,
		Function:    fn,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"function": fn, "groups": result.Groups})
}

type columnRequest struct {
	Column string `json:"column" binding:"required"`
	Bins   int    `json:"bins"`
}

func (s *Server) handleStatsSummary(c *gin.Context) {
	var req columnRequest
	if !s.bindJSON(c, &req) {
		return
	}
	values, err := s.dashboard.ColumnValues(c.Request.Context(), req.Column)
	if err != nil {
		s.respondError(c, err)
		return
	}
	sum, err := numeric.Summarize(values)
	if stderrors.Is(err, stats.ErrEmptyInput) {
		s.respondError(c, errors.New(errors.CodeNoData, "column "+req.Column+" has no numeric values"))
		return
	}
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

func (s *Server) handleHistogram(c *gin.Context) {
	var req columnRequest
	if !s.bindJSON(c, &req) {
		return
	}
	bins := req.Bins
	if bins > numeric.MaxBins {
		s.respondError(c, errors.InvalidInput(fmt.Sprintf("bins must be at most %d", numeric.MaxBins)))
		return
	}
	if bins <= 0 {
		bins = s.config.HistogramBins
	}
	values, err := s.dashboard.ColumnValues(c.Request.Context(), req.Column)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, numeric.Histogram(values, bins))
}

type drillDownRequest struct {
	Column string `json:"column" binding:"required"`
	Label  string `json:"label"`
}

func (s *Server) handleDrillDown(c *gin.Context) {
	var req drillDownRequest
	if !s.bindJSON(c, &req) {
		return
	}
	ds, err := s.dashboard.DrillDown(c.Request.Context(), req.Column, req.Label)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rows": ds.Rows, "rowCount": ds.Len()})
}
