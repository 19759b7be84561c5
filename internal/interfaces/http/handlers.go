package http

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hima852/expenseflow/internal/application/port"
	"github.com/hima852/expenseflow/internal/application/service"
	"github.com/hima852/expenseflow/internal/domain/entity"
	"github.com/hima852/expenseflow/internal/domain/visibility"
	"github.com/hima852/expenseflow/internal/domain/workflow"
	"github.com/hima852/expenseflow/pkg/utils"
)

const dateLayout = "2006-01-02"

// Handlers contains all HTTP request handlers
type Handlers struct {
	reviewService  service.ReviewService
	historyService service.HistoryService
	exportService  service.ExportService
	files          port.FileStore
	maxUploadSize  int64
	logger         Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	reviewService service.ReviewService,
	historyService service.HistoryService,
	exportService service.ExportService,
	files port.FileStore,
	maxUploadSize int64,
	logger Logger,
) *Handlers {
	return &Handlers{
		reviewService:  reviewService,
		historyService: historyService,
		exportService:  exportService,
		files:          files,
		maxUploadSize:  maxUploadSize,
		logger:         logger,
	}
}

// Response represents a standard JSON success response
type Response struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// DetailResponse bundles a claim with its formatted trail and metrics
type DetailResponse struct {
	Expense *entity.Claim             `json:"expense"`
	History []service.FormattedEntry  `json:"history"`
	Metrics service.ProcessingMetrics `json:"metrics"`
}

// ReviewRequest is the body of POST /api/expenses/:id/review
type ReviewRequest struct {
	Status  string `json:"status" binding:"required"`
	Comment string `json:"comment"`
}

func getActor(c *gin.Context) entity.Actor {
	actor, _ := c.MustGet(actorKey).(entity.Actor)
	return actor
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Status: "success",
		Data: HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   "1.0.0",
		},
	})
}

// SubmitExpense handles POST /api/expenses (multipart)
func (h *Handlers) SubmitExpense(c *gin.Context) {
	actor := getActor(c)

	in := service.SubmitInput{
		SiteName:            utils.SanitizeString(c.PostForm("siteName")),
		Unit:                utils.SanitizeString(c.PostForm("unit")),
		ProjectID:           utils.SanitizeString(c.PostForm("projectId")),
		ProjectName:         utils.SanitizeString(c.PostForm("projectName")),
		TransportMode:       utils.SanitizeString(c.PostForm("transportMode")),
		ReturnTransportMode: utils.SanitizeString(c.PostForm("returnTransportMode")),
	}

	var ok bool
	if in.JourneyDate, ok = h.parseDate(c, "journeyDate"); !ok {
		return
	}
	if in.ReturnDate, ok = h.parseOptionalDate(c, "returnDate"); !ok {
		return
	}
	if in.AdvanceAmount, ok = h.parseAmount(c, "advanceAmount"); !ok {
		return
	}
	if in.TrainFare, ok = h.parseAmount(c, "trainFare"); !ok {
		return
	}
	if in.HotelFare, ok = h.parseAmount(c, "hotelFare"); !ok {
		return
	}
	if in.FoodCost, ok = h.parseAmount(c, "foodCost"); !ok {
		return
	}

	var err error
	if in.HotelReceipt, err = h.saveUpload(c, "hotelReceipt"); err != nil {
		writeError(c, err)
		return
	}
	if in.FoodReceipt, err = h.saveUpload(c, "foodReceipt"); err != nil {
		writeError(c, err)
		return
	}
	if in.TransportReceipt, err = h.saveUpload(c, "transportReceipt"); err != nil {
		writeError(c, err)
		return
	}

	claim, err := h.reviewService.Submit(c.Request.Context(), actor, in)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Status: "success", Data: claim})
}

// ListExpenses handles GET /api/expenses
func (h *Handlers) ListExpenses(c *gin.Context) {
	actor := getActor(c)

	filters, ok := h.parseFilters(c)
	if !ok {
		return
	}

	claims, err := h.reviewService.ListVisible(c.Request.Context(), actor, filters)
	if err != nil {
		writeError(c, err)
		return
	}
	if claims == nil {
		claims = []*entity.Claim{}
	}

	c.JSON(http.StatusOK, Response{Status: "success", Data: claims})
}

// GetExpense handles GET /api/expenses/:id
func (h *Handlers) GetExpense(c *gin.Context) {
	actor := getActor(c)

	id, ok := h.parseID(c)
	if !ok {
		return
	}

	claim, err := h.reviewService.GetDetail(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	if !visibility.Scope(actor, visibility.Filters{}).Matches(claim) {
		writeError(c, &entity.NotAuthorizedError{Reason: "this expense is outside your review scope"})
		return
	}

	entries, err := h.reviewService.GetHistory(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Status: "success",
		Data: DetailResponse{
			Expense: claim,
			History: h.historyService.Format(entries),
			Metrics: h.historyService.Metrics(claim, entries),
		},
	})
}

// GetExpenseHistory handles GET /api/expenses/:id/history
func (h *Handlers) GetExpenseHistory(c *gin.Context) {
	actor := getActor(c)

	id, ok := h.parseID(c)
	if !ok {
		return
	}

	claim, err := h.reviewService.GetDetail(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	if !visibility.Scope(actor, visibility.Filters{}).Matches(claim) {
		writeError(c, &entity.NotAuthorizedError{Reason: "this expense is outside your review scope"})
		return
	}

	entries, err := h.reviewService.GetHistory(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Status: "success", Data: h.historyService.Format(entries)})
}

// ReviewExpense handles POST /api/expenses/:id/review
func (h *Handlers) ReviewExpense(c *gin.Context) {
	actor := getActor(c)

	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBadRequest(c, "invalid review body: status is required")
		return
	}

	decision, err := workflow.NewReviewDecision(req.Status, utils.SanitizeString(req.Comment))
	if err != nil {
		writeError(c, err)
		return
	}

	claim, err := h.reviewService.Review(c.Request.Context(), actor, id, decision)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Status: "success", Data: claim})
}

// EditExpense handles PUT /api/expenses/:id (multipart patch)
func (h *Handlers) EditExpense(c *gin.Context) {
	actor := getActor(c)

	id, ok := h.parseID(c)
	if !ok {
		return
	}

	patch, ok := h.parsePatch(c)
	if !ok {
		return
	}

	claim, err := h.reviewService.Edit(c.Request.Context(), actor, id, patch)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Status: "success", Data: claim})
}

// DownloadReceipt handles GET /api/expenses/receipt/:key
func (h *Handlers) DownloadReceipt(c *gin.Context) {
	key := c.Param("key")

	reader, size, contentType, err := h.files.Open(c.Request.Context(), key)
	if err != nil {
		writeError(c, err)
		return
	}
	defer reader.Close()

	c.DataFromReader(http.StatusOK, size, contentType, reader, map[string]string{
		"Content-Disposition": fmt.Sprintf("inline; filename=%q", key),
	})
}

// ExportExpenses handles GET /api/expenses/export
func (h *Handlers) ExportExpenses(c *gin.Context) {
	actor := getActor(c)

	filters, ok := h.parseFilters(c)
	if !ok {
		return
	}

	data, err := h.exportService.ExportClaims(c.Request.Context(), actor, filters)
	if err != nil {
		writeError(c, err)
		return
	}

	filename := fmt.Sprintf("expenses_%s.xlsx", time.Now().Format(dateLayout))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// parseID reads the :id parameter, responding 400 on garbage.
func (h *Handlers) parseID(c *gin.Context) (int64, bool) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		writeBadRequest(c, "invalid expense ID: "+idStr)
		return 0, false
	}
	return id, true
}

// parseFilters reads the optional status/startDate/endDate query.
func (h *Handlers) parseFilters(c *gin.Context) (visibility.Filters, bool) {
	filters := visibility.Filters{Status: c.Query("status")}

	for _, q := range []struct {
		name string
		dst  **time.Time
	}{
		{"startDate", &filters.StartDate},
		{"endDate", &filters.EndDate},
	} {
		raw := c.Query(q.name)
		if raw == "" {
			continue
		}
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			writeBadRequest(c, fmt.Sprintf("invalid %s: expected YYYY-MM-DD", q.name))
			return visibility.Filters{}, false
		}
		*q.dst = &t
	}
	return filters, true
}

func (h *Handlers) parseDate(c *gin.Context, field string) (time.Time, bool) {
	raw := c.PostForm(field)
	if raw == "" {
		return time.Time{}, true
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		writeBadRequest(c, fmt.Sprintf("invalid %s: expected YYYY-MM-DD", field))
		return time.Time{}, false
	}
	return t, true
}

func (h *Handlers) parseOptionalDate(c *gin.Context, field string) (*time.Time, bool) {
	t, ok := h.parseDate(c, field)
	if !ok {
		return nil, false
	}
	if t.IsZero() {
		return nil, true
	}
	return &t, true
}

func (h *Handlers) parseAmount(c *gin.Context, field string) (float64, bool) {
	raw := c.PostForm(field)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		writeBadRequest(c, fmt.Sprintf("invalid %s: expected a non-negative number", field))
		return 0, false
	}
	return v, true
}

// saveUpload stores an optional multipart file and returns its key, or
// "" when the field is absent.
func (h *Handlers) saveUpload(c *gin.Context, field string) (string, error) {
	header, err := c.FormFile(field)
	if err == multipart.ErrMessageTooLarge {
		return "", &entity.ValidationError{
			Code:    "FILE_TOO_LARGE",
			Message: "Uploaded file exceeds the size limit",
			Advice:  "Upload a smaller file",
		}
	}
	if err != nil {
		// Absent field: receipts are optional.
		return "", nil
	}
	if header.Size > h.maxUploadSize {
		return "", &entity.ValidationError{
			Code:    "FILE_TOO_LARGE",
			Message: "Uploaded file exceeds the size limit",
			Advice:  "Upload a smaller file",
		}
	}

	file, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("open upload %s: %w", field, err)
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("read upload %s: %w", field, err)
	}

	return h.files.Save(c.Request.Context(), header.Filename, content)
}

// parsePatch builds the edit patch from whichever multipart fields are
// present. Receipt uploads replace the stored key.
func (h *Handlers) parsePatch(c *gin.Context) (service.ClaimPatch, bool) {
	var patch service.ClaimPatch

	setString := func(field string, dst **string) {
		if v, present := c.GetPostForm(field); present {
			s := utils.SanitizeString(v)
			*dst = &s
		}
	}
	setString("siteName", &patch.SiteName)
	setString("unit", &patch.Unit)
	setString("projectId", &patch.ProjectID)
	setString("projectName", &patch.ProjectName)
	setString("transportMode", &patch.TransportMode)
	setString("returnTransportMode", &patch.ReturnTransportMode)

	for _, f := range []struct {
		name string
		dst  **float64
	}{
		{"advanceAmount", &patch.AdvanceAmount},
		{"trainFare", &patch.TrainFare},
		{"hotelFare", &patch.HotelFare},
		{"foodCost", &patch.FoodCost},
	} {
		raw, present := c.GetPostForm(f.name)
		if !present {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 {
			writeBadRequest(c, fmt.Sprintf("invalid %s: expected a non-negative number", f.name))
			return service.ClaimPatch{}, false
		}
		*f.dst = &v
	}

	for _, f := range []struct {
		name string
		dst  **time.Time
	}{
		{"journeyDate", &patch.JourneyDate},
		{"returnDate", &patch.ReturnDate},
	} {
		raw, present := c.GetPostForm(f.name)
		if !present || raw == "" {
			continue
		}
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			writeBadRequest(c, fmt.Sprintf("invalid %s: expected YYYY-MM-DD", f.name))
			return service.ClaimPatch{}, false
		}
		*f.dst = &t
	}

	for _, f := range []struct {
		name string
		dst  **string
	}{
		{"hotelReceipt", &patch.HotelReceipt},
		{"foodReceipt", &patch.FoodReceipt},
		{"transportReceipt", &patch.TransportReceipt},
	} {
		key, err := h.saveUpload(c, f.name)
		if err != nil {
			writeError(c, err)
			return service.ClaimPatch{}, false
		}
		if key != "" {
			*f.dst = &key
		}
	}

	return patch, true
}
