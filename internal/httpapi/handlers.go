package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/label-verifier/constants"
	"github.com/joseph-ayodele/label-verifier/internal/common"
	"github.com/joseph-ayodele/label-verifier/internal/entity"
	"github.com/joseph-ayodele/label-verifier/internal/report"
	"github.com/joseph-ayodele/label-verifier/internal/validators"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type analyzeResponse struct {
	entity.Report
	ElapsedMS int64    `json:"elapsed_ms"`
	Warnings  []string `json:"warnings,omitempty"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (h *handler) fail(c *gin.Context, err error) {
	status := common.HTTPStatus(err)
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		status = http.StatusRequestEntityTooLarge
		err = common.InvalidInput("request body exceeds %d bytes", tooLarge.Limit)
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "path", c.FullPath(), "error", err)
	}
	c.AbortWithStatusJSON(status, errorResponse{Error: common.ErrorCode(err), Message: common.ErrorMessage(err)})
}

// postAnalyze handles multipart fields beverage_type, form_data (JSON) and one
// or more images. ?format=xlsx returns the report as a workbook.
func (h *handler) postAnalyze(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.opts.MaxUploadBytes)
	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.fail(c, err)
			return
		}
		h.fail(c, common.InvalidInput("expected a multipart form: %v", err))
		return
	}

	rawType := strings.TrimSpace(c.PostForm("beverage_type"))
	if rawType == "" {
		h.fail(c, common.InvalidInput("beverage_type is required (one of %v)", constants.BeverageTypeStrings()))
		return
	}
	// unknown values pass through and are rejected by the validator lookup
	bt, _ := constants.ParseBeverageType(rawType)

	formData, err := entity.ParseFormData([]byte(c.PostForm("form_data")))
	if err != nil {
		h.fail(c, err)
		return
	}

	images, err := readImages(form.File["images"])
	if err != nil {
		h.fail(c, err)
		return
	}

	rep, err := h.validator.Validate(c.Request.Context(), bt, formData, images)
	if err != nil {
		h.fail(c, err)
		return
	}

	if strings.EqualFold(c.Query("format"), "xlsx") {
		data, err := report.WriteXLSX(rep)
		if err != nil {
			h.fail(c, fmt.Errorf("render xlsx: %w", err))
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="label-report-%s.xlsx"`, rep.RunID))
		c.Data(http.StatusOK, xlsxContentType, data)
		return
	}
	c.JSON(http.StatusOK, analyzeResponse{Report: rep, ElapsedMS: rep.Elapsed.Milliseconds(), Warnings: rep.Warnings()})
}

// readImages enforces the accepted formats and rejects empty files.
func readImages(files []*multipart.FileHeader) ([]entity.LabelImage, error) {
	if len(files) == 0 {
		return nil, common.NewAppError(common.CodeNoImages, "at least one image is required", common.ErrNoImages)
	}
	images := make([]entity.LabelImage, 0, len(files))
	for _, fh := range files {
		name := filepath.Base(fh.Filename)
		if !constants.IsAllowedImageExt(filepath.Ext(name)) {
			return nil, common.InvalidInput("image %q: unsupported format (allowed: png, jpg, jpeg)", name)
		}
		data, err := readFile(fh)
		if err != nil {
			return nil, err
		}
		if len(data) == 0 {
			return nil, common.InvalidInput("image %q is empty", name)
		}
		images = append(images, entity.LabelImage{ID: name, Data: data})
	}
	return images, nil
}

func readFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload %s: %w", fh.Filename, err)
	}
	defer f.Close()
	return io.ReadAll(f)
}

type healthResponse struct {
	Status       string `json:"status"`
	OCREngine    string `json:"ocr_engine"`
	OCRAvailable bool   `json:"ocr_available"`
	Error        string `json:"error,omitempty"`
}

func (h *handler) getHealth(c *gin.Context) {
	resp := healthResponse{Status: "ok", OCREngine: h.health.Name(), OCRAvailable: true}
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.opts.HealthTimeout)
	defer cancel()
	if err := h.health.Available(ctx); err != nil {
		resp.Status = "degraded"
		resp.OCRAvailable = false
		resp.Error = err.Error()
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

type ruleEntry struct {
	RuleID   constants.RuleID   `json:"rule_id"`
	Severity constants.Severity `json:"severity"`
}

type ruleSet struct {
	BeverageType constants.BeverageType `json:"beverage_type"`
	Rules        []ruleEntry            `json:"rules"`
}

func (h *handler) getRules(c *gin.Context) {
	var out []ruleSet
	for _, v := range validators.All() {
		rs := ruleSet{BeverageType: v.Type}
		for _, id := range v.RuleIDs {
			rs.Rules = append(rs.Rules, ruleEntry{RuleID: id, Severity: v.Severity(id)})
		}
		out = append(out, rs)
	}
	c.JSON(http.StatusOK, out)
}
