package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/label-verifier/constants"
	"github.com/joseph-ayodele/label-verifier/internal/common"
	"github.com/joseph-ayodele/label-verifier/internal/entity"
	"github.com/joseph-ayodele/label-verifier/internal/validators"
)

// Validator runs one submission; core.Processor implements it.
type Validator interface {
	Validate(ctx context.Context, bt constants.BeverageType, form entity.FormData, images []entity.LabelImage) (entity.Report, error)
}

type LabelService struct {
	validator Validator
	logger    *slog.Logger
}

func NewLabelService(v Validator, logger *slog.Logger) *LabelService {
	if logger == nil {
		logger = slog.Default()
	}
	return &LabelService{validator: v, logger: logger}
}

// reportPayload matches the HTTP API's analyze response.
type reportPayload struct {
	entity.Report
	ElapsedMS int64    `json:"elapsed_ms"`
	Warnings  []string `json:"warnings,omitempty"`
}

// Validate expects fields beverage_type (string), form_data (object) and
// images (list of {id, data}) where data is base64 encoded.
func (s *LabelService) Validate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()

	rawType := strings.TrimSpace(fields["beverage_type"].GetStringValue())
	if rawType == "" {
		return nil, common.InvalidArgumentErrorf("beverage_type is required (one of %v)", constants.BeverageTypeStrings())
	}
	bt, _ := constants.ParseBeverageType(rawType)

	formValue := fields["form_data"].GetStructValue()
	if formValue == nil {
		return nil, common.InvalidArgumentError("form_data is required")
	}
	raw, err := protojson.Marshal(formValue)
	if err != nil {
		return nil, common.InternalError(fmt.Sprintf("encode form_data: %v", err))
	}
	form, err := entity.ParseFormData(raw)
	if err != nil {
		return nil, common.GRPCError(err)
	}

	images, err := decodeImages(fields["images"].GetListValue())
	if err != nil {
		return nil, common.GRPCError(err)
	}

	rep, err := s.validator.Validate(ctx, bt, form, images)
	if err != nil {
		s.logger.Warn("validate failed", "beverage_type", rawType, "error", err)
		return nil, common.GRPCError(err)
	}
	out, err := toStruct(reportPayload{Report: rep, ElapsedMS: rep.Elapsed.Milliseconds(), Warnings: rep.Warnings()})
	if err != nil {
		return nil, common.InternalError(fmt.Sprintf("encode report: %v", err))
	}
	return out, nil
}

func (s *LabelService) ListRules(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	type rule struct {
		RuleID   constants.RuleID   `json:"rule_id"`
		Severity constants.Severity `json:"severity"`
	}
	type ruleSet struct {
		BeverageType constants.BeverageType `json:"beverage_type"`
		Rules        []rule                 `json:"rules"`
	}
	var sets []ruleSet
	for _, v := range validators.All() {
		rs := ruleSet{BeverageType: v.Type}
		for _, id := range v.RuleIDs {
			rs.Rules = append(rs.Rules, rule{RuleID: id, Severity: v.Severity(id)})
		}
		sets = append(sets, rs)
	}
	out, err := toStruct(map[string]any{"validators": sets})
	if err != nil {
		return nil, common.InternalError(err.Error())
	}
	return out, nil
}

func decodeImages(list *structpb.ListValue) ([]entity.LabelImage, error) {
	values := list.GetValues()
	if len(values) == 0 {
		return nil, common.NewAppError(common.CodeNoImages, "at least one image is required", common.ErrNoImages)
	}
	images := make([]entity.LabelImage, 0, len(values))
	for i, v := range values {
		st := v.GetStructValue()
		id := strings.TrimSpace(st.GetFields()["id"].GetStringValue())
		if id == "" {
			id = fmt.Sprintf("image-%d", i+1)
		}
		if ext := filepath.Ext(id); ext != "" && !constants.IsAllowedImageExt(ext) {
			return nil, common.InvalidInput("image %q: unsupported format (allowed: png, jpg, jpeg)", id)
		}
		data, err := base64.StdEncoding.DecodeString(st.GetFields()["data"].GetStringValue())
		if err != nil {
			return nil, common.InvalidInput("image %q: data is not base64: %v", id, err)
		}
		if len(data) == 0 {
			return nil, common.InvalidInput("image %q is empty", id)
		}
		images = append(images, entity.LabelImage{ID: id, Data: data})
	}
	return images, nil
}

// NewValidateRequest builds the request message for LabelServiceClient.Validate.
func NewValidateRequest(beverageType string, form entity.FormData, images []entity.LabelImage) (*structpb.Struct, error) {
	formStruct, err := toStruct(form)
	if err != nil {
		return nil, err
	}
	list := make([]any, 0, len(images))
	for _, img := range images {
		// structpb stores []byte as a base64 string
		list = append(list, map[string]any{"id": img.ID, "data": img.Data})
	}
	req, err := structpb.NewStruct(map[string]any{
		"beverage_type": beverageType,
		"images":        list,
	})
	if err != nil {
		return nil, err
	}
	req.Fields["form_data"] = structpb.NewStructValue(formStruct)
	return req, nil
}

// DecodeReport converts a Validate response back into a report.
func DecodeReport(resp *structpb.Struct) (entity.Report, error) {
	raw, err := protojson.Marshal(resp)
	if err != nil {
		return entity.Report{}, err
	}
	var payload reportPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return entity.Report{}, fmt.Errorf("decode report: %w", err)
	}
	payload.Report.Elapsed = time.Duration(payload.ElapsedMS) * time.Millisecond
	return payload.Report, nil
}

func toStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return structpb.NewStruct(m)
}
