package entity

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/label-verifier/constants"
	"github.com/joseph-ayodele/label-verifier/internal/common"
)

// FormData is the set of values declared on the label application.
type FormData struct {
	BrandName            string   `json:"brand_name"`
	ClassTypeDesignation string   `json:"class_type_designation"`
	AlcoholContent       *float64 `json:"alcohol_content,omitempty"`
	NetContents          string   `json:"net_contents"`
	NameAddress          string   `json:"name_address"`
}

// formDataSchema accepts alcohol_content as a number or a numeric string ("45", "45%").
var formDataSchema = map[string]any{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type":    "object",
	"required": []string{
		constants.FieldBrandName,
		constants.FieldClassType,
		constants.FieldNetContents,
		constants.FieldNameAddress,
	},
	"properties": map[string]any{
		constants.FieldBrandName: map[string]any{"type": "string", "minLength": 1, "maxLength": 200},
		constants.FieldClassType: map[string]any{"type": "string", "minLength": 1, "maxLength": 200},
		constants.FieldAlcoholContent: map[string]any{
			"type":    []string{"number", "string", "null"},
			"minimum": 0,
			"maximum": 100,
			"pattern": `^\s*(\d{1,3}(\.\d+)?\s*%?)?\s*$`,
		},
		constants.FieldNetContents: map[string]any{"type": "string", "minLength": 1, "maxLength": 100},
		constants.FieldNameAddress: map[string]any{"type": "string", "minLength": 1, "maxLength": 500},
	},
}

type rawFormData struct {
	BrandName            string          `json:"brand_name"`
	ClassTypeDesignation string          `json:"class_type_designation"`
	AlcoholContent       json.RawMessage `json:"alcohol_content"`
	NetContents          string          `json:"net_contents"`
	NameAddress          string          `json:"name_address"`
}

// ParseFormData validates raw JSON against the form schema and decodes it.
func ParseFormData(raw []byte) (FormData, error) {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return FormData{}, common.InvalidInput("form_data is required")
	}
	if err := ValidateJSONAgainstSchema(formDataSchema, raw); err != nil {
		return FormData{}, common.InvalidInput("form_data is invalid: %v", err)
	}

	var rf rawFormData
	if err := json.Unmarshal(raw, &rf); err != nil {
		return FormData{}, common.InvalidInput("form_data is not valid JSON: %v", err)
	}
	abv, err := parseAlcoholContent(rf.AlcoholContent)
	if err != nil {
		return FormData{}, common.InvalidInput("alcohol_content: %v", err)
	}
	form := FormData{
		BrandName:            strings.TrimSpace(rf.BrandName),
		ClassTypeDesignation: strings.TrimSpace(rf.ClassTypeDesignation),
		AlcoholContent:       abv,
		NetContents:          strings.TrimSpace(rf.NetContents),
		NameAddress:          strings.TrimSpace(rf.NameAddress),
	}
	return form, form.Validate()
}

func parseAlcoholContent(raw json.RawMessage) (*float64, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return nil, nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return nil, err
		}
		s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(str), "%"))
		if s == "" {
			return nil, nil
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("%q is not a number", s)
	}
	return &f, nil
}

// Validate checks a FormData built in code (CLI flags, batch manifests).
func (f FormData) Validate() error {
	return common.NewValidator().
		Field(constants.FieldBrandName, f.BrandName, common.Required, common.MaxLength(200)).
		Field(constants.FieldClassType, f.ClassTypeDesignation, common.Required, common.MaxLength(200)).
		Field(constants.FieldAlcoholContent, f.AlcoholContent, common.Between(0, 100)).
		Field(constants.FieldNetContents, f.NetContents, common.Required, common.MaxLength(100)).
		Field(constants.FieldNameAddress, f.NameAddress, common.Required, common.MaxLength(500)).
		Err()
}

// FormatPercent renders an ABV without trailing zeros ("40", "12.5").
func FormatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
