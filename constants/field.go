package constants

// Report field names, one per declared form value plus the OCR pseudo-field.
const (
	FieldOCR               = "ocr"
	FieldBrandName         = "brand_name"
	FieldClassType         = "class_type_designation"
	FieldAlcoholContent    = "alcohol_content"
	FieldNetContents       = "net_contents"
	FieldNameAddress       = "name_address"
	FieldGovernmentWarning = "government_warning"
)
