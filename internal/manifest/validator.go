package manifest

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/modrules-dev/modrules/internal/rules"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"go.yaml.in/yaml/v3"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed schema/descriptor.schema.json
var schemaBytes []byte

var (
	compiledSchema *jsonschema.Schema
	compileOnce    sync.Once
	compileErr     error
	printer        = message.NewPrinter(language.English)
)

// ValidationResult contains the outcome of a descriptor validation.
type ValidationResult struct {
	Valid  bool
	Issues []ValidationIssue
}

// ValidationIssue represents a single validation error.
type ValidationIssue struct {
	Path    string // Instance location (e.g., "/name", "/native_sdks/0/libraries")
	Message string
	Keyword string // Schema keyword that failed, or "descriptor"/"requires" for post-schema checks
}

// getSchema compiles the embedded JSON schema once and returns it.
func getSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaBytes))
		if err != nil {
			compileErr = fmt.Errorf("unmarshaling schema JSON: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		if err := c.AddResource("descriptor.schema.json", doc); err != nil {
			compileErr = fmt.Errorf("adding schema resource: %w", err)
			return
		}
		compiledSchema, compileErr = c.Compile("descriptor.schema.json")
		if compileErr != nil {
			compileErr = fmt.Errorf("compiling schema: %w", compileErr)
		}
	})
	return compiledSchema, compileErr
}

// Validate validates raw descriptor bytes against the JSON schema.
// The error return is for syntax or schema compilation failures; schema
// violations are returned in the ValidationResult.
func Validate(data []byte, format Format) (*ValidationResult, error) {
	return validate(data, "<input>", format)
}

func validate(data []byte, path string, format Format) (*ValidationResult, error) {
	jsonData, err := toJSON(data, path, format)
	if err != nil {
		return nil, err
	}
	return validateJSON(jsonData)
}

// ValidateFile reads a file and validates it against the descriptor schema.
func ValidateFile(path string) (*ValidationResult, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return validate(data, path, format)
}

// Check runs schema validation and, when the schema passes, the descriptor
// invariants and the requires constraint against toolVersion.
func Check(path, toolVersion string) (*ValidationResult, error) {
	result, err := ValidateFile(path)
	if err != nil || !result.Valid {
		return result, err
	}

	f, err := ParseFile(path)
	if err != nil {
		return nil, err
	}
	if _, err := f.ToDescriptor(); err != nil {
		msg := err.Error()
		var cfgErr *rules.ConfigurationError
		if errors.As(err, &cfgErr) {
			msg = cfgErr.Err.Error()
		}
		result.Issues = append(result.Issues, ValidationIssue{Message: msg, Keyword: "descriptor"})
	}
	if err := CheckRequires(f.Requires, toolVersion); err != nil {
		result.Issues = append(result.Issues, ValidationIssue{Path: "/requires", Message: err.Error(), Keyword: "requires"})
	}
	result.Valid = len(result.Issues) == 0
	return result, nil
}

// toJSON brings either descriptor syntax into a JSON document the schema
// validator can consume.
func toJSON(data []byte, path string, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		var raw interface{}
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parsing YAML: %w", err)
		}
		if raw == nil {
			raw = map[string]interface{}{}
		}
		out, err := json.Marshal(raw)
		if err != nil {
			return nil, fmt.Errorf("converting to JSON: %w", err)
		}
		return out, nil
	case FormatHCL:
		f, err := parseHCL(data, path)
		if err != nil {
			return nil, err
		}
		out, err := json.Marshal(f)
		if err != nil {
			return nil, fmt.Errorf("converting to JSON: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown descriptor format %q", format)
	}
}

func validateJSON(jsonData []byte) (*ValidationResult, error) {
	schema, err := getSchema()
	if err != nil {
		return nil, fmt.Errorf("loading schema: %w", err)
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("preparing JSON for validation: %w", err)
	}

	err = schema.Validate(inst)
	if err == nil {
		return &ValidationResult{Valid: true}, nil
	}

	var validationErr *jsonschema.ValidationError
	if !errors.As(err, &validationErr) {
		return nil, fmt.Errorf("unexpected validation error type: %w", err)
	}

	return &ValidationResult{
		Valid:  false,
		Issues: extractIssues(validationErr),
	}, nil
}

// extractIssues walks the ValidationError tree and returns leaf-level issues.
func extractIssues(ve *jsonschema.ValidationError) []ValidationIssue {
	var issues []ValidationIssue
	collectValidationIssues(ve, &issues)

	if len(issues) == 0 {
		return []ValidationIssue{{
			Message: ve.Error(),
		}}
	}
	return deduplicateIssues(issues)
}

func collectValidationIssues(ve *jsonschema.ValidationError, issues *[]ValidationIssue) {
	if len(ve.Causes) == 0 {
		path := "/" + strings.Join(ve.InstanceLocation, "/")
		if len(ve.InstanceLocation) == 0 {
			path = ""
		}

		keyword := ""
		msg := ""
		if ve.ErrorKind != nil {
			if kwPath := ve.ErrorKind.KeywordPath(); len(kwPath) > 0 {
				keyword = kwPath[len(kwPath)-1]
			}
			msg = ve.ErrorKind.LocalizedString(printer)
		}

		// Container keywords carry no property-level detail.
		if keyword == "oneOf" || keyword == "allOf" || keyword == "$ref" || keyword == "" {
			return
		}

		*issues = append(*issues, ValidationIssue{
			Path:    path,
			Message: msg,
			Keyword: keyword,
		})
		return
	}

	for _, cause := range ve.Causes {
		collectValidationIssues(cause, issues)
	}
}

func deduplicateIssues(issues []ValidationIssue) []ValidationIssue {
	seen := make(map[string]bool)
	var result []ValidationIssue
	for _, issue := range issues {
		key := issue.Path + "|" + issue.Keyword + "|" + issue.Message
		if !seen[key] {
			seen[key] = true
			result = append(result, issue)
		}
	}
	return result
}
