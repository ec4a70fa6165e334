package storage

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// documentSchema describes the document taskbook writes. Stored data that
// does not match it still loads; mismatches are only reported.
const documentSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["subject", "description", "deadline", "completed"],
    "additionalProperties": false,
    "properties": {
      "subject": {"type": "string"},
      "description": {"type": "string"},
      "deadline": {"type": "string"},
      "completed": {"type": "boolean"}
    }
  }
}`

var taskSchema = jsonschema.MustCompileString("taskbook.schema.json", documentSchema)

// CheckDocument validates a decoded document against the canonical schema
// and returns one message per mismatch.
func CheckDocument(raw any) []string {
	err := taskSchema.Validate(raw)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return []string{err.Error()}
	}
	var out []string
	collectSchemaErrors(&out, ve)
	return out
}

func collectSchemaErrors(out *[]string, err *jsonschema.ValidationError) {
	if len(err.Causes) == 0 {
		path := jsonPointerToPath(err.InstanceLocation)
		if path == "" {
			*out = append(*out, err.Message)
			return
		}
		*out = append(*out, fmt.Sprintf("%s: %s", path, err.Message))
		return
	}
	for _, cause := range err.Causes {
		collectSchemaErrors(out, cause)
	}
}

func jsonPointerToPath(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "#")
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return ""
	}
	var path strings.Builder
	for _, part := range strings.Split(ptr, "/") {
		part = strings.ReplaceAll(part, "~1", "/")
		part = strings.ReplaceAll(part, "~0", "~")
		if part == "" {
			continue
		}
		if idx, err := strconv.Atoi(part); err == nil {
			fmt.Fprintf(&path, "[%d]", idx)
			continue
		}
		if path.Len() > 0 {
			path.WriteByte('.')
		}
		path.WriteString(part)
	}
	return path.String()
}
