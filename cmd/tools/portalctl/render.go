package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"admission-portal/internal/common/errors"
	"admission-portal/internal/models"
)

const (
	formatYAML = "yaml"
	formatJSON = "json"
)

// render writes v in the requested format. Types without yaml tags go
// through their JSON form so both formats use the same field names.
func render(w io.Writer, format string, v interface{}) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML, "":
		raw, err := json.Marshal(v)
		if err != nil {
			return err
		}
		var generic interface{}
		if err := json.Unmarshal(raw, &generic); err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(generic); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q (want yaml or json)", format)
	}
}

// readRecord loads an application record from a YAML or JSON file. "-"
// reads stdin.
func readRecord(path string) (models.ApplicationRecord, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return models.ApplicationRecord{}, err
	}
	return decodeRecord(data)
}

func decodeRecord(data []byte) (models.ApplicationRecord, error) {
	rec := models.NewApplicationRecord()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&rec); err != nil {
		return models.ApplicationRecord{}, fmt.Errorf("decode record: %w", err)
	}
	return rec, nil
}

// printError prints field errors one per line under the error message.
func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %v\n", err)
	se, ok := errors.AsStandard(err)
	if !ok {
		return
	}
	for _, fe := range se.Fields {
		fmt.Fprintf(w, "  %s: %s\n", fe.Field, fe.Message)
	}
}

func formatFieldErrors(fields []errors.FieldError) string {
	lines := make([]string, 0, len(fields))
	for _, fe := range fields {
		lines = append(lines, fmt.Sprintf("  - %s: %s", fe.Field, fe.Message))
	}
	return strings.Join(lines, "\n")
}
