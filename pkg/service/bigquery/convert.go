package bigquery

import (
	"encoding/base64"
	"fmt"
	"math/big"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	model "github.com/secmon-lab/bqchat/pkg/domain/model/bigquery"
)

// convertValue turns a BigQuery cell into a JSON-safe value. field may be nil
// when the schema is unknown.
func convertValue(value bigquery.Value, field *bigquery.FieldSchema) any {
	if value == nil {
		return nil
	}

	switch v := value.(type) {
	case string, int, int64, float64, bool:
		return v
	case time.Time:
		return v.UTC().Format(time.RFC3339Nano)
	case []byte:
		return base64.StdEncoding.EncodeToString(v)
	case *big.Rat:
		return numericString(v, field)
	case []bigquery.Value:
		result := make([]any, len(v))
		for i, item := range v {
			result[i] = convertValue(item, elementField(field, i))
		}
		return result
	case map[string]bigquery.Value:
		result := make(map[string]any, len(v))
		for key, val := range v {
			result[key] = convertValue(val, subField(field, key))
		}
		return result
	default:
		// civil.Date, civil.DateTime, civil.Time, etc.
		return fmt.Sprintf("%v", v)
	}
}

// numericString renders NUMERIC and BIGNUMERIC values as decimals without
// trailing zeros.
func numericString(r *big.Rat, field *bigquery.FieldSchema) string {
	var s string
	if field != nil && field.Type == bigquery.BigNumericFieldType {
		s = bigquery.BigNumericString(r)
	} else {
		s = bigquery.NumericString(r)
	}

	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	return s
}

// elementField returns the schema of the i-th item of a repeated or record value.
func elementField(field *bigquery.FieldSchema, i int) *bigquery.FieldSchema {
	switch {
	case field == nil:
		return nil
	case field.Repeated:
		elem := *field
		elem.Repeated = false
		return &elem
	case i < len(field.Schema):
		return field.Schema[i]
	default:
		return nil
	}
}

func subField(field *bigquery.FieldSchema, name string) *bigquery.FieldSchema {
	if field == nil {
		return nil
	}
	for _, f := range field.Schema {
		if f != nil && f.Name == name {
			return f
		}
	}
	return nil
}

func convertColumns(schema bigquery.Schema) []model.Column {
	columns := make([]model.Column, 0, len(schema))
	for _, f := range schema {
		if f == nil {
			continue
		}
		columns = append(columns, model.Column{Name: f.Name, Type: string(f.Type)})
	}
	return columns
}
