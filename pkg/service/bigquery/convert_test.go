package bigquery

import (
	"math/big"
	"testing"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/m-mizutani/gt"
)

func TestConvertValue(t *testing.T) {
	ts := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	gt.V(t, convertValue(nil, nil)).Nil()
	gt.V(t, convertValue("a", nil)).Equal(any("a"))
	gt.V(t, convertValue(int64(4), nil)).Equal(any(int64(4)))
	gt.V(t, convertValue(ts, nil)).Equal(any("2025-03-01T12:00:00Z"))
	gt.V(t, convertValue([]byte("hi"), nil)).Equal(any("aGk="))
	gt.V(t, convertValue(civil.Date{Year: 2025, Month: 3, Day: 1}, nil)).Equal(any("2025-03-01"))

	nested := convertValue([]bigquery.Value{
		map[string]bigquery.Value{"k": int64(1), "when": ts},
	}, nil)
	gt.V(t, nested).Equal(any([]any{map[string]any{"k": int64(1), "when": "2025-03-01T12:00:00Z"}}))
}

func TestConvertNumeric(t *testing.T) {
	numeric := &bigquery.FieldSchema{Name: "price", Type: bigquery.NumericFieldType}
	bigNumeric := &bigquery.FieldSchema{Name: "amount", Type: bigquery.BigNumericFieldType}

	t.Run("decimal notation", func(t *testing.T) {
		gt.V(t, convertValue(big.NewRat(3, 2), numeric)).Equal(any("1.5"))
		gt.V(t, convertValue(big.NewRat(1999, 100), numeric)).Equal(any("19.99"))
		gt.V(t, convertValue(big.NewRat(-1, 4), numeric)).Equal(any("-0.25"))
	})

	t.Run("integral values drop the point", func(t *testing.T) {
		gt.V(t, convertValue(big.NewRat(20, 1), numeric)).Equal(any("20"))
		gt.V(t, convertValue(big.NewRat(0, 1), numeric)).Equal(any("0"))
	})

	t.Run("without schema", func(t *testing.T) {
		gt.V(t, convertValue(big.NewRat(3, 2), nil)).Equal(any("1.5"))
	})

	t.Run("BIGNUMERIC keeps its scale", func(t *testing.T) {
		// 1/3 has more digits than NUMERIC's 9
		got := convertValue(big.NewRat(1, 3), bigNumeric)
		gt.V(t, got).Equal(any("0.33333333333333333333333333333333333333"))
		gt.V(t, convertValue(big.NewRat(1, 3), numeric)).Equal(any("0.333333333"))
	})

	t.Run("repeated and record fields", func(t *testing.T) {
		repeated := &bigquery.FieldSchema{Name: "prices", Type: bigquery.NumericFieldType, Repeated: true}
		gt.V(t, convertValue([]bigquery.Value{big.NewRat(1, 2), big.NewRat(5, 1)}, repeated)).
			Equal(any([]any{"0.5", "5"}))

		record := &bigquery.FieldSchema{
			Name: "line",
			Type: bigquery.RecordFieldType,
			Schema: bigquery.Schema{
				{Name: "sku", Type: bigquery.StringFieldType},
				{Name: "total", Type: bigquery.BigNumericFieldType},
			},
		}
		gt.V(t, convertValue([]bigquery.Value{"A-1", big.NewRat(7, 4)}, record)).
			Equal(any([]any{"A-1", "1.75"}))
		gt.V(t, convertValue(map[string]bigquery.Value{"total": big.NewRat(7, 4)}, record)).
			Equal(any(map[string]any{"total": "1.75"}))
	})
}
