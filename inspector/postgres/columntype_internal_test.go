package postgres

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/kodeflow/datamodel/inspector"
)

func TestColumnType(t *testing.T) {
	c := qt.New(t)

	tests := []struct {
		dataType string
		want     inspector.ColumnType
	}{
		{"integer", inspector.ColInt},
		{"bigint", inspector.ColInt},
		{"double precision", inspector.ColFloat},
		{"numeric", inspector.ColFloat},
		{"boolean", inspector.ColBoolean},
		{"timestamp without time zone", inspector.ColDateTime},
		{"USER-DEFINED", inspector.ColString}, // native enum column
		{"text", inspector.ColString},
	}
	for _, tt := range tests {
		c.Assert(columnType(tt.dataType, "status_enum"), qt.Equals, tt.want, qt.Commentf("dataType=%s", tt.dataType))
	}
}
