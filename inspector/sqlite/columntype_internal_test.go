package sqlite

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/kodeflow/datamodel/inspector"
)

func TestColumnType(t *testing.T) {
	c := qt.New(t)

	tests := []struct {
		declType string
		want     inspector.ColumnType
	}{
		{"INTEGER", inspector.ColInt},
		{"REAL", inspector.ColFloat},
		{"DOUBLE PRECISION", inspector.ColFloat},
		{"DATETIME", inspector.ColDateTime},
		{"TEXT", inspector.ColString},
		{"VARCHAR(255)", inspector.ColString},
	}
	for _, tt := range tests {
		c.Assert(columnType(tt.declType), qt.Equals, tt.want, qt.Commentf("declType=%s", tt.declType))
	}
}
