package config_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/kodeflow/datamodel/config"
	"github.com/kodeflow/datamodel/sqlast"
)

func TestDefaultRenderOptions(t *testing.T) {
	c := qt.New(t)

	opts := config.DefaultRenderOptions()

	c.Assert(opts, qt.IsNotNil)
	c.Assert(opts.IgnoredDialects, qt.HasLen, 0)
}

func TestWithIgnoredDialects(t *testing.T) {
	tests := []struct {
		name     string
		families []sqlast.SqlFamily
		expected []sqlast.SqlFamily
	}{
		{
			name:     "single dialect",
			families: []sqlast.SqlFamily{sqlast.SQLite},
			expected: []sqlast.SqlFamily{sqlast.SQLite},
		},
		{
			name:     "multiple dialects",
			families: []sqlast.SqlFamily{sqlast.SQLite, sqlast.MySQL},
			expected: []sqlast.SqlFamily{sqlast.SQLite, sqlast.MySQL},
		},
		{
			name:     "empty list",
			families: []sqlast.SqlFamily{},
			expected: []sqlast.SqlFamily{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)

			opts := config.WithIgnoredDialects(tt.families...)
			c.Assert(opts.IgnoredDialects, qt.DeepEquals, tt.expected)
		})
	}
}

func TestWithAdditionalIgnoredDialects(t *testing.T) {
	c := qt.New(t)

	opts := config.WithAdditionalIgnoredDialects(sqlast.SQLite)
	c.Assert(opts.IgnoredDialects, qt.DeepEquals, []sqlast.SqlFamily{sqlast.SQLite})
}

func TestRenderOptions_IsDialectIgnored(t *testing.T) {
	tests := []struct {
		name     string
		ignored  []sqlast.SqlFamily
		family   sqlast.SqlFamily
		expected bool
	}{
		{
			name:     "dialect is ignored",
			ignored:  []sqlast.SqlFamily{sqlast.SQLite, sqlast.MySQL},
			family:   sqlast.SQLite,
			expected: true,
		},
		{
			name:     "dialect is not ignored",
			ignored:  []sqlast.SqlFamily{sqlast.SQLite},
			family:   sqlast.Postgres,
			expected: false,
		},
		{
			name:     "empty ignore list",
			ignored:  []sqlast.SqlFamily{},
			family:   sqlast.SQLite,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)

			opts := &config.RenderOptions{IgnoredDialects: tt.ignored}
			c.Assert(opts.IsDialectIgnored(tt.family), qt.Equals, tt.expected)
		})
	}
}

func TestRenderOptions_FilterIgnoredDialects(t *testing.T) {
	c := qt.New(t)

	opts := &config.RenderOptions{IgnoredDialects: []sqlast.SqlFamily{sqlast.SQLite}}
	result := opts.FilterIgnoredDialects([]sqlast.SqlFamily{sqlast.Postgres, sqlast.MySQL, sqlast.SQLite})
	c.Assert(result, qt.DeepEquals, []sqlast.SqlFamily{sqlast.Postgres, sqlast.MySQL})
}

func TestLibraryUsageExamples(t *testing.T) {
	c := qt.New(t)

	t.Run("default usage renders every dialect", func(t *testing.T) {
		opts := config.DefaultRenderOptions()
		c.Assert(opts.IsDialectIgnored(sqlast.SQLite), qt.IsFalse)
	})

	t.Run("a test suite skips SQLite's known column-type-change restriction", func(t *testing.T) {
		opts := config.WithIgnoredDialects(sqlast.SQLite)
		c.Assert(opts.IsDialectIgnored(sqlast.SQLite), qt.IsTrue)
		c.Assert(opts.IsDialectIgnored(sqlast.Postgres), qt.IsFalse)
	})
}
