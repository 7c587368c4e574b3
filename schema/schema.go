package schema

import (
	"fmt"

	"github.com/hupe1980/segstore/model"
	"github.com/hupe1980/segstore/row"
)

// Column describes one field of a dataset version.
type Column struct {
	Name     string     `json:"name"`
	Dataset  string     `json:"dataset"`
	Version  int        `json:"version"`
	Type     ColumnType `json:"type"`
	Nullable bool       `json:"nullable,omitempty"`
}

// Validate checks the column definition.
func (c Column) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: column without name", model.ErrInvalidArgument)
	}
	if c.Dataset == "" {
		return fmt.Errorf("%w: column %q without dataset", model.ErrInvalidArgument, c.Name)
	}
	if !c.Type.IsValid() {
		return fmt.Errorf("%w: column %q has unknown type %d", model.ErrInvalidArgument, c.Name, c.Type)
	}
	return nil
}

// Dataset names a dataset and the column that orders its rows.
type Dataset struct {
	Name          string `json:"name"`
	SortKeyColumn string `json:"sort_key_column"`
}

// Projection is a validated set of columns of one dataset version together
// with its resolved key extraction.
type Projection struct {
	dataset  Dataset
	version  int
	columns  []Column
	index    map[string]int
	keyIndex int // -1 if the sort key column is not projected
}

// NewProjection validates cols against ds and returns a Projection.
//
// Every column must belong to ds and version, names must be unique and the
// sort key column must be present, non-nullable and of a comparable type.
func NewProjection(ds Dataset, version int, cols []Column) (*Projection, error) {
	p, err := newProjection(ds, version, cols)
	if err != nil {
		return nil, err
	}
	if p.keyIndex < 0 {
		return nil, &model.SchemaMismatchError{Column: ds.SortKeyColumn, Row: -1, Reason: "sort key column not in schema"}
	}
	key := p.columns[p.keyIndex]
	if key.Type.KeyKind() == model.KeyInvalid {
		return nil, &model.SchemaMismatchError{Column: key.Name, Row: -1, Reason: fmt.Sprintf("type %s is not comparable", key.Type)}
	}
	if key.Nullable {
		return nil, &model.SchemaMismatchError{Column: key.Name, Row: -1, Reason: "sort key column must not be nullable"}
	}
	return p, nil
}

func newProjection(ds Dataset, version int, cols []Column) (*Projection, error) {
	if ds.Name == "" {
		return nil, fmt.Errorf("%w: dataset without name", model.ErrInvalidArgument)
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("%w: projection of %q has no columns", model.ErrInvalidArgument, ds.Name)
	}

	p := &Projection{
		dataset:  ds,
		version:  version,
		columns:  make([]Column, len(cols)),
		index:    make(map[string]int, len(cols)),
		keyIndex: -1,
	}
	copy(p.columns, cols)

	for i, c := range p.columns {
		if err := c.Validate(); err != nil {
			return nil, err
		}
		if c.Dataset != ds.Name {
			return nil, &model.SchemaMismatchError{Column: c.Name, Row: -1, Reason: fmt.Sprintf("belongs to dataset %q, not %q", c.Dataset, ds.Name)}
		}
		if c.Version != version {
			return nil, &model.SchemaMismatchError{Column: c.Name, Row: -1, Reason: fmt.Sprintf("version %d, projection version %d", c.Version, version)}
		}
		if _, dup := p.index[c.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate column %q", model.ErrInvalidArgument, c.Name)
		}
		p.index[c.Name] = i
		if c.Name == ds.SortKeyColumn {
			p.keyIndex = i
		}
	}
	return p, nil
}

// Dataset returns the dataset definition.
func (p *Projection) Dataset() Dataset { return p.dataset }

// Version returns the dataset version.
func (p *Projection) Version() int { return p.version }

// Columns returns a copy of the projected columns in order.
func (p *Projection) Columns() []Column {
	out := make([]Column, len(p.columns))
	copy(out, p.columns)
	return out
}

// NumColumns returns the number of projected columns.
func (p *Projection) NumColumns() int { return len(p.columns) }

// Column returns the i-th column.
func (p *Projection) Column(i int) Column { return p.columns[i] }

// Lookup returns the column with the given name and its position.
func (p *Projection) Lookup(name string) (Column, int, bool) {
	i, ok := p.index[name]
	if !ok {
		return Column{}, -1, false
	}
	return p.columns[i], i, true
}

// Types returns the column types in order.
func (p *Projection) Types() []ColumnType {
	out := make([]ColumnType, len(p.columns))
	for i, c := range p.columns {
		out[i] = c.Type
	}
	return out
}

// Kinds returns the row accessor kinds in order, for use with row.Materialize.
func (p *Projection) Kinds() []row.Kind {
	out := make([]row.Kind, len(p.columns))
	for i, c := range p.columns {
		out[i] = c.Type.RowKind()
	}
	return out
}

// KeyIndex returns the position of the sort key column, or -1.
func (p *Projection) KeyIndex() int { return p.keyIndex }

// Select returns a projection over a subset of columns, in the given order.
// The sort key column may be left out; KeyOf then fails.
func (p *Projection) Select(names ...string) (*Projection, error) {
	cols := make([]Column, 0, len(names))
	for _, n := range names {
		c, _, ok := p.Lookup(n)
		if !ok {
			return nil, &model.SchemaMismatchError{Column: n, Row: -1, Reason: "not in projection"}
		}
		cols = append(cols, c)
	}
	return newProjection(p.dataset, p.version, cols)
}

// KeyOf extracts the sort key of r.
//
// It fails with model.ErrSchemaMismatch if r lacks the key field, the value
// is null or its type does not match the key column.
func (p *Projection) KeyOf(r row.Row) (model.Key, error) {
	if p.keyIndex < 0 {
		return model.Key{}, &model.SchemaMismatchError{Column: p.dataset.SortKeyColumn, Row: -1, Reason: "sort key column not projected"}
	}
	col := p.columns[p.keyIndex]
	if err := CheckField(col, r, p.keyIndex); err != nil {
		return model.Key{}, err
	}
	if r.IsNull(p.keyIndex) {
		return model.Key{}, &model.SchemaMismatchError{Column: col.Name, Row: -1, Reason: "sort key is null"}
	}

	i := p.keyIndex
	switch col.Type {
	case Int:
		return model.IntKey(int64(r.GetInt(i))), nil
	case Long:
		return model.IntKey(r.GetLong(i)), nil
	case Double:
		return model.FloatKey(r.GetDouble(i)), nil
	case String:
		return model.StringKey(r.GetString(i)), nil
	default:
		return model.Key{}, &model.SchemaMismatchError{Column: col.Name, Row: -1, Reason: fmt.Sprintf("type %s is not comparable", col.Type)}
	}
}

// CheckField verifies that r has field i and, when r exposes raw values,
// that the value matches col's type.
func CheckField(col Column, r row.Row, i int) error {
	if i >= r.NumFields() {
		return &model.SchemaMismatchError{Column: col.Name, Row: -1, Reason: fmt.Sprintf("row has %d fields, need %d", r.NumFields(), i+1)}
	}
	if v, ok := r.(row.Valuer); ok {
		if val := v.Value(i); !col.Type.Accepts(val) {
			return &model.SchemaMismatchError{Column: col.Name, Row: -1, Reason: fmt.Sprintf("value of type %T for %s column", val, col.Type)}
		}
	}
	return nil
}
