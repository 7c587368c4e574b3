// Package schema describes datasets and their columns.
//
// A Column names a field, the dataset and version it belongs to and its
// physical type. A Dataset names the column whose values order and partition
// rows. A Projection is the validated pairing of both, built once per
// dataset version:
//
//	ds := schema.Dataset{Name: "events", SortKeyColumn: "ts"}
//	proj, err := schema.NewProjection(ds, 1, []schema.Column{
//	    {Name: "ts", Dataset: "events", Version: 1, Type: schema.Long},
//	    {Name: "value", Dataset: "events", Version: 1, Type: schema.Double, Nullable: true},
//	})
//
// Projections are immutable and safe for concurrent use.
package schema
