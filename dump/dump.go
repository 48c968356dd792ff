/*
Package dump fetches sample documents from a collection and prints them in a
human readable, lossless form for manual inspection.
*/
package dump

import (
	"context"
	"fmt"
	"io"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/uploadhub/printdocs/o11y"
)

type Dumper struct {
	DB  *mongo.Database
	Out io.Writer

	// Limit caps how many documents are printed per collection.
	Limit int64
}

// Run dumps each named collection in sequence. The first failure aborts the
// remaining collections.
func (d *Dumper) Run(ctx context.Context, collections ...string) error {
	for _, name := range collections {
		if err := d.Collection(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

// Collection prints up to Limit documents from the named collection, in the
// order the server returns them. Extended JSON keeps ObjectIDs, dates and the
// other bson types readable without losing them.
func (d *Dumper) Collection(ctx context.Context, name string) (err error) {
	ctx, span := o11y.StartSpan(ctx, "dump: collection")
	defer o11y.End(span, &err)
	span.AddRawField("db.name", d.DB.Name())
	span.AddRawField("db.collection", name)

	fmt.Fprintf(d.Out, "\n--- %s documents (up to %d) ---\n", name, d.Limit)

	cursor, err := d.DB.Collection(name).Find(ctx, bson.D{}, options.Find().SetLimit(d.Limit))
	if err != nil {
		return fmt.Errorf("query on %s failed: %w", name, err)
	}
	defer func() {
		cerr := cursor.Close(ctx)
		if err == nil {
			err = cerr
		}
	}()

	n := 0
	for cursor.Next(ctx) {
		out, err := bson.MarshalExtJSONIndent(cursor.Current, true, false, "", "  ")
		if err != nil {
			return fmt.Errorf("could not render document from %s: %w", name, err)
		}
		fmt.Fprintf(d.Out, "%s\n", out)
		n++
	}
	if err := cursor.Err(); err != nil {
		return fmt.Errorf("cursor on %s failed: %w", name, err)
	}

	if n == 0 {
		fmt.Fprintf(d.Out, "(no %s documents found)\n", name)
	}
	span.AddRawField("documents", n)
	return nil
}
