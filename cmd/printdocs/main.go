// Command printdocs prints sample documents from the upload collections so
// they can be checked by eye. It reads MONGODB_URI from a local .env file.
package main

import (
	"context"
	"fmt"
	"io"
	"log" //nolint:depguard // non-o11y log is allowed for a top-level fatal
	"os"
	"time"

	"github.com/alecthomas/kong"

	"github.com/uploadhub/printdocs/config"
	"github.com/uploadhub/printdocs/dump"
	"github.com/uploadhub/printdocs/mongodb"
	"github.com/uploadhub/printdocs/o11y"
	"github.com/uploadhub/printdocs/o11y/texttrace"
)

type cli struct {
	EnvFile     string        `default:".env" help:"Path of the env file holding MONGODB_URI"`
	Limit       int64         `default:"50" help:"Maximum number of documents printed per collection"`
	Timeout     time.Duration `default:"5s" help:"Server selection timeout"`
	Collections []string      `default:"uploadmasters,uploadconsents" help:"Collections to dump"`
}

func main() {
	c := cli{}
	kong.Parse(&c)
	if err := run(c, os.Stdout); err != nil {
		log.Fatal("Error: ", err)
	}
}

func run(c cli, stdout io.Writer) (err error) {
	ctx := o11y.WithProvider(context.Background(), texttrace.New())
	defer o11y.FromContext(ctx).Close(ctx)

	ctx, span := o11y.StartSpan(ctx, "main: run")
	defer o11y.End(span, &err)

	cfg, err := config.Load(c.EnvFile)
	if err != nil {
		return err
	}

	o11y.Log(ctx, "connecting to MongoDB")
	client, err := mongodb.New(ctx, "printdocs", mongodb.Config{
		URI:                    cfg.MongoURI,
		ServerSelectionTimeout: c.Timeout,
	})
	if err != nil {
		return err
	}
	defer func() {
		if derr := client.Disconnect(ctx); err == nil {
			err = derr
		}
	}()

	if err := mongodb.Ping(ctx, client, c.Timeout); err != nil {
		return err
	}

	dbName, err := mongodb.DatabaseName(cfg.MongoURI)
	if err != nil {
		return fmt.Errorf("could not determine database from %s, include the database name in the connection string: %w",
			config.EnvMongoURI, err)
	}
	o11y.Log(ctx, "connected", o11y.Field("database", dbName))

	d := &dump.Dumper{
		DB:    client.Database(dbName),
		Out:   stdout,
		Limit: c.Limit,
	}
	if err := d.Run(ctx, c.Collections...); err != nil {
		return err
	}

	fmt.Fprintln(stdout, "\nDone.")
	return nil
}
