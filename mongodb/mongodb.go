// Package mongodb connects to the database the upload documents live in.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"

	"github.com/uploadhub/printdocs/config/secret"
	"github.com/uploadhub/printdocs/o11y"
)

type Config struct {
	URI secret.String

	// ServerSelectionTimeout bounds how long the client waits to confirm
	// the server is reachable before failing.
	ServerSelectionTimeout time.Duration
}

// New connects to mongo. The context passed in is expected to carry an o11y provider
// and is only used for reporting (not for cancellation).
func New(ctx context.Context, appName string, cfg Config) (client *mongo.Client, err error) {
	_, span := o11y.StartSpan(ctx, "mongodb: connect")
	defer o11y.End(span, &err)

	mongoURL, err := url.Parse(cfg.URI.Raw())

	// url.Parse will print the URI if it can't parse. The URI contains the password, so this gets the underlying error
	// without printing the secret string.
	var urlError *url.Error
	if errors.As(err, &urlError) {
		return nil, fmt.Errorf("mongodb: failed to parse URI: %w", urlError.Err)
	} else if err != nil {
		return nil, err
	}

	span.AddField("host", mongoURL.Host)
	span.AddField("username", mongoURL.User.Username())

	opts := options.Client().
		ApplyURI(cfg.URI.Raw()).
		SetAppName(appName).
		SetServerSelectionTimeout(cfg.ServerSelectionTimeout)

	return mongo.Connect(ctx, opts)
}

// Ping forces a round trip to the server so a bad URI or an unreachable
// endpoint fails fast rather than on the first query.
func Ping(ctx context.Context, client *mongo.Client, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	return nil
}

// DatabaseName resolves the database the URI points at. The default database
// of the connection string wins; failing that the trailing path segment is
// used, with query parameters stripped.
func DatabaseName(uri secret.String) (string, error) {
	if cs, err := connstring.ParseAndValidate(uri.Raw()); err == nil && cs.Database != "" {
		return cs.Database, nil
	}

	mongoURL, err := url.Parse(uri.Raw())
	var urlError *url.Error
	if errors.As(err, &urlError) {
		return "", fmt.Errorf("failed to parse URI: %w", urlError.Err)
	} else if err != nil {
		return "", err
	}

	name := strings.TrimPrefix(mongoURL.Path, "/")
	if name == "" {
		return "", errors.New("no database name in URI")
	}
	return name, nil
}
