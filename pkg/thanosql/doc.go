/*
Package thanosql provides a client for the ThanoSQL workspace engine HTTP API.

# Client

Use NewClient to construct a client. Credentials and the engine URL can be
passed explicitly or picked up from the THANOSQL_API_TOKEN and
THANOSQL_ENGINE_URL environment variables:

	client, err := thanosql.NewClient(
		thanosql.WithEngineURL("https://engine.example.com"),
		thanosql.WithToken("..."),
	)

The client is read-only after construction and safe for concurrent use. Each
method call maps to exactly one synchronous HTTP round trip; there is no
retry, pooling, or background work.

# Queries

Queries run either from an inline string or from a stored template,
identified by id or name. Exactly one of the three forms must be given:

	log, err := client.Query.Execute(ctx, thanosql.QueryExecuteInput{
		Query: "SELECT * FROM sales",
	})

A query that fails inside the engine still returns a QueryLog with
ErrorResult set; only transport and HTTP-level failures surface as errors.

# Tables and templates

Tables, views, schemas, query templates, and versioned table templates are
exposed through the corresponding services on the client. Table templates
have no update call: publishing a change means creating the same name under
a higher "x.y" version.
*/
package thanosql
