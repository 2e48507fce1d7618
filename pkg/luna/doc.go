// Package luna provides types, interfaces, and helpers for working with the
// Luna API.
//
// # Overview
//
// The luna package defines the domain types (User, Project, TokenPair), the
// classified Error returned by every call, and the interfaces of the resource
// clients. A concrete implementation is provided by the lunaclient package,
// which wires configuration, authentication, retries, logging, and tracing.
//
// Getting a client
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/Eclipse-Softworks/Luna-SDK-sub001/pkg/luna"
//	  "github.com/Eclipse-Softworks/Luna-SDK-sub001/pkg/lunaclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  cli, err := lunaclient.New(ctx, &luna.Config{APIKey: os.Getenv("LUNA_API_KEY")})
//	  if err != nil { log.Fatal(err) }
//
//	  users, err := cli.Users().List(ctx, &luna.ListParams{Limit: 50})
//	  if err != nil { log.Fatal(err) }
//	  _ = users
//	}
//
// # Pagination
//
// List endpoints are cursor paginated. Iterate returns an Iterator that
// fetches pages lazily:
//
//	it := cli.Users().Iterate(ctx, nil)
//	for it.HasNext() {
//	  user, err := it.Next()
//	  if err != nil { break }
//	  _ = user
//	}
//	if err := it.Err(); err != nil { /* handle error */ }
//
// or with range-over-func:
//
//	for user, err := range cli.Users().Iterate(ctx, nil).Seq() { ... }
//
// # Errors
//
// Failed calls return *Error. Its Kind is one of a closed set and decides
// whether the call is retryable. Helpers such as IsNotFound, IsRateLimit, and
// IsRetryable make it easy to branch on common cases:
//
//	user, err := cli.Users().Get(ctx, "usr_123")
//	if luna.IsNotFound(err) { /* ... */ }
//
// # Request IDs
//
// Every call carries an X-Request-Id. Attach your own with WithRequestID to
// correlate a call with upstream logs.
package luna
