// Package lunaclient provides the primary entry point for constructing a
// Luna API client that implements the luna.Client interface.
//
// It layers configuration, the retrying HTTP executor, authentication and
// redacted logging on top of the resource interfaces and types defined in the
// luna package. Most applications import lunaclient to build a client, then
// use the returned luna.Client to reach Users() and Projects(), or Request()
// for endpoints without a wrapper.
//
// Quick start
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
//
//	  // A static API key.
//	  cli, err := lunaclient.NewWithAPIKey(ctx, "", "lk_live_...")
//	  if err != nil { log.Fatal(err) }
//	  defer cli.Close()
//
//	  // Or a refreshable session whose new tokens are handed back to you.
//	  cli, err = lunaclient.New(ctx, &luna.Config{
//	    AccessToken:  "eyJhbGciOi...",
//	    RefreshToken: "rt_...",
//	    OnTokenRefresh: func(pair luna.TokenPair) error {
//	      return save(pair)
//	    },
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  for user, err := range cli.Users().Iterate(ctx, &luna.ListParams{Limit: 50}).Seq() {
//	    if err != nil { log.Fatal(err) }
//	    log.Println(user.Email)
//	  }
//	}
//
// # Errors
//
// Every failed call returns a *luna.Error. Use luna.IsNotFound,
// luna.IsRateLimit, luna.IsRetryable and the other helpers, or luna.AsError
// for the code, status and request ID.
//
// # Helpers
//
// NewWithAPIKey and NewWithTokens wrap New with the matching configuration.
package lunaclient
