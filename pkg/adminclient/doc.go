// Package adminclient is a small HTTP client for the admin API of a running
// mb server.
//
// It issues one request per connection and reports refused connections as a
// distinct error so callers can tell "no server" apart from other failures:
//
//	client := adminclient.New(opts.AdminURL())
//	resp, err := client.GetConfig(ctx, adminclient.GetOptions{RemoveProxies: true})
//	if errors.Is(err, adminclient.ErrConnectionRefused) {
//		// nothing is listening on the admin port
//	}
package adminclient
