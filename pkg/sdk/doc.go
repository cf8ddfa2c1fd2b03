// Package sdk is the HTTP client for a remote towersearch server.
//
// For in-process use without a server, import the root towersearch
// package instead.
//
//	client := sdk.New("http://localhost:8080", sdk.WithAPIKey("secret"))
//	matches, err := client.Search(ctx, sdk.SearchRequest{
//		Query: "dakal 20 metri",
//		Items: catalog,
//	})
package sdk
