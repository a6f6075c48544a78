// Package todos provides a GraphQL-over-HTTP client for the shared todo list.
//
// # Overview
//
// The remote list lives in a `todos` table exposed through a Hasura-style
// GraphQL endpoint. This package defines the Item type, the Service interface
// consumed by the cache layer, and Client, the HTTP implementation.
//
// # Architecture
//
//   - client.go: Service interface, Client, request execution
//   - types.go: Item, GraphQL documents and envelope types
//
// # Client Usage
//
//	client, err := todos.NewClient("http://127.0.0.1:8080/v1/graphql", todos.Options{})
//	if err != nil {
//		log.Fatalf("failed to create client: %v", err)
//	}
//
//	items, err := client.FetchAll(ctx)
//	created, err := client.Create(ctx, "milk")
//	updated, err := client.Update(ctx, created.ID, true)
//	err = client.Delete(ctx, created.ID)
//
// # Operations
//
// Every call is a POST of {"query", "operationName", "variables"}:
//
//   - getTodos: query todos { done id text }
//   - addTodo: insert_todos(objects: {text}) returning the new row
//   - toggleTodo: update_todos(where: {id: {_eq}}, _set: {done}) returning the row
//   - deleteTodo: delete_todos(where: {id: {_eq}}) returning the removed row
//
// Mutations read the first element of `returning`. An update or delete whose
// returning set is empty matched no row and fails with ErrNotFound.
//
// # Error Handling
//
// Errors are wrapped with fmt.Errorf and fall into a few groups:
//
//   - Initialization: invalid endpoint
//   - Network: connection refused, timeout, DNS failure
//   - HTTP: 4xx/5xx status codes
//   - GraphQL: a non-empty errors array, reported as *ResponseError
//   - Deserialization: malformed JSON, missing data
//
// Example error messages:
//   - "execute request: dial tcp: connection refused"
//   - "graphql getTodos returned status 500"
//   - "graphql toggleTodo: field 'update_todos' not found in type: 'mutation_root'"
//
// # Rate Limiting
//
// Options.RateLimit caps outgoing requests per second. Calls block in
// rate.Limiter.Wait until a token is available or the context ends.
//
// # Thread Safety
//
// Client is safe for concurrent use.
//
// # Design Rationale
//
// The client does no caching and no retries. Reconciling results into local
// state is the job of the cache, session and mutation packages.
package todos
